package mayascan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

func TestPickPrecedence(t *testing.T) {
	local, global := "local", "global"
	if got := pickString("cli", &local, &global); got != "cli" {
		t.Fatalf("cli should win, got %q", got)
	}
	if got := pickString("", &local, &global); got != "local" {
		t.Fatalf("local should win, got %q", got)
	}
	if got := pickString("", nil, &global); got != "global" {
		t.Fatalf("global fallback, got %q", got)
	}

	f := false
	tr := true
	if pickBool(false, &f, &tr) {
		t.Fatalf("an explicit local false beats global true")
	}
	if !pickBool(true, &f, nil) {
		t.Fatalf("cli true wins")
	}

	var lb, gb int64 = 0, 42
	if got := pickInt64(0, &lb, &gb); got != 42 {
		t.Fatalf("zero local falls through, got %d", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandHome("~/maya"); got != filepath.Join(home, "maya") {
		t.Fatalf("got %q", got)
	}
	if got := expandHome("/abs/maya"); got != "/abs/maya" {
		t.Fatalf("got %q", got)
	}
}

func TestScanTarget(t *testing.T) {
	defer func() { flagFile, flagDir, flagOpen = "", "", "" }()

	kind, target, err := scanTarget()
	if err != nil || kind != types.OpScanCurrent || target != "" {
		t.Fatalf("default: %v %q %v", kind, target, err)
	}

	flagDir = "scenes"
	kind, target, _ = scanTarget()
	if kind != types.OpScanDirectory || !filepath.IsAbs(target) {
		t.Fatalf("dir: %v %q", kind, target)
	}

	flagDir, flagOpen = "", "shot.ma"
	kind, _, _ = scanTarget()
	if kind != types.OpOpen {
		t.Fatalf("open: %v", kind)
	}
}

func TestQuarantined(t *testing.T) {
	prefs := t.TempDir()
	scripts := filepath.Join(prefs, "scripts")
	qdir := filepath.Join(prefs, "QUARANTINED")
	for _, d := range []string{scripts, qdir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []string{
		filepath.Join(scripts, "userSetup.py.INFECTED"),
		filepath.Join(scripts, "userSetup.mel"),
		filepath.Join(qdir, "untitled.ma"),
	} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := quarantined(prefs, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "userSetup.py.INFECTED" || filepath.Base(got[1]) != "untitled.ma" {
		t.Fatalf("unexpected list: %v", got)
	}
}
