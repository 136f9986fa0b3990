package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkScenes_WithIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("shots/sh010.ma", "//Maya ASCII")
	mustWrite("assets/rig.ma", "//Maya ASCII")
	mustWrite("assets/rig.mb", "FOR4")
	mustWrite("readme.txt", "doc")

	// Include only shots
	cfg := Config{Root: dir, IncludeGlobs: "shots/**", MaxBytes: 1 << 20}
	var got []string
	err := WalkScenes(cfg, func(_, rel string) error { got = append(got, rel); return nil })
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "shots/sh010.ma" {
		t.Fatalf("include globs failed, got %v", got)
	}

	// Exclude binary scenes
	got = nil
	cfg = Config{Root: dir, ExcludeGlobs: "**/*.mb", MaxBytes: 1 << 20}
	if err := WalkScenes(cfg, func(_, rel string) error { got = append(got, rel); return nil }); err != nil {
		t.Fatal(err)
	}
	for _, p := range got {
		if p == "assets/rig.mb" || p == "readme.txt" {
			t.Fatalf("exclude globs failed, saw %s", p)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ascii scenes, got %v", got)
	}
}

func TestCountScenes_DefaultExcludesAndMaxBytes(t *testing.T) {
	dir := t.TempDir()
	files := map[string]int{
		"a.ma":                  10,
		"big.ma":                4096,
		"QUARANTINED/b.ma":      10,
		"incrementalSave/c.ma":  10,
		".git/objects/d.ma":     10,
		"scenes/e.MB":           10,
		"scenes/not-a-scene.py": 10,
	}
	for name, size := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, make([]byte, size), 0644); err != nil {
			t.Fatal(err)
		}
	}
	n, err := CountScenes(Config{Root: dir, MaxBytes: 1024, DefaultExcludes: true})
	if err != nil {
		t.Fatal(err)
	}
	// a.ma and scenes/e.MB; big.ma is over the limit and the rest sit in
	// excluded directories.
	if n != 2 {
		t.Fatalf("expected 2 scenes, got %d", n)
	}
}

func TestWalkScenes_HonorsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"shots/sh010.ma", "cache/sim.ma", "assets/rig_bak.ma"} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("//Maya ASCII"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, ".mayascanignore"), []byte("cache/\n*_bak.ma\n"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := CountScenes(Config{Root: dir})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected only shots/sh010.ma, got %d scenes", n)
	}
}
