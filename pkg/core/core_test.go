package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

const cleanScene = "//Maya ASCII 2022 scene\n" +
	"requires maya \"2022\";\n" +
	"createNode transform -n \"root\";\n"

func TestScanDirectory_Smoke(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "scenes")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "shot.ma"), []byte(cleanScene), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Root:    root,
		NoCache: true,
		LogPath: filepath.Join(dir, "MayaScannerLog.txt"),
	}
	res, err := ScanDirectory(context.Background(), filepath.Join(dir, "maya"), cfg)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if !res.Tally.Clean() || res.FilesScanned != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(SignatureIDs()) == 0 {
		t.Fatal("expected non-empty signature IDs")
	}
}

func TestOutcomesJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := MarshalOutcomes(&buf, []Outcome{}); err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalOutcomes(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(got))
	}
}
