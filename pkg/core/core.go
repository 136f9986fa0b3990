package core

import (
	"context"

	"github.com/hannesdelbeke/maya-security-tools/internal/engine"
	"github.com/hannesdelbeke/maya-security-tools/internal/offline"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = engine.Config
type Result = engine.Result
type Finding = types.Finding
type Outcome = types.Outcome
type Tally = types.Tally

// ScanDirectory scans the startup scripts under prefs and every scene below
// cfg.Root in batch mode: findings are fixed and fixed scenes are saved.
// An empty prefs uses the platform's Maya user directory.
func ScanDirectory(ctx context.Context, prefs string, cfg Config) (Result, error) {
	eng := newEngine(prefs, cfg)
	defer eng.Close()
	return eng.RunScan(ctx, types.OpScanDirectory, cfg.Root)
}

// ScanScene scans the startup scripts and one Maya ASCII scene in batch mode.
func ScanScene(ctx context.Context, prefs, scene string, cfg Config) (Result, error) {
	eng := newEngine(prefs, cfg)
	defer eng.Close()
	return eng.RunScan(ctx, types.OpHeadlessScan, scene)
}

// SignatureIDs returns the list of infection signature IDs.
// This is exposed for convenience to avoid importing internals directly.
func SignatureIDs() []string { return signatures.IDs() }

func newEngine(prefs string, cfg Config) *engine.Engine {
	if prefs == "" {
		prefs = offline.DefaultPrefsDir()
	}
	h := offline.New(offline.Options{PrefsDir: prefs, Headless: true})
	return engine.New(h, cfg)
}
