package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hannesdelbeke/maya-security-tools/internal/audit"
	"github.com/hannesdelbeke/maya-security-tools/internal/cache"
	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/refs"
	"github.com/hannesdelbeke/maya-security-tools/internal/session"
	"github.com/hannesdelbeke/maya-security-tools/internal/sessionlog"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// Config controls scanning behavior and where results are kept.
type Config struct {
	// Root is the directory walked by directory scans.
	Root            string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	DefaultExcludes bool
	NoCache         bool
	Progress        func(rel string)

	Signatures signatures.Set
	// Mode resolves the fix prompt when the host is interactive.
	Mode    confirm.Mode
	LogPath string
	// QuarantineDir receives unnamed scenes saved after a fix. Empty uses
	// QUARANTINED under the host prefs dir.
	QuarantineDir string
	// HistoryDir holds the JSONL scan history. Empty disables it.
	HistoryDir string
	// ResultsDir keeps the last scan for the results browser. Empty disables it.
	ResultsDir string
}

// Result describes one resolved operation.
type Result struct {
	Kind         types.OperationKind `json:"kind"`
	Target       string              `json:"target"`
	Tally        types.Tally         `json:"tally"`
	Outcomes     []types.Outcome     `json:"outcomes"`
	FilesScanned int                 `json:"files_scanned"`
	// Skipped lists scenes that could not be opened, binary scenes among them.
	Skipped []string `json:"skipped,omitempty"`
	// Unresolved lists the infected references of the operation.
	Unresolved []string      `json:"unresolved,omitempty"`
	Choice     string        `json:"choice,omitempty"`
	Saved      []string      `json:"saved,omitempty"`
	ExitCode   int           `json:"exit_code"`
	Quit       bool          `json:"quit"`
	Duration   time.Duration `json:"duration"`
	Errors     []error       `json:"-"`
}

// ReferenceLoader is implemented by hosts that can load a scene's references
// one at a time, as Maya does while opening a file. LoadReference returns the
// references of the loaded file; every successful load is paired with one
// EndReference.
type ReferenceLoader interface {
	References() []string
	LoadReference(path string) (nested []string, err error)
	EndReference()
}

// Engine owns the session, reference tracker and log shared by every
// operation on one host.
type Engine struct {
	host    host.Host
	cfg     Config
	log     *sessionlog.Log
	sess    *session.Session
	tracker *refs.Tracker
}

// New returns an engine bound to h.
func New(h host.Host, cfg Config) *Engine {
	if cfg.QuarantineDir == "" {
		cfg.QuarantineDir = filepath.Join(h.PrefsDir(), "QUARANTINED")
	}
	log := sessionlog.New(cfg.LogPath)
	return &Engine{
		host: h,
		cfg:  cfg,
		log:  log,
		sess: session.New(h, session.Options{
			Signatures: cfg.Signatures,
			Log:        log,
			Mode:       cfg.Mode,
			KeepLog:    true,
		}),
		tracker: refs.NewTracker(),
	}
}

func (e *Engine) Session() *session.Session { return e.sess }
func (e *Engine) Tracker() *refs.Tracker    { return e.tracker }
func (e *Engine) Log() *sessionlog.Log      { return e.log }

// Close releases the session log.
func (e *Engine) Close() error { return e.log.Close() }

func (e *Engine) rotate() {
	if !e.log.Exists() {
		return
	}
	if err := e.log.Rotate(); err != nil {
		e.host.Process().Warn(fmt.Sprintf("could not rotate %s: %v", e.log.Path(), err))
	}
}

// OnBeforeFileEvent records the start of a host file operation. Open and
// import start a new top-level operation and rotate the log.
func (e *Engine) OnBeforeFileEvent(kind types.OperationKind, path string) refs.OpID {
	if !kind.IsReference() {
		e.rotate()
	}
	return e.tracker.Before(kind, path)
}

// OnAfterFileEvent scans the document once the host finished a file
// operation and resolves the result. path may be empty, in which case the
// path recorded by the matching OnBeforeFileEvent is used.
func (e *Engine) OnAfterFileEvent(kind types.OperationKind, path string) (Result, error) {
	started := time.Now()
	if path == "" {
		path, _ = e.tracker.Peek(kind)
	}
	tally, err := e.sess.Scan(kind, path)
	if err != nil {
		return Result{}, err
	}
	e.tracker.After(kind, !tally.Clean())

	res := e.result(kind, path, tally, started)
	res.FilesScanned = 1
	if !kind.IsReference() {
		res.Unresolved = e.tracker.Unresolved()
	}
	e.resolveEvent(&res)
	e.record(res)
	return res, nil
}

// OpenScene opens path on the host the way Maya does with the scanner
// loaded: a before and after event around the open, with one nested pair per
// reference when the host can load references itself. References of
// references are loaded depth first, inside the pair of their parent.
func (e *Engine) OpenScene(path string) (Result, error) {
	e.OnBeforeFileEvent(types.OpOpen, path)
	if err := e.host.Open(path); err != nil {
		return Result{}, err
	}
	if rl, ok := e.host.(ReferenceLoader); ok {
		seen := map[string]bool{filepath.Clean(path): true}
		if err := e.loadReferences(rl, rl.References(), seen); err != nil {
			return Result{}, err
		}
	}
	return e.OnAfterFileEvent(types.OpOpen, path)
}

func (e *Engine) loadReferences(rl ReferenceLoader, paths []string, seen map[string]bool) error {
	for _, ref := range paths {
		// A file referencing one of its ancestors would never finish loading.
		if seen[ref] {
			continue
		}
		seen[ref] = true
		e.OnBeforeFileEvent(types.OpLoadReference, ref)
		nested, err := rl.LoadReference(ref)
		if err != nil {
			e.host.Process().Warn(fmt.Sprintf("could not load reference %s: %v", ref, err))
			e.tracker.After(types.OpLoadReference, false)
			continue
		}
		if err := e.loadReferences(rl, nested, seen); err != nil {
			rl.EndReference()
			return err
		}
		_, err = e.OnAfterFileEvent(types.OpLoadReference, ref)
		rl.EndReference()
		if err != nil {
			return err
		}
	}
	return nil
}

// RunScan runs an explicit scan. target is ignored for the current scene, a
// scene file for file scans and a directory for directory scans. A headless
// scan with a target opens it first.
func (e *Engine) RunScan(ctx context.Context, kind types.OperationKind, target string) (Result, error) {
	started := time.Now()
	e.rotate()

	var (
		res Result
		err error
	)
	switch kind {
	case types.OpScanCurrent:
		res, err = e.scanDocument(kind, e.host.Document().Path())
	case types.OpScanFile, types.OpHeadlessScan:
		if target == "" && kind == types.OpHeadlessScan {
			res, err = e.scanDocument(kind, e.host.Document().Path())
			break
		}
		if err = e.host.Open(target); err != nil {
			return Result{Kind: kind, Target: target, Skipped: []string{target}}, fmt.Errorf("open scene: %w", err)
		}
		res, err = e.scanDocument(kind, target)
	case types.OpScanDirectory:
		res, err = e.scanDirectory(ctx, target)
	default:
		return Result{}, fmt.Errorf("engine: %s is not an explicit scan", kind)
	}
	if err != nil {
		return res, err
	}
	res.Duration = time.Since(started)
	e.record(res)
	return res, nil
}

func (e *Engine) scanDocument(kind types.OperationKind, target string) (Result, error) {
	started := time.Now()
	name := target
	if name == "" {
		name = "untitled"
	}
	tally, err := e.sess.Scan(kind, name)
	if err != nil {
		return Result{}, err
	}
	res := e.result(kind, target, tally, started)
	res.FilesScanned = 1
	e.resolveScan(&res)
	return res, nil
}

func (e *Engine) scanDirectory(ctx context.Context, root string) (Result, error) {
	cfg := e.cfg
	cfg.Root = root
	res := Result{Kind: types.OpScanDirectory, Target: root}

	var db cache.DB
	if !cfg.NoCache {
		db, _ = cache.Load(root)
	} else {
		db.Entries = map[string]string{}
	}

	if err := e.sess.Begin(types.OpScanDirectory, root); err != nil {
		return res, err
	}
	// Prefs-level artifacts are scanned once, not once per scene.
	if _, err := e.sess.Run(types.ClassScriptFile, types.ClassBackgroundJob, types.ClassInterpreterGlobal); err != nil {
		_, _ = e.sess.End()
		return res, err
	}

	unsaved := 0
	walkErr := WalkScenes(cfg, func(path, rel string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cfg.Progress != nil {
			cfg.Progress(rel)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			res.Skipped = append(res.Skipped, path)
			return nil
		}
		if !cfg.NoCache && db.IsClean(rel, data) {
			return nil
		}
		if err := e.host.Open(path); err != nil {
			res.Skipped = append(res.Skipped, path)
			e.log.Warn(fmt.Sprintf("skipped %s: %v", path, err))
			return nil
		}
		res.FilesScanned++
		e.sess.Retarget(path)
		run, err := e.sess.Run(types.ClassScriptNode)
		if err != nil {
			return err
		}
		if run.Clean() {
			db.MarkClean(rel, data)
			return nil
		}
		db.Forget(rel)
		if !run.FullyFixed() {
			unsaved++
			return nil
		}
		if err := e.host.Document().Save(); err != nil {
			unsaved++
			e.log.Error(fmt.Sprintf("could not save %s: %v", path, err))
			return nil
		}
		res.Saved = append(res.Saved, path)
		e.log.Info("Saved : " + path)
		return nil
	})

	tally, _ := e.sess.End()
	if !cfg.NoCache {
		_ = cache.Save(root, db)
	}
	full := e.result(types.OpScanDirectory, root, tally, time.Now())
	res.Tally, res.Outcomes, res.Errors = full.Tally, full.Outcomes, full.Errors
	if walkErr != nil {
		return res, walkErr
	}
	e.resolveDirectory(&res, unsaved)
	return res, nil
}

func (e *Engine) result(kind types.OperationKind, target string, tally types.Tally, started time.Time) Result {
	return Result{
		Kind:     kind,
		Target:   target,
		Tally:    tally,
		Outcomes: e.sess.Outcomes(),
		Errors:   e.sess.Errors(),
		Duration: time.Since(started),
	}
}

func (e *Engine) record(res Result) {
	if e.cfg.HistoryDir != "" {
		rec := audit.CreateScanRecord(res.Kind, res.Target, res.Outcomes, res.Tally, res.FilesScanned, res.Duration, res.ExitCode)
		rec.LogPath = e.log.Path()
		if err := audit.NewAuditLog(e.cfg.HistoryDir).LogScan(rec); err != nil {
			e.log.Warn(fmt.Sprintf("could not write scan history: %v", err))
		}
	}
	if e.cfg.ResultsDir != "" {
		if err := cache.SaveResults(e.cfg.ResultsDir, res.Target, res.Outcomes, res.Tally); err != nil {
			e.log.Warn(fmt.Sprintf("could not save results: %v", err))
		}
	}
}
