// Package remedy removes or neutralizes infected artifacts.
//
// Every remediation is gated: the engine asks its confirm.Gate first and
// leaves the artifact untouched when fixing is not authorized. Failures are
// reported as outcomes, never returned, so one broken artifact does not stop
// the rest of a session.
package remedy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// QuarantineSuffix is appended to quarantined script files.
const QuarantineSuffix = ".INFECTED"

// compiledPattern matches the byte-compiled helper left in __pycache__.
const compiledPattern = "**/vaccine*"

// Reporter receives the remediation log lines.
type Reporter interface {
	Report(msg string)
	Error(msg string)
}

// Engine applies the remediation for each artifact class.
type Engine struct {
	Doc    host.Document
	Jobs   host.Jobs
	Interp host.Interpreter
	Gate   *confirm.Gate
	Log    Reporter
	// Title prefixes the confirmation dialog title.
	Title string
}

// New builds an engine over the host's mutating accessors.
func New(h host.Host, gate *confirm.Gate, log Reporter, title string) *Engine {
	return &Engine{
		Doc:    h.Document(),
		Jobs:   h.Jobs(),
		Interp: h.Interpreter(),
		Gate:   gate,
		Log:    log,
		Title:  title,
	}
}

// Remediate attempts to fix one finding.
func (e *Engine) Remediate(f types.Finding) types.Outcome {
	if !e.authorized(f) {
		return types.Outcome{Finding: f, Reason: types.ReasonUserDeclined, Err: types.ErrRemediationDeclined}
	}
	switch loc := f.Locator.(type) {
	case types.FileLocator:
		return e.quarantine(f, loc)
	case types.NodeLocator:
		return e.deleteNode(f, loc)
	case types.JobLocator:
		return e.cancelJob(f, loc)
	case types.GlobalLocator:
		return e.neutralize(f, loc)
	}
	return types.Outcome{Finding: f, Reason: types.ReasonNotApplicable}
}

func (e *Engine) authorized(f types.Finding) bool {
	if e.Gate == nil {
		return false
	}
	title := "MayaScanner: "
	if e.Title != "" {
		title += e.Title + " : "
	}
	return e.Gate.Query(title, promptFor(f.Class))
}

func promptFor(c types.ArtifactClass) string {
	switch c {
	case types.ClassScriptFile:
		return "Found corrupted userSetup file(s)"
	case types.ClassScriptNode:
		return "Found corrupted scriptNode"
	case types.ClassBackgroundJob:
		return "Found corrupted scriptJob"
	default:
		return "Found corrupted global procedure"
	}
}

func (e *Engine) quarantine(f types.Finding, loc types.FileLocator) types.Outcome {
	removed, err := Quarantine(loc.Path)
	for _, p := range removed {
		e.report("Deleted : " + p)
	}
	switch {
	case errors.Is(err, types.ErrAlreadyClean):
		e.report("Already quarantined : " + loc.Path)
		return types.Outcome{Finding: f, Fixed: true, Reason: types.ReasonAlreadyHandled}
	case err != nil:
		e.fail(fmt.Sprintf("Can't rename %s file: %v", loc.Path, err))
		return types.Outcome{
			Finding: f,
			Reason:  types.ReasonFilesystemError,
			Err:     fmt.Errorf("%w: %s: %v", types.ErrRemediationFailed, loc, err),
		}
	}
	e.report("Renamed : " + loc.Path)
	return types.Outcome{Finding: f, Fixed: true}
}

// Quarantine renames path to path+QuarantineSuffix. It first makes the file
// writable, removes compiled helper files from the sibling __pycache__ and
// drops a stale quarantine copy, so a retry after a partial failure starts
// over cleanly. It returns the paths it deleted. A missing source yields
// types.ErrAlreadyClean.
func Quarantine(path string) ([]string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, types.ErrAlreadyClean
	}
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, info.Mode().Perm()|0o600); err != nil {
		return nil, fmt.Errorf("make writable: %w", err)
	}

	var removed []string
	cache := filepath.Join(filepath.Dir(path), "__pycache__")
	if st, err := os.Stat(cache); err == nil && st.IsDir() {
		matches, err := doublestar.Glob(os.DirFS(cache), compiledPattern)
		if err != nil {
			return removed, fmt.Errorf("glob %s: %w", cache, err)
		}
		for _, m := range matches {
			p := filepath.Join(cache, filepath.FromSlash(m))
			if st, err := os.Stat(p); err != nil || st.IsDir() {
				continue
			}
			if err := os.Remove(p); err != nil {
				return removed, fmt.Errorf("remove compiled helper: %w", err)
			}
			removed = append(removed, p)
		}
	}

	target := path + QuarantineSuffix
	if err := os.Remove(target); err == nil {
		removed = append(removed, target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return removed, fmt.Errorf("remove previous quarantine: %w", err)
	}
	if err := os.Rename(path, target); err != nil {
		return removed, fmt.Errorf("rename: %w", err)
	}
	return removed, nil
}

func (e *Engine) deleteNode(f types.Finding, loc types.NodeLocator) types.Outcome {
	if e.Doc == nil {
		return types.Outcome{Finding: f, Reason: types.ReasonNotApplicable}
	}
	if err := e.Doc.DeleteScriptNode(loc.Name); err != nil {
		if errors.Is(err, host.ErrNotFound) {
			return types.Outcome{Finding: f, Fixed: true, Reason: types.ReasonAlreadyHandled}
		}
		e.fail(fmt.Sprintf("Can't remove scriptNode %s: %v", loc.Name, err))
		return types.Outcome{Finding: f, Reason: types.ReasonFilesystemError, Err: fmt.Errorf("%w: %s: %v", types.ErrRemediationFailed, loc, err)}
	}
	e.report("Removed : scriptNode: " + loc.Name)
	return types.Outcome{Finding: f, Fixed: true}
}

func (e *Engine) cancelJob(f types.Finding, loc types.JobLocator) types.Outcome {
	if e.Jobs == nil {
		return types.Outcome{Finding: f, Reason: types.ReasonNotApplicable}
	}
	err := e.Jobs.Cancel(loc.ID, true)
	switch {
	case errors.Is(err, host.ErrNotFound):
		e.report(fmt.Sprintf("scriptJob ID: %d already gone", loc.ID))
		return types.Outcome{Finding: f, Fixed: true, Reason: types.ReasonAlreadyHandled}
	case err != nil:
		e.fail(fmt.Sprintf("Can't kill scriptJob ID: %d: %v", loc.ID, err))
		return types.Outcome{Finding: f, Reason: types.ReasonFilesystemError, Err: fmt.Errorf("%w: job %s: %v", types.ErrRemediationFailed, loc, err)}
	}
	e.report(fmt.Sprintf("Removed : scriptJob ID: %d", loc.ID))
	return types.Outcome{Finding: f, Fixed: true}
}

func (e *Engine) neutralize(f types.Finding, loc types.GlobalLocator) types.Outcome {
	if e.Interp == nil {
		return types.Outcome{Finding: f, Reason: types.ReasonNotApplicable}
	}
	if err := e.Interp.RedefineGlobalAsNoop(loc.Name); err != nil {
		e.fail(fmt.Sprintf("Can't redefine global procedure %s: %v", loc.Name, err))
		return types.Outcome{Finding: f, Reason: types.ReasonFilesystemError, Err: fmt.Errorf("%w: %s: %v", types.ErrRemediationFailed, loc, err)}
	}
	e.report("Neutralized : global procedure: " + loc.Name)
	return types.Outcome{Finding: f, Fixed: true}
}

func (e *Engine) report(msg string) {
	if e.Log != nil {
		e.Log.Report(msg)
	}
}

func (e *Engine) fail(msg string) {
	if e.Log != nil {
		e.Log.Error(msg)
	}
}
