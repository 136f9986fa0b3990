// Package session runs one top-level scan operation.
//
// A Session moves Idle -> Scanning -> Aggregated. Begin resets the fix
// decision and the tally, rotates the log and records the operation kind.
// Run scans the artifact classes in their fixed order and remediates each
// finding through the shared gate. End returns the aggregated tally. The
// Session replaces process-wide state: everything one operation needs hangs
// off it and nothing outlives it except the log file.
package session

import (
	"errors"
	"fmt"

	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/remedy"
	"github.com/hannesdelbeke/maya-security-tools/internal/scanner"
	"github.com/hannesdelbeke/maya-security-tools/internal/sessionlog"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Scanning
	Aggregated
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Aggregated:
		return "aggregated"
	default:
		return "idle"
	}
}

var (
	// ErrSessionActive is returned by Begin while a scan is in progress.
	// Host callbacks are delivered serially, so this means a callback
	// re-entered the scanner.
	ErrSessionActive = errors.New("session: scan already in progress")
	// ErrNotScanning is returned by Run and End outside Begin/End.
	ErrNotScanning = errors.New("session: not scanning")
)

// Options configure a Session.
type Options struct {
	Signatures signatures.Set
	// Log receives findings and fixes. Nil writes to sessionlog.DefaultPath.
	Log *sessionlog.Log
	// Mode is how the fix prompt resolves for non-reference operations. A
	// headless host always answers yes; reference loads never prompt.
	Mode confirm.Mode
	// KeepLog leaves the log in place on Begin. Callers that group several
	// sessions under one top-level operation rotate it themselves.
	KeepLog bool
}

// Session is the context of one top-level operation.
type Session struct {
	host host.Host
	sigs signatures.Set
	log  *sessionlog.Log
	mode confirm.Mode
	keep bool
	gate *confirm.Gate

	state    State
	kind     types.OperationKind
	target   string
	tally    types.Tally
	outcomes []types.Outcome
	errs     []error
}

// New returns an idle session bound to h.
func New(h host.Host, opts Options) *Session {
	if opts.Signatures.HelperPolicy == "" {
		opts.Signatures = signatures.Default()
	}
	if opts.Log == nil {
		opts.Log = sessionlog.New("")
	}
	return &Session{
		host: h,
		sigs: opts.Signatures,
		log:  opts.Log,
		mode: opts.Mode,
		keep: opts.KeepLog,
		gate: confirm.New(h.Dialogs(), opts.Mode),
	}
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Kind returns the operation kind recorded by the last Begin.
func (s *Session) Kind() types.OperationKind { return s.kind }

// Target returns the file or directory the operation was started for.
func (s *Session) Target() string { return s.target }

// Gate exposes the fix decision of the current operation.
func (s *Session) Gate() *confirm.Gate { return s.gate }

// Log returns the session log.
func (s *Session) Log() *sessionlog.Log { return s.log }

// Outcomes returns every remediation outcome since Begin.
func (s *Session) Outcomes() []types.Outcome {
	return append([]types.Outcome(nil), s.outcomes...)
}

// Errors returns the scan pass errors collected since Begin.
func (s *Session) Errors() []error { return append([]error(nil), s.errs...) }

// Begin starts a top-level operation.
func (s *Session) Begin(kind types.OperationKind, target string) error {
	if s.state == Scanning {
		return fmt.Errorf("%w: %s %s", ErrSessionActive, s.kind, s.target)
	}
	s.gate.Reset()
	s.gate.SetMode(s.modeFor(kind))
	s.tally = types.Tally{}
	s.outcomes = nil
	s.errs = nil
	s.kind = kind
	s.target = target
	if !s.keep && s.log.Exists() {
		if err := s.log.Rotate(); err != nil {
			return err
		}
	}
	s.log.Begin(target)
	s.state = Scanning
	return nil
}

// modeFor picks how fixes are confirmed. A session opened as Silent never
// fixes, even on a headless host.
func (s *Session) modeFor(kind types.OperationKind) confirm.Mode {
	switch {
	case s.mode == confirm.Silent, kind.IsReference():
		return confirm.Silent
	case kind == types.OpHeadlessScan:
		return confirm.Headless
	case s.host.Process() != nil && s.host.Process().IsHeadless():
		return confirm.Headless
	}
	return s.mode
}

// Retarget names the document the next Run reports on, used when one
// operation walks several files.
func (s *Session) Retarget(target string) {
	s.log.Begin(target)
}

// Run scans the given artifact classes, or all of them when none are named,
// and remediates every finding. It returns the tally of this run alone; the
// session keeps the running total. Pass errors are logged and collected but
// never stop the remaining classes.
func (s *Session) Run(classes ...types.ArtifactClass) (types.Tally, error) {
	if s.state != Scanning {
		return types.Tally{}, ErrNotScanning
	}
	sc := scanner.New(s.sigs, s.host)
	eng := remedy.New(s.host, s.gate, s.log, string(s.kind))

	var run types.Tally
	for _, pass := range sc.Passes() {
		if !wanted(pass.Class, classes) {
			continue
		}
		findings, err := pass.Run()
		if err != nil {
			s.errs = append(s.errs, err)
			s.log.Error(fmt.Sprintf("%s scan failed: %v", pass.Class, err))
			continue
		}
		for _, f := range findings {
			s.log.Report(f.Evidence)
			o := eng.Remediate(f)
			run.Add(o)
			s.outcomes = append(s.outcomes, o)
		}
	}
	s.tally.Merge(run)
	return run, nil
}

func wanted(c types.ArtifactClass, classes []types.ArtifactClass) bool {
	if len(classes) == 0 {
		return true
	}
	for _, w := range classes {
		if w == c {
			return true
		}
	}
	return false
}

// End finishes the operation and returns its tally.
func (s *Session) End() (types.Tally, error) {
	if s.state != Scanning {
		return types.Tally{}, ErrNotScanning
	}
	s.state = Aggregated
	return s.tally, nil
}

// Scan is Begin, Run and End in one call.
func (s *Session) Scan(kind types.OperationKind, target string) (types.Tally, error) {
	if err := s.Begin(kind, target); err != nil {
		return types.Tally{}, err
	}
	if _, err := s.Run(); err != nil {
		return types.Tally{}, err
	}
	return s.End()
}
