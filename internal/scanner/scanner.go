package scanner

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// Scanner enumerates the artifacts of each class through read-only host
// accessors and matches them against a signature set. It never modifies
// anything.
type Scanner struct {
	Sigs    signatures.Set
	Scripts host.ScriptStore
	Doc     host.Document
	Jobs    host.Jobs
	Interp  host.Interpreter
}

// New builds a scanner over every accessor the host exposes.
func New(sigs signatures.Set, h host.Host) *Scanner {
	return &Scanner{
		Sigs:    sigs,
		Scripts: h.Scripts(),
		Doc:     h.Document(),
		Jobs:    h.Jobs(),
		Interp:  h.Interpreter(),
	}
}

// Pass scans one artifact class.
type Pass struct {
	Class types.ArtifactClass
	Run   func() ([]types.Finding, error)
}

// Passes returns the scan passes in their fixed order: script files, script
// nodes, background jobs, interpreter globals.
func (s *Scanner) Passes() []Pass {
	return []Pass{
		{Class: types.ClassScriptFile, Run: s.ScriptFiles},
		{Class: types.ClassScriptNode, Run: s.ScriptNodes},
		{Class: types.ClassBackgroundJob, Run: s.BackgroundJobs},
		{Class: types.ClassInterpreterGlobal, Run: s.Globals},
	}
}

// ScriptFiles yields at most one finding per well-known script name. A
// script that exists but cannot be read is reported as an ambiguous finding.
func (s *Scanner) ScriptFiles() ([]types.Finding, error) {
	if s.Scripts == nil {
		return nil, nil
	}
	var out []types.Finding
	for _, name := range signatures.ScriptNames() {
		variant := signatures.VariantFor(name)
		loc := types.FileLocator{Path: filepath.Join(s.Scripts.ScriptsDir(), name), Variant: variant}
		data, ok, err := s.Scripts.ReadScript(name)
		if !ok {
			continue
		}
		if err != nil {
			f := types.NewFinding(loc, fmt.Sprintf("%s : unreadable (%v), treat as suspect", name, err))
			f.Ambiguous = true
			out = append(out, f)
			continue
		}
		v := s.Sigs.MatchScriptFile(variant, string(data))
		if !v.Matched {
			continue
		}
		f := types.NewFinding(loc, name+" : "+v.Evidence)
		f.Ambiguous = v.Unverifiable
		out = append(out, f)
	}
	return out, nil
}

// ScriptNodes yields one finding per infected script node of the document.
func (s *Scanner) ScriptNodes() ([]types.Finding, error) {
	if s.Doc == nil {
		return nil, nil
	}
	nodes, err := s.Doc.ScriptNodes()
	if err != nil {
		return nil, fmt.Errorf("list script nodes: %w", err)
	}
	var out []types.Finding
	for _, n := range nodes {
		if !s.Sigs.MatchScriptNode(n.Name, n.Body) {
			continue
		}
		loc := types.NodeLocator{Document: filepath.Base(s.Doc.Path()), Name: n.Name}
		if s.Doc.Path() == "" {
			loc.Document = ""
		}
		out = append(out, types.NewFinding(loc, "scriptNode present : "+n.Name))
	}
	return out, nil
}

// BackgroundJobs yields one finding per infected job id.
func (s *Scanner) BackgroundJobs() ([]types.Finding, error) {
	if s.Jobs == nil {
		return nil, nil
	}
	jobs, err := s.Jobs.List()
	if err != nil {
		return nil, fmt.Errorf("list background jobs: %w", err)
	}
	recorded, haveRecorded := 0, false
	if s.Interp != nil {
		recorded, haveRecorded = s.Interp.IntVariable(signatures.JobIDVariable)
	}
	seen := map[int]bool{}
	var out []types.Finding
	for _, j := range jobs {
		id, ok := s.Sigs.MatchBackgroundJob(j.Description, recorded, haveRecorded)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, types.NewFinding(types.JobLocator{ID: id}, "scriptJob present : "+shorten(j.Description)))
	}
	return out, nil
}

// Globals yields one finding per known procedure that is defined
// interactively.
func (s *Scanner) Globals() ([]types.Finding, error) {
	if s.Interp == nil {
		return nil, nil
	}
	var out []types.Finding
	for _, name := range signatures.Globals {
		if !s.Sigs.MatchGlobal(name, s.Interp.IsInteractiveGlobal(name)) {
			continue
		}
		out = append(out, types.NewFinding(types.GlobalLocator{Name: name}, "corrupted global procedure : "+name))
	}
	return out, nil
}

// All runs every pass in order and concatenates the findings. Pass errors are
// collected rather than stopping the remaining passes.
func (s *Scanner) All() ([]types.Finding, []error) {
	var out []types.Finding
	var errs []error
	for _, p := range s.Passes() {
		fs, err := p.Run()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, fs...)
	}
	return out, errs
}

func shorten(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		cut := 77
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
