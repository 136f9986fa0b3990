package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ArtifactClass identifies which signature rules and which remediation apply
// to an artifact.
type ArtifactClass string

const (
	ClassScriptFile        ArtifactClass = "script_file"
	ClassScriptNode        ArtifactClass = "script_node"
	ClassBackgroundJob     ArtifactClass = "background_job"
	ClassInterpreterGlobal ArtifactClass = "interpreter_global"
)

// ScriptVariant is the script dialect implicated by a script-file finding.
type ScriptVariant int

const (
	VariantNone ScriptVariant = iota
	VariantPy
	VariantCompanion
	VariantMel
)

func (v ScriptVariant) String() string {
	switch v {
	case VariantMel:
		return "mel"
	case VariantPy:
		return "py"
	case VariantCompanion:
		return "companion"
	default:
		return "none"
	}
}

func (v ScriptVariant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *ScriptVariant) UnmarshalText(b []byte) error {
	switch string(b) {
	case "mel":
		*v = VariantMel
	case "py":
		*v = VariantPy
	case "companion":
		*v = VariantCompanion
	case "none", "":
		*v = VariantNone
	default:
		return fmt.Errorf("unknown script variant %q", string(b))
	}
	return nil
}

// Dialect folds the companion helper into the py dialect it belongs to.
func (v ScriptVariant) Dialect() ScriptVariant {
	if v == VariantCompanion {
		return VariantPy
	}
	return v
}

// Extension is the userSetup extension users are told to check.
func (v ScriptVariant) Extension() string {
	if v.Dialect() == VariantMel {
		return "mel"
	}
	return "py"
}

// Severity is kept for report compatibility. Findings are binary, so every
// finding carries SevInfo.
type Severity string

const SevInfo Severity = "info"

// Locator names the artifact a finding refers to. Each artifact class has its
// own locator type carrying exactly the fields that class needs.
type Locator interface {
	Class() ArtifactClass
	String() string
}

// FileLocator points at a script file on disk.
type FileLocator struct {
	Path    string        `json:"path"`
	Variant ScriptVariant `json:"variant"`
}

func (l FileLocator) Class() ArtifactClass { return ClassScriptFile }
func (l FileLocator) String() string       { return l.Path }

// NodeLocator points at a script node inside a document.
type NodeLocator struct {
	Document string `json:"document,omitempty"`
	Name     string `json:"name"`
}

func (l NodeLocator) Class() ArtifactClass { return ClassScriptNode }
func (l NodeLocator) String() string {
	if l.Document == "" {
		return l.Name
	}
	return l.Document + "::" + l.Name
}

// JobLocator points at a registered background job.
type JobLocator struct {
	ID int `json:"id"`
}

func (l JobLocator) Class() ArtifactClass { return ClassBackgroundJob }
func (l JobLocator) String() string       { return strconv.Itoa(l.ID) }

// GlobalLocator points at an interpreter global procedure.
type GlobalLocator struct {
	Name string `json:"name"`
}

func (l GlobalLocator) Class() ArtifactClass { return ClassInterpreterGlobal }
func (l GlobalLocator) String() string       { return l.Name }

// Finding is a confirmed signature match against one artifact. Findings are
// created by the scanner and consumed once by the remediation engine.
type Finding struct {
	Class    ArtifactClass `json:"class"`
	Locator  Locator       `json:"-"`
	Evidence string        `json:"evidence"`
	Severity Severity      `json:"severity"`
	// Ambiguous marks a finding raised on presence alone, without a full
	// signature match.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Where returns the display form of the locator.
func (f Finding) Where() string {
	if f.Locator == nil {
		return ""
	}
	return f.Locator.String()
}

// MarshalJSON adds the locator both as its display form and as the
// class-specific fields under "target".
func (f Finding) MarshalJSON() ([]byte, error) {
	type alias Finding
	return json.Marshal(struct {
		alias
		Locator string  `json:"locator"`
		Target  Locator `json:"target,omitempty"`
	}{alias: alias(f), Locator: f.Where(), Target: f.Locator})
}

// UnmarshalJSON rebuilds the locator from the class and its target fields.
func (f *Finding) UnmarshalJSON(b []byte) error {
	type alias Finding
	var raw struct {
		alias
		Target json.RawMessage `json:"target"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = Finding(raw.alias)
	if len(raw.Target) == 0 || string(raw.Target) == "null" {
		return nil
	}
	var err error
	switch f.Class {
	case ClassScriptFile:
		var l FileLocator
		err = json.Unmarshal(raw.Target, &l)
		f.Locator = l
	case ClassScriptNode:
		var l NodeLocator
		err = json.Unmarshal(raw.Target, &l)
		f.Locator = l
	case ClassBackgroundJob:
		var l JobLocator
		err = json.Unmarshal(raw.Target, &l)
		f.Locator = l
	case ClassInterpreterGlobal:
		var l GlobalLocator
		err = json.Unmarshal(raw.Target, &l)
		f.Locator = l
	default:
		return fmt.Errorf("unknown artifact class %q", f.Class)
	}
	if err != nil {
		return fmt.Errorf("decode %s locator: %w", f.Class, err)
	}
	return nil
}

// Variant returns the script variant for script-file findings.
func (f Finding) Variant() ScriptVariant {
	if fl, ok := f.Locator.(FileLocator); ok {
		return fl.Variant
	}
	return VariantNone
}

// NewFinding builds an informational finding for the given locator.
func NewFinding(loc Locator, evidence string) Finding {
	return Finding{Class: loc.Class(), Locator: loc, Evidence: evidence, Severity: SevInfo}
}

// Reason explains why a remediation did or did not fix its finding.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUserDeclined    Reason = "user_declined"
	ReasonAlreadyHandled  Reason = "already_handled"
	ReasonFilesystemError Reason = "filesystem_error"
	ReasonNotApplicable   Reason = "not_applicable"
)

// Outcome is the result of one remediation attempt.
type Outcome struct {
	Finding Finding `json:"finding"`
	Fixed   bool    `json:"fixed"`
	Reason  Reason  `json:"reason,omitempty"`
	Err     error   `json:"-"`
}

var (
	ErrRemediationDeclined = errors.New("remediation declined")
	ErrRemediationFailed   = errors.New("remediation failed")
	ErrAlreadyClean        = errors.New("already clean")
)

// Tally aggregates outcomes for one session.
type Tally struct {
	IssuesFound int           `json:"issues_found"`
	IssuesFixed int           `json:"issues_fixed"`
	Dominant    ScriptVariant `json:"dominant"`
}

// Add folds one outcome into the tally.
func (t *Tally) Add(o Outcome) {
	t.IssuesFound++
	if o.Fixed {
		t.IssuesFixed++
	}
	t.Observe(o.Finding.Variant())
}

// Observe records a script variant, keeping the one with the highest
// precedence: mel wins over py, py over none.
func (t *Tally) Observe(v ScriptVariant) {
	if v.Dialect() > t.Dominant.Dialect() {
		t.Dominant = v.Dialect()
	}
}

// Merge adds another tally into t.
func (t *Tally) Merge(o Tally) {
	t.IssuesFound += o.IssuesFound
	t.IssuesFixed += o.IssuesFixed
	t.Observe(o.Dominant)
}

// Clean reports whether nothing was found.
func (t Tally) Clean() bool { return t.IssuesFound == 0 }

// FullyFixed reports whether every finding was fixed.
func (t Tally) FullyFixed() bool { return t.IssuesFixed >= t.IssuesFound }

func (t Tally) String() string {
	return fmt.Sprintf("found=%d fixed=%d kind=%s", t.IssuesFound, t.IssuesFixed, t.Dominant)
}

// OperationKind is the host action that started a top-level operation.
type OperationKind string

const (
	OpOpen            OperationKind = "open"
	OpImport          OperationKind = "import"
	OpLoadReference   OperationKind = "load_reference"
	OpImportReference OperationKind = "import_reference"
	OpScanCurrent     OperationKind = "scan_current"
	OpScanFile        OperationKind = "scan_file"
	OpScanDirectory   OperationKind = "scan_directory"
	OpHeadlessScan    OperationKind = "headless_scan"
)

// IsReference reports whether the kind is one of the reference-load kinds.
func (k OperationKind) IsReference() bool {
	return k == OpLoadReference || k == OpImportReference
}

// Process exit codes for headless and batch use.
const (
	ExitClean       = 0
	ExitIssuesFound = 19
	ExitFixedSaved  = 20
)
