package host

import "errors"

// ErrNotFound is returned by host accessors when the addressed artifact no
// longer exists.
var ErrNotFound = errors.New("not found")

// ScriptNode is one embedded script node of the current document.
type ScriptNode struct {
	Name string
	Body string
}

// Job is one registered background job.
type Job struct {
	ID          int
	Description string
}

// ScriptStore reads the well-known user initialization scripts.
type ScriptStore interface {
	// ScriptsDir is the directory holding userSetup.* and helper scripts.
	ScriptsDir() string
	// ReadScript returns the content of a well-known script. ok is false when
	// the file does not exist.
	ReadScript(name string) (content []byte, ok bool, err error)
}

// Document is the host's currently loaded scene.
type Document interface {
	// Path is the scene file name, or "" for an unnamed scene.
	Path() string
	ScriptNodes() ([]ScriptNode, error)
	DeleteScriptNode(name string) error
	Rename(path string) error
	Save() error
	// New replaces the document with an empty one.
	New() error
}

// Jobs exposes the host's background-job registry.
type Jobs interface {
	List() ([]Job, error)
	// Cancel kills a job. It returns ErrNotFound when the id is gone.
	Cancel(id int, force bool) error
}

// Interpreter exposes the host's embedded scripting runtime.
type Interpreter interface {
	// IntVariable reads an int global variable, ok is false when undefined.
	IntVariable(name string) (value int, ok bool)
	// IsInteractiveGlobal reports whether name is defined and was entered
	// interactively rather than shipped with the host.
	IsInteractiveGlobal(name string) bool
	// RedefineGlobalAsNoop replaces the procedure with one that raises an
	// error naming the corrupted command.
	RedefineGlobalAsNoop(name string) error
}

// Dialogs presents blocking choice dialogs to the user.
type Dialogs interface {
	Choose(title, message string, options []string, def string) (string, error)
}

// Process exposes process-level state and actions.
type Process interface {
	IsHeadless() bool
	Warn(msg string)
	Info(msg string)
	Quit(code int)
}

// Host bundles every capability the scanner consumes.
type Host interface {
	Scripts() ScriptStore
	Document() Document
	Jobs() Jobs
	Interpreter() Interpreter
	Dialogs() Dialogs
	Process() Process
	// Open loads a scene file as the current document.
	Open(path string) error
	// PrefsDir is the per-version user preferences directory.
	PrefsDir() string
}
