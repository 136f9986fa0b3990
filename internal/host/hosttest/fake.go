// Package hosttest provides an in-memory host for tests.
package hosttest

import (
	"fmt"
	"path/filepath"

	"github.com/hannesdelbeke/maya-security-tools/internal/host"
)

// Prompt records one Choose call.
type Prompt struct {
	Title   string
	Message string
	Options []string
	Default string
}

// Fake is an in-memory host. Script files live on disk under Dir/scripts so
// remediation exercises real filesystem operations.
type Fake struct {
	Dir string

	Scene  string
	Nodes  []host.ScriptNode
	Scenes map[string][]host.ScriptNode
	// Unsupported scenes fail to open.
	Unsupported map[string]bool

	JobList   []host.Job
	CancelErr map[int]error

	Vars               map[string]int
	InteractiveGlobals map[string]bool
	Redefined          []string
	RedefineErr        error

	DeleteErr map[string]error

	Headless bool
	Answers  []string
	Prompts  []Prompt

	Warnings  []string
	Infos     []string
	QuitCodes []int
	Saved     []string
	SaveErr   error
	Renames   []string
	NewCount  int
	Opened    []string
}

// New returns a fake host rooted at dir.
func New(dir string) *Fake {
	return &Fake{
		Dir:                dir,
		Scenes:             map[string][]host.ScriptNode{},
		Unsupported:        map[string]bool{},
		CancelErr:          map[int]error{},
		Vars:               map[string]int{},
		InteractiveGlobals: map[string]bool{},
		DeleteErr:          map[string]error{},
	}
}

var (
	_ host.Host        = (*Fake)(nil)
	_ host.Document    = (*Fake)(nil)
	_ host.Jobs        = (*Fake)(nil)
	_ host.Interpreter = (*Fake)(nil)
	_ host.Dialogs     = (*Fake)(nil)
	_ host.Process     = (*Fake)(nil)
)

func (f *Fake) Scripts() host.ScriptStore {
	return host.DirScripts{Dir: filepath.Join(f.Dir, "scripts")}
}
func (f *Fake) Document() host.Document       { return f }
func (f *Fake) Jobs() host.Jobs               { return f }
func (f *Fake) Interpreter() host.Interpreter { return f }
func (f *Fake) Dialogs() host.Dialogs         { return f }
func (f *Fake) Process() host.Process         { return f }
func (f *Fake) PrefsDir() string              { return f.Dir }

func (f *Fake) Open(path string) error {
	f.Opened = append(f.Opened, path)
	if f.Unsupported[path] {
		return fmt.Errorf("open %s: unsupported scene format", path)
	}
	nodes, ok := f.Scenes[path]
	if !ok {
		return fmt.Errorf("open %s: %w", path, host.ErrNotFound)
	}
	f.Scene = path
	f.Nodes = append([]host.ScriptNode(nil), nodes...)
	return nil
}

// Document

func (f *Fake) Path() string { return f.Scene }

func (f *Fake) ScriptNodes() ([]host.ScriptNode, error) {
	return append([]host.ScriptNode(nil), f.Nodes...), nil
}

func (f *Fake) DeleteScriptNode(name string) error {
	if err := f.DeleteErr[name]; err != nil {
		return err
	}
	for i, n := range f.Nodes {
		if n.Name == name {
			f.Nodes = append(f.Nodes[:i], f.Nodes[i+1:]...)
			if f.Scene != "" {
				if _, ok := f.Scenes[f.Scene]; ok {
					f.Scenes[f.Scene] = append([]host.ScriptNode(nil), f.Nodes...)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", name, host.ErrNotFound)
}

func (f *Fake) Rename(path string) error {
	f.Renames = append(f.Renames, path)
	f.Scene = path
	return nil
}

func (f *Fake) Save() error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Saved = append(f.Saved, f.Scene)
	return nil
}

func (f *Fake) New() error {
	f.NewCount++
	f.Scene = ""
	f.Nodes = nil
	return nil
}

// Jobs

func (f *Fake) List() ([]host.Job, error) {
	return append([]host.Job(nil), f.JobList...), nil
}

func (f *Fake) Cancel(id int, _ bool) error {
	if err := f.CancelErr[id]; err != nil {
		return err
	}
	for i, j := range f.JobList {
		if j.ID == id {
			f.JobList = append(f.JobList[:i], f.JobList[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("job %d: %w", id, host.ErrNotFound)
}

// Interpreter

func (f *Fake) IntVariable(name string) (int, bool) {
	v, ok := f.Vars[name]
	return v, ok
}

func (f *Fake) IsInteractiveGlobal(name string) bool { return f.InteractiveGlobals[name] }

func (f *Fake) RedefineGlobalAsNoop(name string) error {
	if f.RedefineErr != nil {
		return f.RedefineErr
	}
	f.Redefined = append(f.Redefined, name)
	f.InteractiveGlobals[name] = false
	return nil
}

// Dialogs

func (f *Fake) Choose(title, message string, options []string, def string) (string, error) {
	f.Prompts = append(f.Prompts, Prompt{Title: title, Message: message, Options: options, Default: def})
	if len(f.Answers) == 0 {
		return def, nil
	}
	a := f.Answers[0]
	f.Answers = f.Answers[1:]
	return a, nil
}

// Process

func (f *Fake) IsHeadless() bool { return f.Headless }
func (f *Fake) Warn(msg string)  { f.Warnings = append(f.Warnings, msg) }
func (f *Fake) Info(msg string)  { f.Infos = append(f.Infos, msg) }
func (f *Fake) Quit(code int)    { f.QuitCodes = append(f.QuitCodes, code) }
