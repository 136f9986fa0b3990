package offline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/mayaascii"
)

// SceneVersion is written into the header of scenes created by New.
const SceneVersion = "2024"

// ErrNoInterpreter is returned for edits that need a live Maya session.
var ErrNoInterpreter = errors.New("offline: no MEL interpreter outside Maya")

// Options configure a Host.
type Options struct {
	// PrefsDir is the Maya user directory. Empty uses DefaultPrefsDir.
	PrefsDir string
	// Headless forces batch behavior even on a terminal.
	Headless bool
	// Dialogs answers prompts when not headless. Nil answers every prompt
	// with its default.
	Dialogs host.Dialogs
	// Logger receives Warn and Info. Nil uses the logrus standard logger.
	Logger *logrus.Logger
}

type layer struct {
	path  string
	scene *mayaascii.Scene
	ns    string
}

// Host is a host.Host over files on disk.
type Host struct {
	prefs    string
	headless bool
	dialogs  host.Dialogs
	log      *logrus.Logger

	scene *mayaascii.Scene
	refs  []layer
	// focus holds the indexes of the references being loaded, innermost
	// last. ScriptNodes only reports the innermost one.
	focus []int

	quit     bool
	exitCode int
}

var (
	_ host.Host        = (*Host)(nil)
	_ host.Document    = (*Host)(nil)
	_ host.Jobs        = (*Host)(nil)
	_ host.Interpreter = (*Host)(nil)
	_ host.Process     = (*Host)(nil)
)

// New returns a host with an empty, unnamed document.
func New(opts Options) *Host {
	if opts.PrefsDir == "" {
		opts.PrefsDir = DefaultPrefsDir()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	headless := opts.Headless || !stdinIsTerminal()
	return &Host{
		prefs:    opts.PrefsDir,
		headless: headless,
		dialogs:  opts.Dialogs,
		log:      opts.Logger,
		scene:    mayaascii.Empty(SceneVersion),
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (h *Host) Scripts() host.ScriptStore {
	return host.DirScripts{Dir: ScriptsDir(h.prefs)}
}
func (h *Host) Document() host.Document       { return h }
func (h *Host) Jobs() host.Jobs               { return h }
func (h *Host) Interpreter() host.Interpreter { return h }
func (h *Host) Process() host.Process         { return h }
func (h *Host) PrefsDir() string              { return h.prefs }

func (h *Host) Dialogs() host.Dialogs {
	if h.headless || h.dialogs == nil {
		return defaultDialogs{}
	}
	return h.dialogs
}

// Open loads a Maya ASCII scene as the document and drops any references.
func (h *Host) Open(path string) error {
	s, err := mayaascii.Load(path)
	if err != nil {
		return err
	}
	h.scene = s
	h.refs = nil
	h.focus = nil
	return nil
}

// References lists the files the open scene references.
func (h *Host) References() []string { return h.scene.References() }

// LoadReference layers the scene at path on top of the document and returns
// the files that scene references in turn. Until the matching EndReference,
// ScriptNodes only reports the nodes of this reference. A reference loaded
// while another is focused is nested in its namespace.
func (h *Host) LoadReference(path string) ([]string, error) {
	s, err := mayaascii.Load(path)
	if err != nil {
		return nil, err
	}
	ns := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if n := len(h.focus); n > 0 {
		ns = h.refs[h.focus[n-1]].ns + ":" + ns
	}
	h.refs = append(h.refs, layer{path: path, scene: s, ns: ns})
	h.focus = append(h.focus, len(h.refs)-1)
	return s.References(), nil
}

// EndReference ends the innermost reference load. Once every load has
// ended the whole document is visible again.
func (h *Host) EndReference() {
	if n := len(h.focus); n > 0 {
		h.focus = h.focus[:n-1]
	}
}

// Path returns the scene file name, "" when unnamed.
func (h *Host) Path() string { return h.scene.Path }

func (h *Host) ScriptNodes() ([]host.ScriptNode, error) {
	if n := len(h.focus); n > 0 {
		return layerNodes(h.refs[h.focus[n-1]]), nil
	}
	var out []host.ScriptNode
	for _, n := range h.scene.ScriptNodes() {
		out = append(out, host.ScriptNode{Name: n.Name, Body: n.Body()})
	}
	for _, l := range h.refs {
		out = append(out, layerNodes(l)...)
	}
	return out, nil
}

func layerNodes(l layer) []host.ScriptNode {
	var out []host.ScriptNode
	for _, n := range l.scene.ScriptNodes() {
		out = append(out, host.ScriptNode{Name: l.ns + ":" + n.Name, Body: n.Body()})
	}
	return out
}

func (h *Host) DeleteScriptNode(name string) error {
	for _, l := range h.refs {
		if strings.HasPrefix(name, l.ns+":") {
			return fmt.Errorf("delete %s: node is locked by reference %s", name, l.path)
		}
	}
	err := h.scene.DeleteScriptNode(name)
	if errors.Is(err, mayaascii.ErrNoSuchNode) {
		return fmt.Errorf("delete %s: %w", name, host.ErrNotFound)
	}
	return err
}

func (h *Host) Rename(path string) error {
	h.scene.Path = path
	return nil
}

// Save writes the document. Reference layers are never written.
func (h *Host) Save() error {
	if h.scene.Path == "" {
		return errors.New("offline: scene has no name")
	}
	return h.scene.Save()
}

func (h *Host) New() error {
	h.scene = mayaascii.Empty(SceneVersion)
	h.refs = nil
	h.focus = nil
	return nil
}

// Jobs: there is no job registry offline.

func (h *Host) List() ([]host.Job, error) { return nil, nil }

func (h *Host) Cancel(id int, _ bool) error {
	return fmt.Errorf("job %d: %w", id, host.ErrNotFound)
}

// Interpreter: nothing is defined offline.

func (h *Host) IntVariable(string) (int, bool)    { return 0, false }
func (h *Host) IsInteractiveGlobal(string) bool   { return false }
func (h *Host) RedefineGlobalAsNoop(string) error { return ErrNoInterpreter }

// Process

func (h *Host) IsHeadless() bool { return h.headless }
func (h *Host) Warn(msg string)  { h.log.Warn(msg) }
func (h *Host) Info(msg string)  { h.log.Info(msg) }

// Quit records the exit code. The caller decides when to leave the process.
func (h *Host) Quit(code int) {
	h.quit = true
	h.exitCode = code
}

// ExitCode returns the code passed to Quit and whether Quit was called.
func (h *Host) ExitCode() (int, bool) { return h.exitCode, h.quit }

type defaultDialogs struct{}

func (defaultDialogs) Choose(_, _ string, _ []string, def string) (string, error) {
	return def, nil
}
