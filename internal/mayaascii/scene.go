// Package mayaascii reads and edits the script nodes of Maya ASCII scenes.
//
// A scene is kept as its ordered list of top-level statements. A statement
// starts in column zero and continues over every following line that begins
// with whitespace, which is how Maya writes node blocks and wrapped string
// arguments. Only script nodes are interpreted; every other statement is
// written back byte for byte.
package mayaascii

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Header is the first line prefix of every Maya ASCII file.
const Header = "//Maya ASCII"

var (
	// ErrUnsupported is returned for binary scenes and non-scene files.
	ErrUnsupported = errors.New("mayaascii: unsupported scene format")
	// ErrNoSuchNode is returned when deleting a node that is not present.
	ErrNoSuchNode = errors.New("mayaascii: no such node")
)

// ScriptNode is one `createNode script` block.
type ScriptNode struct {
	Name string
	// Before is the decoded `.b` attribute, the script run on scene open.
	Before string
	// After is the decoded `.a` attribute.
	After string
}

// Body joins the before and after scripts.
func (n ScriptNode) Body() string {
	if n.After == "" {
		return n.Before
	}
	return n.Before + "\n" + n.After
}

type statement struct {
	text   string
	script *ScriptNode
}

// Scene is a parsed Maya ASCII file.
type Scene struct {
	Path  string
	stmts []statement
}

// IsBinary reports whether path names a Maya binary scene.
func IsBinary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mb")
}

// Load reads and parses the scene at path.
func Load(path string) (*Scene, error) {
	if IsBinary(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse reads a Maya ASCII scene.
func Parse(r io.Reader) (*Scene, error) {
	br := bufio.NewReader(r)
	s := &Scene{}
	var cur strings.Builder
	first := true
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		s.stmts = append(s.stmts, newStatement(cur.String()))
		cur.Reset()
	}
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if first {
				if !strings.HasPrefix(line, Header) {
					return nil, ErrUnsupported
				}
				first = false
			}
			if !isContinuation(line) {
				flush()
			}
			cur.WriteString(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if first {
		return nil, ErrUnsupported
	}
	flush()
	return s, nil
}

func isContinuation(line string) bool {
	return line[0] == '\t' || line[0] == ' '
}

func newStatement(text string) statement {
	st := statement{text: text}
	if name, ok := scriptNodeName(text); ok {
		st.script = &ScriptNode{
			Name:   name,
			Before: stringAttr(text, ".b", ".before"),
			After:  stringAttr(text, ".a", ".after"),
		}
	}
	return st
}

// scriptNodeName extracts the -n flag of a `createNode script` statement.
func scriptNodeName(text string) (string, bool) {
	head, _, _ := strings.Cut(text, "\n")
	fields := strings.Fields(head)
	if len(fields) < 2 || fields[0] != "createNode" || fields[1] != "script" {
		return "", false
	}
	for i := 2; i < len(fields)-1; i++ {
		if fields[i] == "-n" || fields[i] == "-name" {
			lits, _ := literals(strings.Join(fields[i+1:], " "))
			if len(lits) > 0 {
				return lits[0], true
			}
		}
	}
	return "", false
}

// stringAttr finds `setAttr "<attr>" -type "string" ...;` inside a node
// block and returns its decoded value.
func stringAttr(block string, attrs ...string) string {
	for _, attr := range attrs {
		needle := `setAttr "` + attr + `" -type "string"`
		i := strings.Index(block, needle)
		if i < 0 {
			continue
		}
		lits, _ := literals(block[i+len(needle):])
		return strings.Join(lits, "")
	}
	return ""
}

// literals decodes the double-quoted string literals of src up to the first
// unquoted semicolon. It returns the literals and the offset just past the
// terminator.
func literals(src string) ([]string, int) {
	var out []string
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case ';':
			return out, i + 1
		case '"':
			var b strings.Builder
			j := i + 1
			for ; j < len(src) && src[j] != '"'; j++ {
				if src[j] == '\\' && j+1 < len(src) {
					j++
					b.WriteByte(unescape(src[j]))
					continue
				}
				b.WriteByte(src[j])
			}
			out = append(out, b.String())
			i = j
		}
	}
	return out, len(src)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// ScriptNodes lists the scene's script nodes in file order.
func (s *Scene) ScriptNodes() []ScriptNode {
	var out []ScriptNode
	for _, st := range s.stmts {
		if st.script != nil {
			out = append(out, *st.script)
		}
	}
	return out
}

// References lists the files the scene references, in file order, resolved
// against the scene's directory. Reference definition and load statements
// naming the same file appear once.
func (s *Scene) References() []string {
	var out []string
	seen := map[string]bool{}
	for _, st := range s.stmts {
		fields := strings.Fields(st.text)
		if len(fields) < 2 || fields[0] != "file" || (fields[1] != "-r" && fields[1] != "-rdi") {
			continue
		}
		lits, _ := literals(st.text)
		if len(lits) == 0 {
			continue
		}
		p := filepath.FromSlash(lits[len(lits)-1])
		if !filepath.IsAbs(p) && s.Path != "" {
			p = filepath.Join(filepath.Dir(s.Path), p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// DeleteScriptNode removes the named node block together with any top-level
// statement that references one of its attributes.
func (s *Scene) DeleteScriptNode(name string) error {
	found := false
	ref := `"` + name + `.`
	kept := s.stmts[:0]
	for _, st := range s.stmts {
		if st.script != nil && st.script.Name == name {
			found = true
			continue
		}
		if st.script == nil && strings.HasPrefix(st.text, "connectAttr") && strings.Contains(st.text, ref) {
			continue
		}
		kept = append(kept, st)
	}
	s.stmts = kept
	if !found {
		return fmt.Errorf("%s: %w", name, ErrNoSuchNode)
	}
	return nil
}

// Bytes renders the scene.
func (s *Scene) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo writes the scene to w.
func (s *Scene) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, st := range s.stmts {
		m, err := io.WriteString(w, st.text)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Save writes the scene to s.Path through a temporary file in the same
// directory.
func (s *Scene) Save() error {
	if s.Path == "" {
		return errors.New("mayaascii: scene has no path")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".mayascan-*.ma")
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Empty returns a new scene containing only the header.
func Empty(version string) *Scene {
	return &Scene{stmts: []statement{{text: Header + " " + version + " scene\n"}}}
}
