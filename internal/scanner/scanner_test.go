package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/host/hosttest"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

func newScanner(t *testing.T) (*Scanner, *hosttest.Fake) {
	t.Helper()
	f := hosttest.New(t.TempDir())
	return New(signatures.Default(), f), f
}

func TestScriptFiles(t *testing.T) {
	s, f := newScanner(t)
	_, err := f.WriteScript(signatures.MelScript, hosttest.InfectedMel())
	require.NoError(t, err)
	_, err = f.WriteScript(signatures.CompanionScript, "garbled")
	require.NoError(t, err)

	got, err := s.ScriptFiles()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, types.ClassScriptFile, got[0].Class)
	assert.Equal(t, types.VariantMel, got[0].Variant())
	assert.Equal(t, filepath.Join(f.Dir, "scripts", "userSetup.mel"), got[0].Where())
	assert.False(t, got[0].Ambiguous)

	assert.Equal(t, types.VariantCompanion, got[1].Variant())
	assert.True(t, got[1].Ambiguous, "garbled helper is reported, never skipped")
}

func TestScriptFiles_CleanAndMissing(t *testing.T) {
	s, f := newScanner(t)
	_, err := f.WriteScript(signatures.PyScript, "import maya.cmds as cmds\n")
	require.NoError(t, err)

	got, err := s.ScriptFiles()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScriptFiles_Unreadable(t *testing.T) {
	s, f := newScanner(t)
	// a directory in place of the script cannot be read as a file
	require.NoError(t, os.MkdirAll(filepath.Join(f.Dir, "scripts", signatures.PyScript), 0o755))

	got, err := s.ScriptFiles()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Ambiguous)
	assert.Contains(t, got[0].Evidence, "unreadable")
}

func TestScriptNodes(t *testing.T) {
	s, f := newScanner(t)
	f.Scene = "/proj/shot010.ma"
	f.Nodes = []host.ScriptNode{
		hosttest.InfectedNode("MayaMelUIConfigurationFile1"),
		{Name: "sceneConfigurationScriptNode", Body: "playbackOptions"},
		{Name: "ns:breed_gene"},
	}

	got, err := s.ScriptNodes()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "shot010.ma::MayaMelUIConfigurationFile1", got[0].Where())
	assert.Equal(t, types.NodeLocator{Document: "shot010.ma", Name: "ns:breed_gene"}, got[1].Locator)
}

func TestBackgroundJobs(t *testing.T) {
	s, f := newScanner(t)
	f.Vars[signatures.JobIDVariable] = 12
	f.JobList = []host.Job{
		{ID: 12, Description: "12: event=SceneSaved autoUpdatcAttrEd"},
		{ID: 123, Description: "123: event=idle myTool()"},
		{ID: 40, Description: "40: " + hosttest.JobDescription},
		{ID: 40, Description: "40: " + hosttest.JobDescription},
	}

	got, err := s.BackgroundJobs()
	require.NoError(t, err)
	require.Len(t, got, 2, "duplicate ids collapse")
	assert.Equal(t, types.JobLocator{ID: 12}, got[0].Locator)
	assert.Equal(t, types.JobLocator{ID: 40}, got[1].Locator)
}

func TestGlobals(t *testing.T) {
	s, f := newScanner(t)
	f.InteractiveGlobals["autoUpdatcAttrEd"] = true
	f.InteractiveGlobals["myOwnProc"] = true

	got, err := s.Globals()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.GlobalLocator{Name: "autoUpdatcAttrEd"}, got[0].Locator)
}

func TestAll_FixedOrder(t *testing.T) {
	s, f := newScanner(t)
	_, err := f.WriteScript(signatures.PyScript, hosttest.InfectedPy)
	require.NoError(t, err)
	f.Nodes = []host.ScriptNode{{Name: "vaccine_gene"}}
	f.JobList = []host.Job{{ID: 3, Description: "3: " + hosttest.JobDescription}}
	f.InteractiveGlobals["UI_Mel_Configuration_think"] = true

	got, errs := s.All()
	assert.Empty(t, errs)
	var classes []types.ArtifactClass
	for _, g := range got {
		classes = append(classes, g.Class)
	}
	assert.Equal(t, []types.ArtifactClass{
		types.ClassScriptFile,
		types.ClassScriptNode,
		types.ClassBackgroundJob,
		types.ClassInterpreterGlobal,
	}, classes)
}

func TestNoSideEffects(t *testing.T) {
	s, f := newScanner(t)
	p, err := f.WriteScript(signatures.PyScript, hosttest.InfectedPy)
	require.NoError(t, err)
	f.Nodes = []host.ScriptNode{{Name: "vaccine_gene"}}

	_, _ = s.All()
	_, _ = s.All()
	assert.FileExists(t, p)
	assert.Len(t, f.Nodes, 1)
	assert.Empty(t, f.Redefined)
}

func TestShorten_RuneBoundary(t *testing.T) {
	assert.Equal(t, "short", shorten("  short  "))

	long := strings.Repeat("a", 76) + strings.Repeat("é", 10)
	got := shorten(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 76)+"...", got)
	assert.LessOrEqual(t, len(got), 80)
}
