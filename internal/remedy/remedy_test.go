package remedy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/host"
	"github.com/hannesdelbeke/maya-security-tools/internal/host/hosttest"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

type recorder struct {
	reports []string
	errors  []string
}

func (r *recorder) Report(msg string) { r.reports = append(r.reports, msg) }
func (r *recorder) Error(msg string)  { r.errors = append(r.errors, msg) }

func newEngine(t *testing.T, mode confirm.Mode) (*Engine, *hosttest.Fake, *recorder) {
	t.Helper()
	f := hosttest.New(t.TempDir())
	rec := &recorder{}
	return New(f, confirm.New(f, mode), rec, "scan"), f, rec
}

func fileFinding(path string) types.Finding {
	return types.NewFinding(types.FileLocator{Path: path, Variant: types.VariantPy}, "userSetup.py : Infected by Malware!")
}

func TestRemediate_DeclinedLeavesArtifact(t *testing.T) {
	e, f, _ := newEngine(t, confirm.Silent)
	p, err := f.WriteScript("userSetup.py", hosttest.InfectedPy)
	require.NoError(t, err)

	out := e.Remediate(fileFinding(p))
	assert.False(t, out.Fixed)
	assert.Equal(t, types.ReasonUserDeclined, out.Reason)
	assert.ErrorIs(t, out.Err, types.ErrRemediationDeclined)
	assert.FileExists(t, p)
}

func TestRemediate_QuarantineScriptFile(t *testing.T) {
	e, f, rec := newEngine(t, confirm.Headless)
	p, err := f.WriteScript("userSetup.py", hosttest.InfectedPy)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(p, 0o444))

	dir := filepath.Dir(p)
	cache := filepath.Join(dir, "__pycache__")
	require.NoError(t, os.MkdirAll(cache, 0o755))
	pyc := filepath.Join(cache, "vaccine.cpython-39.pyc")
	keep := filepath.Join(cache, "mytool.cpython-39.pyc")
	require.NoError(t, os.WriteFile(pyc, []byte{0}, 0o644))
	require.NoError(t, os.WriteFile(keep, []byte{0}, 0o644))
	require.NoError(t, os.WriteFile(p+QuarantineSuffix, []byte("old"), 0o644))

	out := e.Remediate(fileFinding(p))
	require.True(t, out.Fixed, out.Err)
	assert.Equal(t, types.ReasonNone, out.Reason)

	assert.NoFileExists(t, p)
	assert.NoFileExists(t, pyc)
	assert.FileExists(t, keep)
	data, err := os.ReadFile(p + QuarantineSuffix)
	require.NoError(t, err)
	assert.Equal(t, hosttest.InfectedPy, string(data))
	assert.Contains(t, rec.reports, "Renamed : "+p)
}

func TestRemediate_QuarantineRetryAfterFailure(t *testing.T) {
	e, f, rec := newEngine(t, confirm.Headless)
	p, err := f.WriteScript("userSetup.mel", hosttest.InfectedMel())
	require.NoError(t, err)

	// a non-empty directory in the quarantine slot cannot be removed
	blocker := p + QuarantineSuffix
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "x"), 0o755))

	out := e.Remediate(fileFinding(p))
	assert.False(t, out.Fixed)
	assert.Equal(t, types.ReasonFilesystemError, out.Reason)
	assert.ErrorIs(t, out.Err, types.ErrRemediationFailed)
	assert.FileExists(t, p)
	require.Len(t, rec.errors, 1)

	require.NoError(t, os.RemoveAll(blocker))
	out = e.Remediate(fileFinding(p))
	assert.True(t, out.Fixed)
	assert.FileExists(t, blocker)

	out = e.Remediate(fileFinding(p))
	assert.True(t, out.Fixed)
	assert.Equal(t, types.ReasonAlreadyHandled, out.Reason)
}

func TestRemediate_DeleteNode(t *testing.T) {
	e, f, rec := newEngine(t, confirm.Headless)
	f.Nodes = []host.ScriptNode{hosttest.InfectedNode("MayaMelUIConfigurationFile1"), {Name: "sceneConfigurationScriptNode"}}

	out := e.Remediate(types.NewFinding(types.NodeLocator{Name: "MayaMelUIConfigurationFile1"}, "scriptNode present"))
	assert.True(t, out.Fixed)
	require.Len(t, f.Nodes, 1)
	assert.Equal(t, "sceneConfigurationScriptNode", f.Nodes[0].Name)
	assert.Equal(t, []string{"Removed : scriptNode: MayaMelUIConfigurationFile1"}, rec.reports)
}

func TestRemediate_DeleteNodeRejected(t *testing.T) {
	e, f, rec := newEngine(t, confirm.Headless)
	f.Nodes = []host.ScriptNode{{Name: "vaccine_gene"}}
	f.DeleteErr["vaccine_gene"] = errors.New("node is locked")

	out := e.Remediate(types.NewFinding(types.NodeLocator{Name: "vaccine_gene"}, "scriptNode present"))
	assert.False(t, out.Fixed)
	assert.ErrorIs(t, out.Err, types.ErrRemediationFailed)
	assert.Len(t, rec.errors, 1)
	assert.Len(t, f.Nodes, 1)
}

func TestRemediate_CancelJob(t *testing.T) {
	e, f, _ := newEngine(t, confirm.Headless)
	f.JobList = []host.Job{{ID: 7, Description: "7: " + hosttest.JobDescription}}

	out := e.Remediate(types.NewFinding(types.JobLocator{ID: 7}, "scriptJob present"))
	assert.True(t, out.Fixed)
	assert.Equal(t, types.ReasonNone, out.Reason)
	assert.Empty(t, f.JobList)

	out = e.Remediate(types.NewFinding(types.JobLocator{ID: 7}, "scriptJob present"))
	assert.True(t, out.Fixed, "a job that is already gone counts as handled")
	assert.Equal(t, types.ReasonAlreadyHandled, out.Reason)
}

func TestRemediate_NeutralizeGlobal(t *testing.T) {
	e, f, _ := newEngine(t, confirm.Headless)
	f.InteractiveGlobals["autoUpdatcAttrEd"] = true

	out := e.Remediate(types.NewFinding(types.GlobalLocator{Name: "autoUpdatcAttrEd"}, "corrupted global"))
	assert.True(t, out.Fixed)
	assert.Equal(t, []string{"autoUpdatcAttrEd"}, f.Redefined)

	f.RedefineErr = errors.New("syntax error")
	out = e.Remediate(types.NewFinding(types.GlobalLocator{Name: "autoUpdatoAttrEnd"}, "corrupted global"))
	assert.False(t, out.Fixed)
}

func TestRemediate_PromptsOnceAcrossClasses(t *testing.T) {
	e, f, _ := newEngine(t, confirm.Interactive)
	f.Answers = []string{confirm.OptionYes}
	f.JobList = []host.Job{{ID: 1}, {ID: 2}}
	f.Nodes = []host.ScriptNode{{Name: "vaccine_gene"}}

	e.Remediate(types.NewFinding(types.JobLocator{ID: 1}, ""))
	e.Remediate(types.NewFinding(types.JobLocator{ID: 2}, ""))
	e.Remediate(types.NewFinding(types.NodeLocator{Name: "vaccine_gene"}, ""))

	require.Len(t, f.Prompts, 1)
	assert.Equal(t, "MayaScanner: scan : ", f.Prompts[0].Title)
	assert.Empty(t, f.JobList)
	assert.Empty(t, f.Nodes)
}
