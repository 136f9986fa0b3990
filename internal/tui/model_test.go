package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

func outcomes() []types.Outcome {
	return []types.Outcome{
		{Finding: types.NewFinding(types.FileLocator{Path: "/prefs/scripts/userSetup.py", Variant: types.VariantPy}, "userSetup.py : Infected by Malware!"), Fixed: true},
		{Finding: types.NewFinding(types.JobLocator{ID: 12}, "scriptJob present"), Reason: types.ReasonUserDeclined},
	}
}

func TestModel_ViewListsOutcomes(t *testing.T) {
	m := NewModel(outcomes(), types.Tally{IssuesFound: 2, IssuesFixed: 1})
	view := m.View()
	assert.Contains(t, view, "userSetup.py")
	assert.Contains(t, view, "declined")
	assert.Contains(t, view, "found 2 • fixed 1")
}

func TestModel_Empty(t *testing.T) {
	m := NewModel(nil, types.Tally{})
	assert.Contains(t, m.View(), "No issues found")
}

func TestModel_DetailShowsQuarantinedScript(t *testing.T) {
	var read string
	orig := readFile
	defer func() { readFile = orig }()
	readFile = func(name string) ([]byte, error) {
		read = name
		return []byte("import vaccine\n"), nil
	}

	m := NewModel(outcomes(), types.Tally{IssuesFound: 2, IssuesFixed: 1})
	got, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := got.View()
	assert.Equal(t, "/prefs/scripts/userSetup.py.INFECTED", read)
	assert.Contains(t, view, "Evidence: userSetup.py : Infected by Malware!")
	assert.True(t, strings.Contains(view, "vaccine"))

	// esc closes the detail before quitting
	got, cmd := got.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, got.(Model).showDetail)
}

func TestModel_DetailShowsError(t *testing.T) {
	o := types.Outcome{Finding: types.NewFinding(types.GlobalLocator{Name: "autoUpdatcAttrEd"}, "corrupted"), Err: errors.New("boom")}
	assert.Contains(t, detail(o), "Error:    boom")
}

func TestHighlight_StripsQuarantineSuffix(t *testing.T) {
	out := Highlight("print('x')\n", "userSetup.py.INFECTED")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, Highlight("plain", ""), "plain")
}
