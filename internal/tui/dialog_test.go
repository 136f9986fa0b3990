package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m tea.Model, msgs ...tea.KeyMsg) tea.Model {
	for _, k := range msgs {
		m, _ = m.Update(k)
	}
	return m
}

func TestDialog_DefaultAndNavigation(t *testing.T) {
	m := NewDialog("MayaScanner", "Found corrupted scriptNode<br>Attempt to fix issue?", []string{"Yes", "No"}, "Yes")
	view := m.View()
	assert.Contains(t, view, "Found corrupted scriptNode\nAttempt to fix issue?")
	assert.NotContains(t, view, "<br>")

	got := press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})
	chosen, ok := got.(DialogModel).Chosen()
	require.True(t, ok)
	assert.Equal(t, "No", chosen)
	assert.Empty(t, got.View())
}

func TestDialog_DismissPicksLastOption(t *testing.T) {
	m := NewDialog("t", "m", []string{"Save and Quit", "Quit without Saving"}, "Save and Quit")
	got := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	chosen, ok := got.(DialogModel).Chosen()
	require.True(t, ok)
	assert.Equal(t, "Quit without Saving", chosen)
}

func TestDialog_EnterKeepsDefault(t *testing.T) {
	m := NewDialog("t", "m", []string{"Save and Quit", "Quit without Saving"}, "Quit without Saving")
	got := press(m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})
	chosen, _ := got.(DialogModel).Chosen()
	assert.Equal(t, "Quit without Saving", chosen)
}

func TestDialogs_NoOptions(t *testing.T) {
	_, err := (&Dialogs{}).Choose("t", "m", nil, "")
	assert.Error(t, err)
}
