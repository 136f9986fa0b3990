package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hannesdelbeke/maya-security-tools/internal/report"
)

var (
	dialogStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 4)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Padding(0, 2)

	activeButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Bold(true).
				Padding(0, 2)

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type dialogKeys struct {
	Prev    key.Binding
	Next    key.Binding
	Accept  key.Binding
	Dismiss key.Binding
}

var defaultDialogKeys = dialogKeys{
	Prev:    key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "previous")),
	Next:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→", "next")),
	Accept:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
	Dismiss: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "dismiss")),
}

// DialogModel is a blocking choice dialog. Dismissing picks the last option,
// which by convention is the cancel button.
type DialogModel struct {
	title   string
	message string
	options []string
	cursor  int
	chosen  string
	done    bool
	keys    dialogKeys
}

// NewDialog builds a dialog with the cursor on def.
func NewDialog(title, message string, options []string, def string) DialogModel {
	m := DialogModel{
		title:   title,
		message: report.Plain(message),
		options: options,
		keys:    defaultDialogKeys,
	}
	for i, o := range options {
		if o == def {
			m.cursor = i
		}
	}
	return m
}

// Chosen returns the selected option once the dialog has closed.
func (m DialogModel) Chosen() (string, bool) { return m.chosen, m.done }

func (m DialogModel) Init() tea.Cmd { return nil }

func (m DialogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.options) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Prev):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Next):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Accept):
		m.chosen, m.done = m.options[m.cursor], true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Dismiss):
		m.chosen, m.done = m.options[len(m.options)-1], true
		return m, tea.Quit
	}
	return m, nil
}

func (m DialogModel) View() string {
	if m.done {
		return ""
	}
	var buttons []string
	for i, o := range m.options {
		if i == m.cursor {
			buttons = append(buttons, activeButtonStyle.Render(o))
		} else {
			buttons = append(buttons, buttonStyle.Render(o))
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		"",
		strings.TrimRight(m.message, "\n"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
		"",
		hintStyle.Render("←/→ select • enter choose • esc dismiss"),
	)
	return dialogStyle.Render(body) + "\n"
}

// Dialogs presents choices in the terminal.
type Dialogs struct {
	In  io.Reader
	Out io.Writer
}

// NewDialogs returns terminal dialogs on stdin and stderr.
func NewDialogs() *Dialogs {
	return &Dialogs{In: os.Stdin, Out: os.Stderr}
}

// Choose runs the dialog until the user picks an option.
func (d *Dialogs) Choose(title, message string, options []string, def string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("dialog %q has no options", title)
	}
	m := NewDialog(title, message, options, def)
	final, err := tea.NewProgram(m, tea.WithInput(d.In), tea.WithOutput(d.Out)).Run()
	if err != nil {
		return "", fmt.Errorf("error running dialog: %w", err)
	}
	chosen, ok := final.(DialogModel).Chosen()
	if !ok {
		return def, nil
	}
	return chosen, nil
}
