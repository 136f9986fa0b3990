package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	fixedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	declinedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type resultKeys struct {
	Quit   key.Binding
	Detail key.Binding
	Copy   key.Binding
}

var defaultResultKeys = resultKeys{
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	Detail: key.NewBinding(key.WithKeys("enter")),
	Copy:   key.NewBinding(key.WithKeys("c")),
}

type statusMsg string

// readFile is swapped in tests.
var readFile = os.ReadFile

// Model browses the outcomes of a scan.
type Model struct {
	table      table.Model
	viewport   viewport.Model
	outcomes   []types.Outcome
	tally      types.Tally
	showDetail bool
	status     string
	width      int
	height     int
	keys       resultKeys
}

// NewModel builds the results browser.
func NewModel(outcomes []types.Outcome, tally types.Tally) Model {
	cols := []table.Column{
		{Title: "Status", Width: 9},
		{Title: "Class", Width: 18},
		{Title: "Location", Width: 48},
	}
	rows := make([]table.Row, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, table.Row{statusText(o), string(o.Finding.Class), o.Finding.Where()})
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithFocused(true), table.WithHeight(12))
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)

	return Model{
		table:    t,
		viewport: viewport.New(80, 12),
		outcomes: outcomes,
		tally:    tally,
		keys:     defaultResultKeys,
	}
}

// statusText returns plain text (ANSI codes break table truncation).
func statusText(o types.Outcome) string {
	switch {
	case o.Fixed && o.Reason == types.ReasonAlreadyHandled:
		return "handled"
	case o.Fixed:
		return "fixed"
	case o.Reason == types.ReasonUserDeclined:
		return "declined"
	default:
		return "failed"
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) selected() (types.Outcome, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.outcomes) {
		return types.Outcome{}, false
	}
	return m.outcomes[i], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height / 2
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Detail):
			if o, ok := m.selected(); ok {
				m.showDetail = true
				m.viewport.SetContent(detail(o))
				m.viewport.GotoTop()
			}
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			if o, ok := m.selected(); ok {
				return m, copyLocation(o)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	if m.showDetail {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func copyLocation(o types.Outcome) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(o.Finding.Where()); err != nil {
			return statusMsg(fmt.Sprintf("Copy failed: %v", err))
		}
		return statusMsg("Copied location to clipboard")
	}
}

// detail renders one outcome. Quarantined script files are shown
// highlighted from their .INFECTED copy.
func detail(o types.Outcome) string {
	var b strings.Builder
	f := o.Finding
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(string(f.Class)))
	fmt.Fprintf(&b, "Location: %s\nEvidence: %s\nStatus:   %s\n", f.Where(), f.Evidence, statusText(o))
	if o.Err != nil {
		fmt.Fprintf(&b, "Error:    %v\n", o.Err)
	}
	if fl, ok := f.Locator.(types.FileLocator); ok {
		path := fl.Path
		if o.Fixed {
			path += quarantineSuffix
		}
		if data, err := readFile(path); err == nil {
			b.WriteString("\n")
			b.WriteString(Highlight(string(data), path))
		}
	}
	return b.String()
}

func (m Model) View() string {
	var body string
	if m.showDetail {
		body = tableBorderStyle.Render(m.viewport.View())
	} else if len(m.outcomes) == 0 {
		body = fixedStyle.Render("No issues found")
	} else {
		body = tableBorderStyle.Render(m.table.View())
	}
	summary := fmt.Sprintf(" found %d • fixed %d ", m.tally.IssuesFound, m.tally.IssuesFixed)
	switch {
	case m.tally.Clean():
		summary = fixedStyle.Render(summary)
	case m.tally.FullyFixed():
		summary = declinedStyle.Render(summary)
	default:
		summary = failedStyle.Render(summary)
	}
	footer := statusStyle.Render(" ↑/↓ move • enter details • c copy location • q quit ")
	if m.status != "" {
		footer += " " + m.status
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, body, footer)
}

// Run shows the results browser full screen.
func Run(outcomes []types.Outcome, tally types.Tally) error {
	if _, err := tea.NewProgram(NewModel(outcomes, tally), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
