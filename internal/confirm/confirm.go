// Package confirm implements the one-decision-per-operation fix prompt.
//
// A Gate starts Undecided. The first Query of an operation either prompts the
// user or, depending on the mode, answers on its own; every later Query
// returns the stored answer without side effects until Reset is called.
package confirm

import (
	"github.com/hannesdelbeke/maya-security-tools/internal/host"
)

// Mode selects how an undecided gate resolves.
type Mode int

const (
	// Interactive asks the user through the host dialogs.
	Interactive Mode = iota
	// Headless answers yes without prompting.
	Headless
	// Silent answers no without prompting. Reference loads use it so a
	// nested load never interrupts the user.
	Silent
)

func (m Mode) String() string {
	switch m {
	case Headless:
		return "headless"
	case Silent:
		return "silent"
	default:
		return "interactive"
	}
}

const (
	// OptionYes and OptionNo are the two prompt choices.
	OptionYes = "Yes"
	OptionNo  = "No"

	promptSuffix = "<br>Attempt to fix issue?"
)

// Gate memoizes the fix decision for one top-level operation.
type Gate struct {
	dialogs host.Dialogs
	mode    Mode

	decided bool
	allow   bool
	prompts int
}

// New returns an undecided gate.
func New(d host.Dialogs, mode Mode) *Gate {
	return &Gate{dialogs: d, mode: mode}
}

// Mode returns the current resolution mode.
func (g *Gate) Mode() Mode { return g.mode }

// SetMode changes how the next undecided Query resolves. It does not touch a
// decision already taken.
func (g *Gate) SetMode(m Mode) { g.mode = m }

// Reset returns the gate to Undecided.
func (g *Gate) Reset() {
	g.decided = false
	g.allow = false
}

// Decided reports the stored answer, ok is false while Undecided.
func (g *Gate) Decided() (allow, ok bool) {
	return g.allow, g.decided
}

// Prompts counts the dialogs shown since the gate was created.
func (g *Gate) Prompts() int { return g.prompts }

// Query returns whether fixing is authorized, prompting at most once per
// Reset. A dialog error counts as a refusal.
func (g *Gate) Query(title, message string) bool {
	if g.decided {
		return g.allow
	}
	switch g.mode {
	case Headless:
		g.allow = true
	case Silent:
		g.allow = false
	default:
		g.prompts++
		g.allow = false
		if g.dialogs != nil {
			choice, err := g.dialogs.Choose(title, message+promptSuffix, []string{OptionYes, OptionNo}, OptionYes)
			g.allow = err == nil && choice == OptionYes
		}
	}
	g.decided = true
	return g.allow
}
