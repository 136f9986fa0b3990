package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	Tally        types.Tally
}

// PrintText writes one line per outcome.
func PrintText(w io.Writer, outcomes []types.Outcome, opts PrintOptions) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No issues found ✅")
	} else {
		fmt.Fprintf(w, "Findings: %d\n", len(outcomes))
		for _, o := range outcomes {
			fmt.Fprintf(w, "%-8s %-18s %s  %s\n", status(o, opts.NoColor), o.Finding.Class, o.Finding.Where(), o.Finding.Evidence)
		}
	}
	footer(w, outcomes, opts)
}

// PrintTable renders outcomes as a bordered table.
func PrintTable(w io.Writer, outcomes []types.Outcome, opts PrintOptions) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No issues found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Status", "Class", "Location", "Evidence")
		for _, o := range outcomes {
			_ = table.Append([]string{status(o, true), string(o.Finding.Class), o.Finding.Where(), o.Finding.Evidence})
		}
		_ = table.Render()
	}
	footer(w, outcomes, opts)
}

func footer(w io.Writer, outcomes []types.Outcome, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 && opts.Tally.Clean() {
		return
	}
	t := opts.Tally
	if t.Clean() {
		for _, o := range outcomes {
			t.Add(o)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Issues found: %d, fixed: %d\n", t.IssuesFound, t.IssuesFixed)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
}

func status(o types.Outcome, noColor bool) string {
	var s, color string
	switch {
	case o.Fixed && o.Reason == types.ReasonAlreadyHandled:
		s, color = "handled", "\x1b[36m"
	case o.Fixed:
		s, color = "fixed", "\x1b[32m"
	case o.Reason == types.ReasonUserDeclined:
		s, color = "declined", "\x1b[33m"
	default:
		s, color = "failed", "\x1b[31m"
	}
	if noColor {
		return s
	}
	return color + s + "\x1b[0m"
}
