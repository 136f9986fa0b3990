package mayascan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/engine"
	"github.com/hannesdelbeke/maya-security-tools/internal/offline"
	"github.com/hannesdelbeke/maya-security-tools/internal/report"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/tui"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
	"github.com/hannesdelbeke/maya-security-tools/internal/update"
)

var (
	flagFile     string
	flagDir      string
	flagOpen     string
	flagInclude  string
	flagExclude  string
	flagMaxBytes int64
	flagTable    bool
	flagText     bool
	flagBrowse   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan startup scripts and scenes for the infection",
		Long: `Scan the Maya startup scripts and, optionally, a scene or a directory of scenes.

Without --file, --dir or --open only the prefs-level artifacts are checked.
--open behaves like opening the scene in Maya: each reference is checked as
it loads, then the scene itself.

Exit codes: 0 clean, 19 issues remain, 20 fixed and saved, 2 on errors.`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagFile, "file", "f", "", "scan one Maya ASCII scene")
	cmd.Flags().StringVarP(&flagDir, "dir", "d", "", "scan every scene below this directory")
	cmd.Flags().StringVar(&flagOpen, "open", "", "open a scene with its references the way Maya does")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs for --dir")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs for --dir")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 512<<20, "skip scenes larger than this")
	cmd.Flags().BoolVar(&flagTable, "table", false, "output in table format with borders (default)")
	cmd.Flags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	cmd.Flags().BoolVar(&flagBrowse, "browse", false, "open the results browser after the scan")
	cmd.MarkFlagsMutuallyExclusive("file", "dir", "open")
}

func scanTarget() (types.OperationKind, string, error) {
	switch {
	case flagDir != "":
		abs, err := filepath.Abs(flagDir)
		return types.OpScanDirectory, abs, err
	case flagFile != "":
		abs, err := filepath.Abs(flagFile)
		return types.OpScanFile, abs, err
	case flagOpen != "":
		abs, err := filepath.Abs(flagOpen)
		return types.OpOpen, abs, err
	}
	return types.OpScanCurrent, "", nil
}

func runScan(_ *cobra.Command, _ []string) error {
	kind, target, err := scanTarget()
	if err != nil {
		return err
	}
	cwd, _ := os.Getwd()
	if kind == types.OpScanDirectory {
		cwd = target
	}
	s := loadSettings(cwd)
	l, g := s.local, s.global
	machine := flagJSON || flagSARIF

	if !machine {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				_, _ = fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'mayascan --self-update' to upgrade\n", latest)
			}
		}
		if flagSelfUpdate {
			if v, err := selfUpdate(); err == nil {
				_, _ = fmt.Fprintf(os.Stderr, "updated to v%s; re-run command\n", v)
				return nil
			}
		}
	}

	h := s.newHost(!machine)
	cfg := s.engineConfig()
	// Machine output has nobody to confirm fixes, so it only reports
	// unless --yes or headless asked for fixes.
	if machine && !s.headless {
		cfg.Mode = confirm.Silent
	}
	cfg.IncludeGlobs = pickString(flagInclude, l.Include, g.Include)
	cfg.ExcludeGlobs = pickString(flagExclude, l.Exclude, g.Exclude)
	cfg.MaxBytes = pickInt64(flagMaxBytes, l.MaxBytes, g.MaxBytes)

	total := 0
	if kind == types.OpScanDirectory {
		cfg.Root = target
		total, _ = engine.CountScenes(cfg)
		progressed := 0
		if total > 0 && !machine {
			cfg.Progress = func(string) {
				progressed++
				pct := float64(progressed) / float64(total) * 100
				_, _ = fmt.Fprintf(os.Stderr, "\r[%d/%d] %.0f%%", progressed, total, pct)
			}
		}
	}

	eng := engine.New(h, cfg)
	defer eng.Close()

	if !machine {
		what := target
		if what == "" {
			what = offline.ScriptsDir(s.prefs)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Scanning %s with %d signatures...\n", what, len(signatures.IDs()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var res engine.Result
	if kind == types.OpOpen {
		res, err = eng.OpenScene(target)
	} else {
		res, err = eng.RunScan(ctx, kind, target)
	}
	if total > 0 && !machine {
		_, _ = fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if err := writeResult(res, s.noColor); err != nil {
		return err
	}
	if flagBrowse && !machine && len(res.Outcomes) > 0 {
		if err := tui.Run(res.Outcomes, res.Tally); err != nil {
			return err
		}
	}

	code := res.ExitCode
	if c, quit := h.ExitCode(); quit {
		code = c
	}
	if code != types.ExitClean {
		_ = eng.Close()
		stop()
		os.Exit(code)
	}
	return nil
}

func writeResult(res engine.Result, noColor bool) error {
	outcomes := res.Outcomes
	if outcomes == nil {
		outcomes = []types.Outcome{}
	} // no `null` in JSON
	opts := report.PrintOptions{
		NoColor:      noColor,
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		Tally:        res.Tally,
	}

	switch {
	case flagSARIF:
		if err := report.WriteSARIF(os.Stdout, outcomes, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
		return nil
	case flagJSON:
		res.Outcomes = outcomes
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case flagText:
		report.PrintText(os.Stdout, outcomes, opts)
	default:
		// table is the default
		report.PrintTable(os.Stdout, outcomes, opts)
	}

	for _, p := range res.Skipped {
		_, _ = fmt.Fprintln(os.Stderr, "skipped (could not open):", p)
	}
	for _, p := range res.Saved {
		_, _ = fmt.Fprintln(os.Stderr, "saved:", p)
	}
	for _, err := range res.Errors {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
	}
	return nil
}
