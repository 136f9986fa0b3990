package mayascan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/cache"
	"github.com/hannesdelbeke/maya-security-tools/internal/engine"
	"github.com/hannesdelbeke/maya-security-tools/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse the findings of the last scan",
		RunE: func(_ *cobra.Command, _ []string) error {
			cwd, _ := os.Getwd()
			s := loadSettings(cwd)
			res, err := cache.LoadResults(s.prefs)
			if err != nil {
				return fmt.Errorf("no saved scan results in %s: %w", s.prefs, err)
			}
			if flagJSON || flagSARIF {
				return writeResult(resultFromCache(res), s.noColor)
			}
			return tui.Run(res.Outcomes, res.Tally)
		},
	}
	rootCmd.AddCommand(cmd)
}

func resultFromCache(r cache.ScanResults) engine.Result {
	return engine.Result{
		Target:   r.Target,
		Tally:    r.Tally,
		Outcomes: r.Outcomes,
	}
}
