package mayascan

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/engine"
	"github.com/hannesdelbeke/maya-security-tools/internal/offline"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
	"github.com/hannesdelbeke/maya-security-tools/internal/watch"
)

var flagDebounce time.Duration

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-scan the startup scripts whenever the infection drops them",
		Long: `Watch the Maya scripts directory (plus any watch.paths from the config) and
scan as soon as userSetup.mel, userSetup.py or vaccine.py is written.

With watch.fix enabled (the default) infected scripts are quarantined right
away; otherwise findings are only reported and logged.`,
		RunE: runWatch,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().DurationVar(&flagDebounce, "debounce", 0, "collapse bursts of file events (default from config or 500ms)")
}

func runWatch(_ *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	s := loadSettings(cwd)
	wc := s.local.GetWatchConfig()
	if s.local.Watch == nil {
		wc = s.global.GetWatchConfig()
	}

	fix := wc.IsFixEnabled()
	if fix {
		s.headless = true
	}
	h := s.newHost(false)
	cfg := s.engineConfig()
	if !fix {
		cfg.Mode = confirm.Silent
	}
	eng := engine.New(h, cfg)
	defer eng.Close()

	debounce := flagDebounce
	if debounce <= 0 {
		debounce = wc.GetDebounce()
	}
	dirs := []string{offline.ScriptsDir(s.prefs)}
	for _, p := range wc.Paths {
		dirs = append(dirs, expandHome(p))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind := types.OpScanCurrent
	if fix {
		kind = types.OpHeadlessScan
	}
	return watch.Run(ctx, watch.Options{
		Dirs:     dirs,
		Debounce: debounce,
		Initial:  true,
		Logger:   s.log,
	}, func(ctx context.Context, changed []string) {
		res, err := eng.RunScan(ctx, kind, "")
		if err != nil {
			s.log.WithError(err).Error("scan failed")
			return
		}
		entry := s.log.WithFields(logrus.Fields{
			"changed": changed,
			"found":   res.Tally.IssuesFound,
			"fixed":   res.Tally.IssuesFixed,
			"log":     eng.Log().Path(),
		})
		if res.Tally.Clean() {
			entry.Info("scripts are clean")
			return
		}
		entry.Warn("infection found")
	})
}
