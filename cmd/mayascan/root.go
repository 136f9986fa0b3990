package mayascan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON            bool
	flagSARIF           bool
	flagNoColor         bool
	flagNoCache         bool
	flagDefaultExcludes bool
	flagNoUpdateCheck   bool
	flagSelfUpdate      bool
	flagPrefs           string
	flagHeadless        bool
	flagLogLevel        string
	flagLogPath         string

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the mayascan CLI.
var rootCmd = &cobra.Command{
	Use:           "mayascan",
	Short:         "Find and remove the MayaMelUIConfigurationFile infection",
	Long:          "mayascan checks Maya startup scripts and scenes for the vaccine / MayaMelUIConfigurationFile infection, removes what it can and tells you what is left.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the mayascan CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable the clean-scene cache for directory scans")
	rootCmd.PersistentFlags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "skip autosave, incrementalSave, QUARANTINED and VCS directories")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
	rootCmd.PersistentFlags().BoolVar(&flagSelfUpdate, "self-update", false, "update mayascan to the latest release")
	rootCmd.PersistentFlags().StringVar(&flagPrefs, "prefs", "", "Maya user directory holding scripts/ (default $MAYA_APP_DIR or the platform default)")
	rootCmd.PersistentFlags().BoolVarP(&flagHeadless, "yes", "y", false, "batch mode: fix without prompting and save fixed scenes")
	rootCmd.PersistentFlags().BoolVar(&flagHeadless, "headless", false, "same as --yes")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "scanner log file (default MayaScannerLog.txt in the temp dir)")
}
