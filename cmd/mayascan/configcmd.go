package mayascan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hannesdelbeke/maya-security-tools/internal/config"
)

var (
	cfgOutput string
	cfgGlobal bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .mayascan.yml",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&cfgOutput, "output", ".mayascan.yml", "output file path")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the global config instead")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := cfgOutput
	if cfgGlobal {
		p, err := config.GlobalPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := config.WriteTemplate(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, "wrote", path)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	s := loadSettings(cwd)
	policy := string(s.policy)
	eff := config.FileConfig{
		PrefsDir:      ptrString(s.prefs),
		QuarantineDir: ptrString(s.quarantine),
		LogPath:       ptrString(s.logPath),
		HelperPolicy:  ptrString(policy),
		Headless:      ptrBool(s.headless),
		NoCache:       ptrBool(s.noCache),
		NoColor:       ptrBool(s.noColor),
		Include:       pickPtr(s.local.Include, s.global.Include),
		Exclude:       pickPtr(s.local.Exclude, s.global.Exclude),
		MaxBytes:      pickPtr(s.local.MaxBytes, s.global.MaxBytes),
		LogLevel:      ptrString(s.log.GetLevel().String()),
	}
	wc := s.local.GetWatchConfig()
	if s.local.Watch == nil {
		wc = s.global.GetWatchConfig()
	}
	eff.Watch = &wc

	out, err := yaml.Marshal(eff)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func ptrString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func ptrBool(v bool) *bool { return &v }

func pickPtr[T any](local, global *T) *T {
	if local != nil {
		return local
	}
	return global
}
