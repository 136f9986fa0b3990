package mayascan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/offline"
	"github.com/hannesdelbeke/maya-security-tools/internal/remedy"
	"github.com/hannesdelbeke/maya-security-tools/internal/tui"
)

func init() {
	qCmd := &cobra.Command{Use: "quarantine", Short: "Inspect quarantined scripts and scenes"}
	rootCmd.AddCommand(qCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List quarantined startup scripts and scenes",
		RunE: func(_ *cobra.Command, _ []string) error {
			cwd, _ := os.Getwd()
			s := loadSettings(cwd)
			items, err := quarantined(s.prefs, s.quarantine)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("Nothing quarantined.")
				return nil
			}
			for _, p := range items {
				fmt.Println(p)
			}
			return nil
		},
	}
	qCmd.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a quarantined script with syntax highlighting",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			s := loadSettings(cwd)
			path := args[0]
			if !filepath.IsAbs(path) && !strings.ContainsRune(path, filepath.Separator) {
				path = filepath.Join(offline.ScriptsDir(s.prefs), path)
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if flagNoColor || s.noColor {
				_, err = os.Stdout.Write(b)
				return err
			}
			fmt.Print(tui.Highlight(string(b), filepath.Base(path)))
			return nil
		},
	}
	qCmd.AddCommand(showCmd)
}

// quarantined lists renamed startup scripts in the scripts directory and the
// scenes saved into the quarantine directory.
func quarantined(prefs, quarantineDir string) ([]string, error) {
	scripts, err := filepath.Glob(filepath.Join(offline.ScriptsDir(prefs), "*"+remedy.QuarantineSuffix))
	if err != nil {
		return nil, err
	}
	if quarantineDir == "" {
		quarantineDir = offline.QuarantineDir(prefs)
	}
	entries, err := os.ReadDir(quarantineDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	var scenes []string
	for _, e := range entries {
		if !e.IsDir() {
			scenes = append(scenes, filepath.Join(quarantineDir, e.Name()))
		}
	}
	sort.Strings(scripts)
	sort.Strings(scenes)
	return append(scripts, scenes...), nil
}
