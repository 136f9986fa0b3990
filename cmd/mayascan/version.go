package mayascan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/update"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the mayascan version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("mayascan", version)
			if flagNoUpdateCheck {
				return
			}
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Printf("new version available: v%s (run 'mayascan --self-update')\n", latest)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
