package mayascan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
)

func init() {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "List the infection signatures",
		Run: func(_ *cobra.Command, _ []string) {
			for _, id := range signatures.IDs() {
				fmt.Println(id)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
