package mayascan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/audit"
)

var (
	flagHistoryLimit  int
	flagHistoryDelete int
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past scans recorded in the prefs directory",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "show at most this many scans (0 = all)")
	cmd.Flags().IntVar(&flagHistoryDelete, "delete", -1, "delete the scan at this index (0 = newest)")
}

func runHistory(_ *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	s := loadSettings(cwd)
	log := audit.NewAuditLog(s.prefs)

	if flagHistoryDelete >= 0 {
		if err := log.DeleteRecord(flagHistoryDelete); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "deleted scan %d from %s\n", flagHistoryDelete, log.Path())
		return nil
	}

	records, err := log.LoadHistory()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No scans recorded yet.")
			return nil
		}
		return err
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}

	if flagJSON {
		if records == nil {
			records = []audit.ScanRecord{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "When", "Kind", "Target", "Found", "Fixed", "Exit")
	for i, r := range records {
		target := r.Target
		if target == "" {
			target = "(prefs)"
		}
		_ = table.Append([]string{
			strconv.Itoa(i),
			r.Timestamp.Format("2006-01-02 15:04:05"),
			string(r.Kind),
			target,
			strconv.Itoa(r.IssuesFound),
			strconv.Itoa(r.IssuesFixed),
			strconv.Itoa(r.ExitCode),
		})
	}
	return table.Render()
}
