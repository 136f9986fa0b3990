package mayascan

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/hannesdelbeke/maya-security-tools/internal/sessionlog"
)

var (
	flagLogCopy     bool
	flagLogPrevious bool
	flagLogPathOnly bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the scanner log of the last operation",
		RunE:  runLog,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&flagLogCopy, "copy", false, "copy the log path to the clipboard")
	cmd.Flags().BoolVar(&flagLogPrevious, "previous", false, "show the rotated log of the operation before")
	cmd.Flags().BoolVar(&flagLogPathOnly, "path", false, "print only the log path")
}

func runLog(_ *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	s := loadSettings(cwd)
	path := sessionlog.New(s.logPath).Path()
	if flagLogPrevious {
		path = sessionlog.BackupPath(path)
	}

	if flagLogCopy {
		if err := clipboard.WriteAll(path); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stderr, "copied", path)
	}
	if flagLogPathOnly {
		fmt.Println(path)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("no scanner log at %s: %w", path, err)
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}
