package core_test

import (
	"context"
	"fmt"
	"os"

	"github.com/hannesdelbeke/maya-security-tools/pkg/core"
)

// ExampleScanDirectory demonstrates how to sweep a project for infected scenes.
func ExampleScanDirectory() {
	cfg := core.Config{
		Root:            "/projects/show/scenes",
		IncludeGlobs:    "**/*.ma",
		DefaultExcludes: true,
	}

	res, err := core.ScanDirectory(context.Background(), "", cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return
	}

	if res.Tally.Clean() {
		fmt.Println("No infection found.")
		return
	}
	fmt.Printf("Found %d issues, fixed %d, saved %d scenes.\n",
		res.Tally.IssuesFound, res.Tally.IssuesFixed, len(res.Saved))
	_ = core.MarshalOutcomes(os.Stdout, res.Outcomes)
}
