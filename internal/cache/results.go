package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// ScanResults stores the outcomes and metadata from a scan
type ScanResults struct {
	Outcomes  []types.Outcome `json:"outcomes"`
	Tally     types.Tally     `json:"tally"`
	Timestamp time.Time       `json:"timestamp"`
	Target    string          `json:"target"`
	Count     int             `json:"count"`
}

func resultsPath(dir string) string {
	return filepath.Join(dir, ".mayascan_last_scan.json")
}

// SaveResults saves scan results to dir
func SaveResults(dir, target string, outcomes []types.Outcome, tally types.Tally) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	results := ScanResults{
		Outcomes:  outcomes,
		Tally:     tally,
		Timestamp: time.Now(),
		Target:    target,
		Count:     len(outcomes),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultsPath(dir), b, 0644)
}

// LoadResults loads the last scan results from dir
func LoadResults(dir string) (ScanResults, error) {
	var results ScanResults
	f, err := os.ReadFile(resultsPath(dir))
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
