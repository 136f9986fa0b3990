// Package audit keeps a JSONL history of scans in the prefs directory.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// FileName is the history file kept in the prefs directory.
const FileName = "mayascan_audit.jsonl"

type ScanRecord struct {
	Timestamp    time.Time           `json:"timestamp"`
	ScanID       string              `json:"scan_id"`
	Kind         types.OperationKind `json:"kind"`
	Target       string              `json:"target"`
	IssuesFound  int                 `json:"issues_found"`
	IssuesFixed  int                 `json:"issues_fixed"`
	Dominant     types.ScriptVariant `json:"dominant"`
	ClassCounts  map[string]int      `json:"class_counts"`
	FilesScanned int                 `json:"files_scanned"`
	Duration     string              `json:"duration"`
	ExitCode     int                 `json:"exit_code"`
	LogPath      string              `json:"log_path,omitempty"`
	TopFindings  []FindingSummary    `json:"top_findings,omitempty"`
}

type FindingSummary struct {
	Class    string `json:"class"`
	Locator  string `json:"locator"`
	Fixed    bool   `json:"fixed"`
	Reason   string `json:"reason,omitempty"`
	Evidence string `json:"evidence"`
}

type AuditLog struct {
	logPath string
}

func NewAuditLog(dir string) *AuditLog {
	return &AuditLog{logPath: filepath.Join(dir, FileName)}
}

// Path returns the history file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns the records newest first.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode audit record %d: %w", len(records)+1, err)
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = uuid.New().String()
	}
	if err := os.MkdirAll(filepath.Dir(a.logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index, counted newest first.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}

	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.Create(a.logPath)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

func CreateScanRecord(
	kind types.OperationKind,
	target string,
	outcomes []types.Outcome,
	tally types.Tally,
	filesScanned int,
	duration time.Duration,
	exitCode int,
) ScanRecord {
	classCounts := make(map[string]int)
	for _, o := range outcomes {
		classCounts[string(o.Finding.Class)]++
	}

	topFindings := make([]FindingSummary, 0, 10)
	for i, o := range outcomes {
		if i >= 10 {
			break
		}
		topFindings = append(topFindings, FindingSummary{
			Class:    string(o.Finding.Class),
			Locator:  o.Finding.Where(),
			Fixed:    o.Fixed,
			Reason:   string(o.Reason),
			Evidence: o.Finding.Evidence,
		})
	}

	return ScanRecord{
		Timestamp:    time.Now(),
		Kind:         kind,
		Target:       target,
		IssuesFound:  tally.IssuesFound,
		IssuesFixed:  tally.IssuesFixed,
		Dominant:     tally.Dominant,
		ClassCounts:  classCounts,
		FilesScanned: filesScanned,
		Duration:     duration.String(),
		ExitCode:     exitCode,
		TopFindings:  topFindings,
	}
}
