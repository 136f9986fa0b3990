// Package sessionlog writes the per-run text log of findings and fixes.
//
// The log lives in one file that is rotated at the start of every top-level
// operation, keeping a single backup generation next to it (<path>.1). The
// file is opened lazily so a clean run that reports nothing leaves no log.
package sessionlog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FileName is the log's base name inside the temp directory.
const FileName = "MayaScannerLog.txt"

// DefaultPath is FileName under the platform temp directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), FileName)
}

// BackupPath is the single rotated generation for path.
func BackupPath(path string) string { return path + ".1" }

// Log is a lazily opened, rotating session log.
type Log struct {
	path   string
	file   *os.File
	logger *logrus.Logger

	target   string
	reported bool
	entries  []string
}

// New returns a log writing to path. An empty path uses DefaultPath.
func New(path string) *Log {
	if path == "" {
		path = DefaultPath()
	}
	l := &Log{path: path, logger: logrus.New()}
	l.logger.SetOutput(io.Discard)
	l.logger.SetLevel(logrus.InfoLevel)
	l.logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return l
}

// Path returns the active log file path.
func (l *Log) Path() string { return l.path }

// Exists reports whether the log file is present on disk.
func (l *Log) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Rotate closes the active file and moves it to the backup slot, replacing
// any previous backup. It is a no-op when no log exists yet.
func (l *Log) Rotate() error {
	if err := l.closeFile(); err != nil {
		return err
	}
	l.entries = nil
	if !l.Exists() {
		return nil
	}
	backup := BackupPath(l.path)
	if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove log backup: %w", err)
	}
	if err := os.Rename(l.path, backup); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}

// Begin starts a new reporting run for target. The first Report afterwards
// is preceded by a header naming the target.
func (l *Log) Begin(target string) {
	l.target = target
	l.reported = false
}

// Report records one finding message.
func (l *Log) Report(msg string) {
	if !l.reported {
		l.reported = true
		l.write(logrus.InfoLevel, "checking issues in file: "+l.target)
	}
	l.write(logrus.InfoLevel, msg)
}

// Info records an informational line without the run header.
func (l *Log) Info(msg string) { l.write(logrus.InfoLevel, msg) }

// Warn records a warning line.
func (l *Log) Warn(msg string) { l.write(logrus.WarnLevel, msg) }

// Error records a remediation failure.
func (l *Log) Error(msg string) { l.write(logrus.ErrorLevel, msg) }

// Entries returns the messages written since the last rotation, in order.
func (l *Log) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Close releases the log file.
func (l *Log) Close() error { return l.closeFile() }

func (l *Log) write(level logrus.Level, msg string) {
	l.entries = append(l.entries, msg)
	if err := l.open(); err != nil {
		// the in-memory entries still carry the message
		return
	}
	l.logger.Log(level, msg)
}

func (l *Log) open() error {
	if l.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	l.file = f
	l.logger.SetOutput(f)
	return nil
}

func (l *Log) closeFile() error {
	if l.file == nil {
		return nil
	}
	l.logger.SetOutput(io.Discard)
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close log: %w", err)
	}
	return nil
}
