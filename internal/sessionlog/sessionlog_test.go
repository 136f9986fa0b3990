package sessionlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	l := New(path)
	defer l.Close()

	assert.False(t, l.Exists(), "opened lazily")

	l.Begin("/proj/scene.ma")
	l.Report("userSetup.py : Infected by Malware!")
	l.Report("scriptNode present : vaccine_gene")

	assert.Equal(t, []string{
		"checking issues in file: /proj/scene.ma",
		"userSetup.py : Infected by Malware!",
		"scriptNode present : vaccine_gene",
	}, l.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=info")
	assert.Contains(t, string(data), "checking issues in file: /proj/scene.ma")
}

func TestRotate_KeepsOneBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	l := New(path)
	defer l.Close()

	require.NoError(t, l.Rotate(), "rotating a missing log is a no-op")
	_, err := os.Stat(BackupPath(path))
	assert.True(t, os.IsNotExist(err))

	l.Begin("first")
	l.Report("one")
	require.NoError(t, l.Rotate())
	assert.Empty(t, l.Entries())

	l.Begin("second")
	l.Report("two")
	require.NoError(t, l.Rotate())

	backup, err := os.ReadFile(BackupPath(path))
	require.NoError(t, err)
	assert.Contains(t, string(backup), "two")
	assert.NotContains(t, string(backup), "one")

	_, err = os.Stat(BackupPath(path) + ".1")
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), "MayaScannerLog.txt"), New("").Path())
}
