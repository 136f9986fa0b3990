package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDropperFile(t *testing.T) {
	assert.True(t, IsDropperFile("/home/a/maya/scripts/userSetup.mel"))
	assert.True(t, IsDropperFile("vaccine.py"))
	assert.False(t, IsDropperFile("/home/a/maya/scripts/userSetup.py.INFECTED"))
	assert.False(t, IsDropperFile("tools.py"))
}

func TestRun_TriggersOnDropperWrite(t *testing.T) {
	dir := t.TempDir()
	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan []string, 4)
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{Dirs: []string{dir}, Debounce: 50 * time.Millisecond, Initial: true, Logger: log},
			func(_ context.Context, changed []string) {
				if changed == nil {
					close(ready)
					return
				}
				got <- changed
			})
	}()

	select {
	case <-ready:
	case <-ctx.Done():
		t.Fatal("watcher never started")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	target := filepath.Join(dir, "userSetup.py")
	require.NoError(t, os.WriteFile(target, []byte("import vaccine"), 0o644))

	select {
	case changed := <-got:
		assert.Equal(t, []string{target}, changed)
	case <-ctx.Done():
		t.Fatal("no trigger for userSetup.py")
	}

	cancel()
	assert.NoError(t, <-done)
}
