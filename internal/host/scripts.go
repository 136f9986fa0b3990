package host

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DirScripts is a ScriptStore backed by a scripts directory on disk.
type DirScripts struct {
	Dir string
}

func (d DirScripts) ScriptsDir() string { return d.Dir }

func (d DirScripts) ReadScript(name string) ([]byte, bool, error) {
	b, err := os.ReadFile(filepath.Join(d.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return b, true, nil
}
