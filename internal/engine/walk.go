package engine

import (
	"io/fs"
	"path/filepath"

	"github.com/hannesdelbeke/maya-security-tools/internal/ignore"
)

// WalkScenes visits every Maya scene under cfg.Root that passes the
// directory, glob and size filters. rel is slash-separated and relative to
// the root. A .mayascanignore file at the root is honored. An error returned
// by handle stops the walk.
func WalkScenes(cfg Config, handle func(path, rel string) error) error {
	ig, _ := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			// Default exclude directories
			if p != cfg.Root && cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSceneFile(p) {
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)
		if !ig.Empty() && ig.Match(rel) {
			return nil
		}
		if !allowedByGlobs(rel, cfg) {
			return nil
		}
		info, _ := d.Info()
		if info != nil && cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			return nil
		}
		return handle(p, rel)
	})
}

// CountScenes returns the number of scenes WalkScenes would visit.
func CountScenes(cfg Config) (int, error) {
	n := 0
	err := WalkScenes(cfg, func(string, string) error {
		n++
		return nil
	})
	return n, err
}
