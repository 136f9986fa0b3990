// Package ignore reads .mayascanignore files: one gitignore-style pattern
// per line, '#' comments, a trailing '/' for directories.
package ignore

import (
	"bufio"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the root of a directory scan.
const FileName = ".mayascanignore"

// Matcher holds the patterns of one ignore file.
type Matcher struct {
	patterns []string
}

// Load parses the ignore file at p.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()

	var m Matcher
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	return m, sc.Err()
}

// Empty reports whether the matcher has no patterns.
func (m Matcher) Empty() bool { return len(m.patterns) == 0 }

// Match reports whether the slash-separated relative path is ignored.
func (m Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(rel, "./")
	for _, p := range m.patterns {
		if matchOne(p, rel) {
			return true
		}
	}
	return false
}

func matchOne(pattern, rel string) bool {
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		// A directory pattern ignores everything below any matching directory.
		if !anchored && !strings.Contains(dir, "/") {
			dir = "**/" + dir
		}
		ok, _ := doublestar.Match(dir+"/**", rel)
		return ok
	}
	if !anchored && !strings.Contains(pattern, "/") {
		ok, _ := doublestar.Match(pattern, path.Base(rel))
		return ok
	}
	ok, _ := doublestar.Match(pattern, rel)
	return ok
}
