// Package cache remembers scenes that scanned clean so directory scans can
// skip them while their content is unchanged.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
)

// FileName is the cache file kept in the scanned directory.
const FileName = ".mayascancache.json"

// Version changes whenever the scene signatures change, invalidating old
// entries.
const Version = "1"

type DB struct {
	Version string `json:"version"`
	// Path relative to the scan root -> content hash (xxhash64 hex)
	Entries map[string]string `json:"entries"`
}

func defaultPath(root string) string {
	return filepath.Join(root, FileName)
}

func Load(root string) (DB, error) {
	var db DB
	p := defaultPath(root)
	f, err := os.ReadFile(p)
	if err != nil {
		return DB{Version: Version, Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Version: Version, Entries: map[string]string{}}, err
	}
	if db.Entries == nil || db.Version != Version {
		db = DB{Version: Version, Entries: map[string]string{}}
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	db.Version = Version
	p := defaultPath(root)
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(p, b, 0644)
}

// IsClean reports whether rel was clean the last time it had this content.
func (db DB) IsClean(rel string, data []byte) bool {
	h, ok := db.Entries[rel]
	return ok && h == Hash(data)
}

// MarkClean records rel as clean with its current content.
func (db DB) MarkClean(rel string, data []byte) {
	db.Entries[rel] = Hash(data)
}

// Forget drops rel, used when a scene turns out infected.
func (db DB) Forget(rel string) {
	delete(db.Entries, rel)
}

// Hash is a fast content hash for change detection, not for security.
func Hash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
