// Package cache prunes stale files from the cache directory.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jellytok/jellytok/filesystem"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/util"
	"github.com/jellytok/jellytok/where"
)

// TTL is how long downloaded posters are kept.
const TTL = 7 * 24 * time.Hour

// Posters is the directory items --posters downloads into.
func Posters() string {
	return filepath.Join(where.Cache(), "posters")
}

// Prune removes regular files under dir not modified within ttl and
// reports how many were removed. A missing dir is not an error.
func Prune(dir string, ttl time.Duration, now time.Time) (int, error) {
	fs := filesystem.API()

	exists, err := fs.DirExists(dir)
	if err != nil || !exists {
		return 0, err
	}

	var removed int
	err = fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if now.Sub(info.ModTime()) <= ttl {
			return nil
		}
		if err := fs.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// CollectGarbage prunes expired posters.
func CollectGarbage() {
	removed, err := Prune(Posters(), TTL, time.Now())
	if err != nil {
		log.Warnf("prune posters: %v", err)
		return
	}
	if removed > 0 {
		log.Debugf("pruned %s", util.Quantify(removed, "poster", "posters"))
	}
}
