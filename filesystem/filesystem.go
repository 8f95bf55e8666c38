// Package filesystem is the swappable filesystem behind preferences, logs and caches.
// Production code runs on the OS; tests switch to memory.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the current backend.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

func use(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}

// SetOsFs switches to the real filesystem.
func SetOsFs() { use(afero.NewOsFs()) }

// SetMemMapFs switches to a fresh in-memory filesystem.
func SetMemMapFs() { use(afero.NewMemMapFs()) }
