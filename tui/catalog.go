package tui

import (
	"context"
	"sync"

	"github.com/jellytok/jellytok/jellyfin"
)

// liveCatalog forwards to the catalog of the current server and session.
// Requests already in flight keep the catalog they started with.
type liveCatalog struct {
	mu      sync.RWMutex
	current catalog
}

func newLiveCatalog(c catalog) *liveCatalog {
	return &liveCatalog{current: c}
}

func (l *liveCatalog) get() catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func (l *liveCatalog) set(c catalog) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = c
}

func (l *liveCatalog) SetFavorite(ctx context.Context, userID, itemID string, favorite bool) error {
	return l.get().SetFavorite(ctx, userID, itemID, favorite)
}

func (l *liveCatalog) ReportProgress(ctx context.Context, progress jellyfin.Progress) error {
	return l.get().ReportProgress(ctx, progress)
}

func (l *liveCatalog) Items(ctx context.Context, q jellyfin.Query) ([]*jellyfin.Item, error) {
	return l.get().Items(ctx, q)
}

func (l *liveCatalog) Libraries(ctx context.Context, userID string) ([]jellyfin.Library, error) {
	return l.get().Libraries(ctx, userID)
}

func (l *liveCatalog) WebURL(itemID string) string {
	return l.get().WebURL(itemID)
}
