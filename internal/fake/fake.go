// Package fake provides in-memory stand-ins for the playback surface and the
// catalog, for tests of the packages that drive them.
package fake

import (
	"context"
	"errors"
	"sync"

	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/player"
)

// Surface records every call made to it.
type Surface struct {
	ID int

	Loads    []player.Media
	Calls    []string
	Seeks    []float64
	Released int
	Closed   bool
	Focused  bool
	Playing  bool

	emit func(player.Event)

	// LoadErr is returned by the next Load.
	LoadErr error
}

func (s *Surface) Load(media player.Media, emit func(player.Event)) error {
	s.Calls = append(s.Calls, "load")
	if err := s.LoadErr; err != nil {
		s.LoadErr = nil
		return err
	}
	s.Loads = append(s.Loads, media)
	s.emit = emit
	s.Playing = false
	return nil
}

func (s *Surface) Play() error {
	s.Calls = append(s.Calls, "play")
	s.Playing = true
	return nil
}

func (s *Surface) Pause() error {
	s.Calls = append(s.Calls, "pause")
	s.Playing = false
	return nil
}

func (s *Surface) Seek(seconds float64) error {
	s.Calls = append(s.Calls, "seek")
	s.Seeks = append(s.Seeks, seconds)
	return nil
}

func (s *Surface) Focus(on bool) error {
	s.Focused = on
	return nil
}

func (s *Surface) Release() error {
	s.Calls = append(s.Calls, "release")
	s.Released++
	s.emit = nil
	s.Playing = false
	return nil
}

func (s *Surface) Close() error {
	s.Closed = true
	return nil
}

// Loaded reports whether the surface currently holds media.
func (s *Surface) Loaded() bool {
	return s.emit != nil
}

// Media is the last loaded media.
func (s *Surface) Media() player.Media {
	if len(s.Loads) == 0 {
		return player.Media{}
	}
	return s.Loads[len(s.Loads)-1]
}

// Emit sends ev through the current load's event callback, if any.
func (s *Surface) Emit(ev player.Event) {
	if s.emit != nil {
		s.emit(ev)
	}
}

// Pool lends an unbounded number of surfaces and remembers every one.
type Pool struct {
	All  []*Surface
	idle []*Surface

	// Limit, when positive, bounds the surfaces in use.
	Limit int

	// OpenErr is returned by Open.
	OpenErr error
	Opened  bool
}

func (p *Pool) Open(ctx context.Context) error {
	p.Opened = true
	return p.OpenErr
}

var ErrExhausted = errors.New("pool exhausted")

func (p *Pool) Acquire() (player.Surface, error) {
	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return s, nil
	}
	if p.Limit > 0 && p.InUse() >= p.Limit {
		return nil, ErrExhausted
	}
	s := &Surface{ID: len(p.All)}
	p.All = append(p.All, s)
	return s, nil
}

func (p *Pool) Put(s player.Surface) {
	_ = s.Release()
	p.idle = append(p.idle, s.(*Surface))
}

// InUse is the number of surfaces currently lent.
func (p *Pool) InUse() int {
	return len(p.All) - len(p.idle)
}

// Catalog records favorite and progress calls and serves item pages.
type Catalog struct {
	mu sync.Mutex

	Favorites []FavoriteCall
	Reports   []jellyfin.Progress
	Queries   []jellyfin.Query

	FavoriteErr error
	ReportErr   error
	ItemsErr    error

	// Pages serves Items: the page for a query is looked up by its start index.
	Pages map[int][]*jellyfin.Item

	Libs    []jellyfin.Library
	LibsErr error

	// Base prefixes WebURL. It defaults to https://media.example.com.
	Base string
}

// FavoriteCall is one SetFavorite request.
type FavoriteCall struct {
	ItemID   string
	Favorite bool
}

func (c *Catalog) SetFavorite(ctx context.Context, userID, itemID string, favorite bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Favorites = append(c.Favorites, FavoriteCall{ItemID: itemID, Favorite: favorite})
	return c.FavoriteErr
}

func (c *Catalog) ReportProgress(ctx context.Context, progress jellyfin.Progress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reports = append(c.Reports, progress)
	return c.ReportErr
}

func (c *Catalog) Items(ctx context.Context, q jellyfin.Query) ([]*jellyfin.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, q)
	if c.ItemsErr != nil {
		return nil, c.ItemsErr
	}
	return c.Pages[q.StartIndex], nil
}

func (c *Catalog) Libraries(ctx context.Context, userID string) ([]jellyfin.Library, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Libs, c.LibsErr
}

func (c *Catalog) WebURL(itemID string) string {
	base := c.Base
	if base == "" {
		base = "https://media.example.com"
	}
	return base + "/web/" + itemID
}

// PausedReports counts the reports sent with IsPaused set.
func (c *Catalog) PausedReports() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.Reports {
		if r.IsPaused {
			n++
		}
	}
	return n
}
