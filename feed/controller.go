// Package feed keeps the paginated list of items and decides which of them
// hold a playback surface.
//
// Only the active item and its direct neighbours are attached. Pages are
// fetched one at a time, and every fetch is tagged with the generation of
// the filter and sort configuration it was issued under; results from an
// older generation are dropped. All methods must be called on the loop.
package feed

import (
	"context"
	"slices"

	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/loop"
	"github.com/jellytok/jellytok/playback"
	"github.com/jellytok/jellytok/stream"
	"github.com/samber/lo"
)

const (
	DefaultPageSize  = jellyfin.DefaultPageSize
	DefaultLookahead = 5
)

// Catalog is the part of the server the feed talks to.
type Catalog interface {
	playback.Catalog
	Items(ctx context.Context, q jellyfin.Query) ([]*jellyfin.Item, error)
}

// Config selects what the feed shows. Changing it restarts the feed.
type Config struct {
	UserID    string
	LibraryID string
	Filters   []jellyfin.Filter
	Sort      jellyfin.SortMode
}

// Equal reports whether both configurations select the same items in the same order.
func (c Config) Equal(other Config) bool {
	if c.UserID != other.UserID || c.LibraryID != other.LibraryID || c.Sort != other.Sort {
		return false
	}
	a, b := slices.Clone(c.Filters), slices.Clone(other.Filters)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(lo.Uniq(a), lo.Uniq(b))
}

// Options wire a controller to its collaborators.
type Options struct {
	Loop     loop.Loop
	Catalog  Catalog
	Surfaces playback.Surfaces
	Stream   stream.Options

	PageSize  int
	Lookahead int

	OnFavorite func(item *jellyfin.Item, favorite bool)
}

// Controller is the feed window.
type Controller struct {
	opts Options
	cfg  Config

	// generation changes whenever the window is discarded.
	generation int

	items    []*jellyfin.Item
	sessions map[int]*playback.Session
	active   int
	hasMore  bool
	inFlight bool
	fetched  bool
	err      error
	closed   bool

	// failures lives as long as the controller, across window resets.
	failures *stream.Failures
}

// New returns an empty controller. Call Reconfigure to load the first page.
func New(opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}

	return &Controller{
		opts:     opts,
		sessions: make(map[int]*playback.Session),
		active:   -1,
		failures: stream.NewFailures(),
	}
}

func (c *Controller) Config() Config          { return c.cfg }
func (c *Controller) Items() []*jellyfin.Item { return c.items }
func (c *Controller) Len() int                { return len(c.items) }
func (c *Controller) Active() int             { return c.active }
func (c *Controller) HasMore() bool           { return c.hasMore }
func (c *Controller) InFlight() bool          { return c.inFlight }
func (c *Controller) Err() error              { return c.err }

// Failures are the items that failed direct play during the controller's lifetime.
func (c *Controller) Failures() *stream.Failures {
	return c.failures
}

// Loading reports whether the first page of the current configuration is still on its way.
func (c *Controller) Loading() bool {
	return !c.fetched && c.inFlight
}

// Empty reports whether the current configuration has no items at all.
func (c *Controller) Empty() bool {
	return c.fetched && len(c.items) == 0
}

// Session returns the session of the item at index, if it is attached.
func (c *Controller) Session(index int) (*playback.Session, bool) {
	s, ok := c.sessions[index]
	return s, ok
}

// ActiveSession returns the session of the active item.
func (c *Controller) ActiveSession() (*playback.Session, bool) {
	return c.Session(c.active)
}

// Reconfigure discards the window and loads the first page under cfg.
func (c *Controller) Reconfigure(cfg Config) {
	if c.closed {
		return
	}

	c.reset()
	c.cfg = cfg
	c.LoadPage(0, true)
}

// Reload restarts the current configuration from its first page.
func (c *Controller) Reload() {
	c.Reconfigure(c.cfg)
}

func (c *Controller) reset() {
	c.detachAll()
	c.generation++
	c.items = nil
	c.active = -1
	c.hasMore = true
	c.inFlight = false
	c.fetched = false
	c.err = nil
}

// SetStreamOptions changes how sources are resolved. Attached items are
// reloaded with the new options and the active item restarts.
func (c *Controller) SetStreamOptions(opts stream.Options) {
	c.opts.Stream = opts
	if c.active < 0 {
		return
	}

	active := c.active
	c.detachAll()
	c.active = -1
	c.SetActive(active)
}

// LoadPage fetches the page at start. A reset page replaces the window,
// any other page is appended. It returns false when the fetch is refused
// because one is already in flight or no more pages exist.
func (c *Controller) LoadPage(start int, reset bool) bool {
	if c.closed || c.inFlight {
		return false
	}
	if !reset && !c.hasMore {
		return false
	}

	c.inFlight = true
	generation := c.generation
	query := jellyfin.Query{
		UserID:     c.cfg.UserID,
		LibraryID:  c.cfg.LibraryID,
		Filters:    c.cfg.Filters,
		Sort:       c.cfg.Sort,
		StartIndex: start,
		Limit:      c.opts.PageSize,
	}

	log.WithFields(map[string]any{
		"start":      start,
		"reset":      reset,
		"generation": generation,
	}).Debug("fetching page")

	catalog := c.opts.Catalog
	c.opts.Loop.Go(func(ctx context.Context) func() {
		items, err := catalog.Items(ctx, query)
		return func() {
			c.pageLoaded(generation, reset, items, err)
		}
	})

	return true
}

func (c *Controller) pageLoaded(generation int, reset bool, page []*jellyfin.Item, err error) {
	if c.closed || generation != c.generation {
		log.Debugf("dropping page of generation %d", generation)
		return
	}

	c.inFlight = false
	c.fetched = true

	if err != nil {
		log.Errorf("fetch page: %v", err)
		c.err = err
		return
	}
	c.err = nil

	if len(page) < c.opts.PageSize {
		c.hasMore = false
	}

	if reset {
		c.detachAll()
		c.items = page
		c.active = -1
		if len(c.items) > 0 {
			c.SetActive(0)
		}
		return
	}

	c.items = append(c.items, page...)
	if c.active >= 0 {
		c.attachWindow(c.active)
	}
}

// ShouldLoad returns the indices eligible for a surface when active is the
// active index of a window of n items.
func ShouldLoad(active, n int) []int {
	var window []int
	for i := active - 1; i <= active+1; i++ {
		if i >= 0 && i < n {
			window = append(window, i)
		}
	}
	return window
}

// SetActive makes the item at index the playing one.
func (c *Controller) SetActive(index int) {
	if c.closed || index < 0 || index >= len(c.items) {
		return
	}

	if index >= len(c.items)-c.opts.Lookahead && c.hasMore && !c.inFlight {
		c.LoadPage(len(c.items), false)
	}

	previous := c.active
	if previous != index {
		if s, ok := c.sessions[previous]; ok {
			s.Deactivate()
		}
	}

	c.active = index
	c.attachWindow(index)
	c.sessions[index].Activate()
}

// attachWindow detaches everything outside the window of active before
// attaching what is inside it, so no more than the window's worth of
// surfaces is ever held.
func (c *Controller) attachWindow(active int) {
	window := ShouldLoad(active, len(c.items))

	for i, s := range c.sessions {
		if !lo.Contains(window, i) {
			s.Detach()
			delete(c.sessions, i)
		}
	}

	for _, i := range window {
		s, ok := c.sessions[i]
		if !ok {
			s = playback.New(c.items[i], c.sessionConfig())
			c.sessions[i] = s
		}
		s.Attach()
	}
}

func (c *Controller) sessionConfig() playback.Config {
	return playback.Config{
		Loop:       c.opts.Loop,
		Catalog:    c.opts.Catalog,
		Surfaces:   c.opts.Surfaces,
		Failures:   c.failures,
		Options:    c.opts.Stream,
		UserID:     c.cfg.UserID,
		OnFavorite: c.opts.OnFavorite,
	}
}

func (c *Controller) detachAll() {
	if s, ok := c.sessions[c.active]; ok {
		s.Deactivate()
	}
	for i, s := range c.sessions {
		s.Detach()
		delete(c.sessions, i)
	}
}

// Next moves to the following item.
func (c *Controller) Next() {
	c.SetActive(c.active + 1)
}

// Prev moves to the preceding item.
func (c *Controller) Prev() {
	c.SetActive(c.active - 1)
}

// Close stops playback and releases every surface. Pages still in flight are dropped.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.detachAll()
	c.generation++
	c.closed = true
}
