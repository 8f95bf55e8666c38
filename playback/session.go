// Package playback implements the per-item playback session.
//
// A session owns at most one surface from the pool while its item is inside
// the feed's load window. It resolves the item's source, falls back from
// direct to adaptive delivery once, tracks position and seek state, and
// reports progress to the catalog. Every method must be called on the loop.
package playback

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/loop"
	"github.com/jellytok/jellytok/player"
	"github.com/jellytok/jellytok/stream"
)

const (
	// ProgressInterval is the wall clock cadence of progress reports while playing.
	ProgressInterval = time.Second

	// DoubleTapWindow is how close two taps must be to count as a like.
	DoubleTapWindow = 300 * time.Millisecond

	// rewindSlack bounds the positions accepted from a surface that was just rewound.
	rewindSlack = 1.0
)

// State of a session.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Ended
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Catalog is the part of the server a session talks to.
type Catalog interface {
	SetFavorite(ctx context.Context, userID, itemID string, favorite bool) error
	ReportProgress(ctx context.Context, progress jellyfin.Progress) error
}

// Surfaces lends playback surfaces. Put must release the surface before it is reused.
type Surfaces interface {
	Acquire() (player.Surface, error)
	Put(player.Surface)
}

// Config is shared by every session of a feed.
type Config struct {
	Loop     loop.Loop
	Catalog  Catalog
	Surfaces Surfaces

	// Failures outlives sessions so a direct-play failure sticks to the item.
	Failures *stream.Failures
	Options  stream.Options
	UserID   string

	// OnFavorite is called after every local favorite flip, including reverts.
	OnFavorite func(item *jellyfin.Item, favorite bool)
}

// Session is the playback state of one feed item.
type Session struct {
	cfg  Config
	item *jellyfin.Item

	state   State
	reason  string
	active  bool
	surface player.Surface
	source  stream.Source

	// loadID tags surface events so that events from a previous load are dropped.
	loadID int

	position float64
	duration float64

	// rewound is set by Deactivate until the surface reports the rewind,
	// so time updates queued before it cannot restore the old position.
	rewound bool

	seeking      bool
	seekFraction float64

	lastReported jellyfin.Ticks
	progress     loop.Timer
	tap          loop.Timer
	favoriteSeq  int
}

// New returns an idle session for item. The item is shared with the feed,
// so favorite changes are visible to both.
func New(item *jellyfin.Item, cfg Config) *Session {
	if cfg.Failures == nil {
		cfg.Failures = stream.NewFailures()
	}
	return &Session{cfg: cfg, item: item, lastReported: -1}
}

func (s *Session) Item() *jellyfin.Item  { return s.item }
func (s *Session) State() State          { return s.state }
func (s *Session) Source() stream.Source { return s.source }
func (s *Session) Active() bool          { return s.active }
func (s *Session) Seeking() bool         { return s.seeking }
func (s *Session) Position() float64     { return s.position }

// Reason describes why the session failed.
func (s *Session) Reason() string { return s.reason }

// Attached reports whether the session holds a surface.
func (s *Session) Attached() bool { return s.surface != nil }

// Duration prefers the item's runtime and falls back to what the surface reported.
func (s *Session) Duration() float64 {
	if rt := s.item.Runtime(); rt > 0 {
		return rt
	}
	return s.duration
}

// Progress is the fraction shown on the progress bar. It follows the seek
// gesture instead of playback while one is in progress.
func (s *Session) Progress() float64 {
	if s.seeking {
		return s.seekFraction / 100
	}
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, s.position/d))
}

// Attach takes a surface and starts loading the item from the beginning.
func (s *Session) Attach() {
	if s.surface != nil || s.state == Failed {
		return
	}

	surface, err := s.cfg.Surfaces.Acquire()
	if err != nil {
		log.WithField("item", s.item.ID).Errorf("acquire surface: %v", err)
		s.fail(err.Error())
		return
	}

	s.surface = surface
	s.position = 0
	s.load(0)
}

// Detach stops everything and returns the surface to the pool.
// The surface is released before Detach returns.
func (s *Session) Detach() {
	s.stopProgress()
	s.stopTap()
	s.loadID++

	if s.surface != nil {
		s.cfg.Surfaces.Put(s.surface)
		s.surface = nil
	}

	s.active = false
	s.seeking = false
	s.position = 0
	s.duration = 0
	s.lastReported = -1
	if s.state != Failed {
		s.state = Idle
	}
}

func (s *Session) load(start float64) {
	s.source = stream.Resolve(s.item, s.cfg.Options, s.cfg.Failures.Has(s.item.ID))
	s.state = Loading
	s.rewound = false
	s.loadID++
	id := s.loadID

	log.WithFields(map[string]any{
		"item":   s.item.ID,
		"source": s.source.Kind.String(),
		"start":  start,
	}).Debug("loading source")

	media := player.Media{
		URL:   s.source.URL,
		Title: s.item.Name,
		Start: start,
	}
	if s.source.Kind == stream.Adaptive {
		media.MaxBitrate = s.source.MaxBitrate
	}

	emit := func(ev player.Event) {
		s.cfg.Loop.Post(func() { s.handle(id, ev) })
	}

	if err := s.surface.Load(media, emit); err != nil {
		s.handle(id, player.Event{Kind: player.Error, Reason: err.Error()})
	}
}

func (s *Session) handle(id int, ev player.Event) {
	if id != s.loadID || s.surface == nil {
		return
	}

	switch ev.Kind {
	case player.Loaded:
		if s.state != Loading {
			return
		}
		s.state = Paused
		if s.active {
			s.play()
		}
	case player.TimeUpdate:
		if s.rewound && ev.Position > rewindSlack {
			return
		}
		s.rewound = false
		s.position = ev.Position
	case player.DurationChanged:
		s.duration = ev.Duration
	case player.Ended:
		s.stopProgress()
		s.state = Ended
	case player.Error:
		s.playbackError(ev.Reason)
	}
}

// playbackError retries a direct source adaptively, once per item.
func (s *Session) playbackError(reason string) {
	s.stopProgress()

	if s.source.Kind == stream.Direct && !s.cfg.Failures.Has(s.item.ID) {
		log.WithField("item", s.item.ID).Warnf("direct play failed, falling back to adaptive: %s", reason)
		s.cfg.Failures.Mark(s.item.ID)
		s.load(s.position)
		return
	}

	log.WithField("item", s.item.ID).Errorf("adaptive playback failed: %s", reason)
	s.fail(reason)
}

func (s *Session) fail(reason string) {
	s.stopProgress()
	s.state = Failed
	s.reason = reason
}

// Activate makes this the playing item.
func (s *Session) Activate() {
	s.active = true
	if s.surface == nil {
		return
	}

	if err := s.surface.Focus(true); err != nil {
		log.Debugf("focus surface: %v", err)
	}

	switch s.state {
	case Paused:
		s.play()
	case Ended:
		s.position = 0
		s.load(0)
	}
}

// Deactivate pauses the item and rewinds it, so coming back to it restarts playback.
func (s *Session) Deactivate() {
	s.active = false
	s.stopTap()
	s.seeking = false

	if s.surface == nil {
		return
	}

	if s.state == Playing {
		s.pause()
	}

	if s.state == Paused && s.position > 0 {
		if err := s.surface.Seek(0); err != nil {
			log.Debugf("rewind surface: %v", err)
		}
	}
	s.position = 0
	s.rewound = true
	s.lastReported = -1

	if err := s.surface.Focus(false); err != nil {
		log.Debugf("unfocus surface: %v", err)
	}
}

// TogglePlay switches between playing and paused.
func (s *Session) TogglePlay() {
	switch s.state {
	case Playing:
		s.pause()
	case Paused:
		s.play()
	case Ended:
		s.position = 0
		s.load(0)
	}
}

func (s *Session) play() {
	if err := s.surface.Play(); err != nil {
		log.WithField("item", s.item.ID).Warnf("play: %v", err)
	}
	s.state = Playing

	s.stopProgress()
	s.progress = s.cfg.Loop.Every(ProgressInterval, s.tick)
}

func (s *Session) pause() {
	if err := s.surface.Pause(); err != nil {
		log.WithField("item", s.item.ID).Warnf("pause: %v", err)
	}
	s.stopProgress()
	s.state = Paused

	if s.position > 0 {
		s.report(true)
	}
}

func (s *Session) tick() {
	if s.state != Playing {
		return
	}
	if jellyfin.TicksFromSeconds(s.position) == s.lastReported {
		return
	}
	s.report(false)
}

// report sends the current position without waiting for the result.
func (s *Session) report(paused bool) {
	ticks := jellyfin.TicksFromSeconds(s.position)
	s.lastReported = ticks

	progress := jellyfin.Progress{
		ItemID:        s.item.ID,
		MediaSourceID: s.source.MediaSourceID,
		PlaySessionID: s.source.PlaySessionID,
		PositionTicks: ticks,
		IsPaused:      paused,
	}

	catalog := s.cfg.Catalog
	s.cfg.Loop.Go(func(ctx context.Context) func() {
		if err := catalog.ReportProgress(ctx, progress); err != nil {
			log.WithField("item", progress.ItemID).Warnf("report progress: %v", err)
		}
		return nil
	})
}

func (s *Session) stopProgress() {
	if s.progress != nil {
		s.progress.Stop()
		s.progress = nil
	}
}

// BeginSeek starts a seek gesture at the current position.
func (s *Session) BeginSeek() {
	s.seekFraction = s.Progress() * 100
	s.seeking = true
}

// UpdateSeek moves the gesture to percent of the duration.
func (s *Session) UpdateSeek(percent float64) {
	if !s.seeking {
		s.BeginSeek()
	}
	s.seekFraction = math.Min(100, math.Max(0, percent))
}

// EndSeek finishes the gesture and moves playback to the chosen fraction.
func (s *Session) EndSeek() {
	if !s.seeking {
		return
	}
	s.seeking = false

	d := s.Duration()
	if d <= 0 || s.surface == nil {
		return
	}

	target := d * s.seekFraction / 100
	s.position = target
	s.rewound = false
	if err := s.surface.Seek(target); err != nil {
		log.WithField("item", s.item.ID).Warnf("seek: %v", err)
	}
}

// SeekTo is a complete seek gesture to percent.
func (s *Session) SeekTo(percent float64) {
	s.BeginSeek()
	s.UpdateSeek(percent)
	s.EndSeek()
}

// SeekBy moves by delta percentage points from the current position.
func (s *Session) SeekBy(delta float64) {
	s.SeekTo(s.Progress()*100 + delta)
}

// ToggleFavorite flips the favorite flag at once and confirms it with the
// server. If the server call fails and no newer toggle happened meanwhile,
// the flag is reverted.
func (s *Session) ToggleFavorite() {
	previous := s.item.UserData.IsFavorite
	desired := !previous

	s.item.UserData.IsFavorite = desired
	s.favoriteSeq++
	seq := s.favoriteSeq
	s.notifyFavorite(desired)

	catalog, userID, item := s.cfg.Catalog, s.cfg.UserID, s.item
	s.cfg.Loop.Go(func(ctx context.Context) func() {
		err := catalog.SetFavorite(ctx, userID, item.ID, desired)
		if err == nil {
			return nil
		}

		return func() {
			log.WithField("item", item.ID).Warnf("set favorite: %v", err)
			if seq != s.favoriteSeq {
				return
			}
			item.UserData.IsFavorite = previous
			s.notifyFavorite(previous)
		}
	})
}

func (s *Session) notifyFavorite(favorite bool) {
	if s.cfg.OnFavorite != nil {
		s.cfg.OnFavorite(s.item, favorite)
	}
}

// Tap handles a tap on the video. A second tap inside DoubleTapWindow is a
// like; otherwise the tap toggles playback once the window has passed.
func (s *Session) Tap() {
	if s.tap != nil {
		s.stopTap()
		s.ToggleFavorite()
		return
	}

	s.tap = s.cfg.Loop.After(DoubleTapWindow, func() {
		s.tap = nil
		s.TogglePlay()
	})
}

func (s *Session) stopTap() {
	if s.tap != nil {
		s.tap.Stop()
		s.tap = nil
	}
}
