package jellyfin

import (
	"strconv"
	"strings"
)

// TicksPerSecond is the server's time unit: positions and durations are exchanged as 100ns ticks.
const TicksPerSecond = 10_000_000

// Ticks is a position or duration in server ticks.
type Ticks int64

// Seconds converts t to seconds.
func (t Ticks) Seconds() float64 {
	return float64(t) / TicksPerSecond
}

// TicksFromSeconds converts seconds to ticks, rounding to the nearest tick.
func TicksFromSeconds(seconds float64) Ticks {
	if seconds <= 0 {
		return 0
	}
	return Ticks(seconds*TicksPerSecond + 0.5)
}

// Item is a playable video in a library.
type Item struct {
	ID             string        `json:"Id"`
	Name           string        `json:"Name"`
	Type           string        `json:"Type"`
	RunTimeTicks   Ticks         `json:"RunTimeTicks,omitempty"`
	ProductionYear int           `json:"ProductionYear,omitempty"`
	SeriesName     string        `json:"SeriesName,omitempty"`
	ImageTags      ImageTags     `json:"ImageTags"`
	MediaSources   []MediaSource `json:"MediaSources,omitempty"`
	UserData       UserData      `json:"UserData"`
}

// ImageTags carries cache tags for the item's images.
type ImageTags struct {
	Primary string `json:"Primary,omitempty"`
}

// MediaSource describes one deliverable version of an item.
type MediaSource struct {
	ID                   string `json:"Id"`
	Container            string `json:"Container,omitempty"`
	SupportsDirectStream bool   `json:"SupportsDirectStream"`
	SupportsTranscoding  bool   `json:"SupportsTranscoding"`
}

// UserData is the per-user state of an item.
type UserData struct {
	IsFavorite            bool  `json:"IsFavorite"`
	Played                bool  `json:"Played"`
	PlaybackPositionTicks Ticks `json:"PlaybackPositionTicks,omitempty"`
}

// Runtime is the item's known duration in seconds, or zero.
func (i *Item) Runtime() float64 {
	return i.RunTimeTicks.Seconds()
}

// PrimarySource returns the first media source, if any.
func (i *Item) PrimarySource() (MediaSource, bool) {
	if len(i.MediaSources) == 0 {
		return MediaSource{}, false
	}
	return i.MediaSources[0], true
}

// Subtitle is the "series • year" line shown under the title.
func (i *Item) Subtitle() string {
	var parts []string
	if i.SeriesName != "" {
		parts = append(parts, i.SeriesName)
	}
	if i.ProductionYear > 0 {
		parts = append(parts, strconv.Itoa(i.ProductionYear))
	}
	return strings.Join(parts, " • ")
}

// Library is a top-level user view.
type Library struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	CollectionType string `json:"CollectionType,omitempty"`
}

// User is the authenticated identity.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken,omitempty"`
}

// ServerInfo is the unauthenticated server description.
type ServerInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

// Progress is a playback position report.
type Progress struct {
	ItemID        string `json:"ItemId"`
	MediaSourceID string `json:"MediaSourceId,omitempty"`
	PlaySessionID string `json:"PlaySessionId,omitempty"`
	PositionTicks Ticks  `json:"PositionTicks"`
	IsPaused      bool   `json:"IsPaused"`
}
