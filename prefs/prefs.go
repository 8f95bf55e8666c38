// Package prefs holds the user's preferences and session: the server, the
// signed in user, the selected library and how the feed is filtered, sorted
// and played. They survive restarts in a versioned blob on disk.
package prefs

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/stream"
	"github.com/samber/lo"
)

// Filters is the feed's additive filter set and its sort mode.
type Filters struct {
	Selected []jellyfin.Filter `json:"selected"`
	Sorting  jellyfin.SortMode `json:"sorting"`
}

// Has reports whether f is selected.
func (f Filters) Has(filter jellyfin.Filter) bool {
	return lo.Contains(f.Selected, filter)
}

// Toggle selects filter if it is not selected and deselects it otherwise.
func (f *Filters) Toggle(filter jellyfin.Filter) {
	if f.Has(filter) {
		f.Selected = lo.Without(f.Selected, filter)
		return
	}
	f.Selected = append(f.Selected, filter)
}

// Preferences is the persisted state.
type Preferences struct {
	ServerURL       string         `json:"serverUrl"`
	User            *jellyfin.User `json:"user,omitempty"`
	LibraryID       string         `json:"libraryId,omitempty"`
	MaxBitrate      int            `json:"maxBitrate"`
	DirectPlayFirst bool           `json:"directPlayFirst"`
	Filters         Filters        `json:"filters"`

	// DeviceID identifies this installation to the server.
	DeviceID string `json:"deviceId"`

	// TokenInKeyring is set when the access token lives in the system keyring instead of the blob.
	TokenInKeyring bool `json:"tokenInKeyring,omitempty"`
}

// Default returns the preferences of a fresh installation.
func Default() Preferences {
	return Preferences{
		MaxBitrate: stream.DefaultMaxBitrate,
		Filters:    Filters{Sorting: jellyfin.Shuffle},
		DeviceID:   uuid.NewString(),
	}
}

// LoggedIn reports whether there is a server and a user with a token.
func (p Preferences) LoggedIn() bool {
	return p.ServerURL != "" && p.User != nil && p.User.AccessToken != ""
}

// Token is the access token, or empty when logged out.
func (p Preferences) Token() string {
	if p.User == nil {
		return ""
	}
	return p.User.AccessToken
}

// UserID is the signed in user's id, or empty when logged out.
func (p Preferences) UserID() string {
	if p.User == nil {
		return ""
	}
	return p.User.ID
}

// Client returns a catalog client for the signed in user.
func (p Preferences) Client() *jellyfin.Client {
	return jellyfin.New(p.ServerURL, p.Token(), p.DeviceID)
}

// StreamOptions derives source resolution options. forceAudioCodec comes from the configuration.
func (p Preferences) StreamOptions(forceAudioCodec string) stream.Options {
	return stream.Options{
		BaseURL:         p.ServerURL,
		Token:           p.Token(),
		DirectPlayFirst: p.DirectPlayFirst,
		MaxBitrate:      p.MaxBitrate,
		ForceAudioCodec: forceAudioCodec,
	}
}

func (p Preferences) clone() Preferences {
	c := p
	if p.User != nil {
		u := *p.User
		c.User = &u
	}
	c.Filters.Selected = slices.Clone(p.Filters.Selected)
	return c
}

// normalize fills in defaults for values that are missing or invalid.
func (p *Preferences) normalize() {
	if p.MaxBitrate <= 0 {
		p.MaxBitrate = stream.DefaultMaxBitrate
	}
	if !slices.Contains(jellyfin.SortModes, p.Filters.Sorting) {
		p.Filters.Sorting = jellyfin.Shuffle
	}
	p.Filters.Selected = lo.Uniq(lo.Filter(p.Filters.Selected, func(f jellyfin.Filter, _ int) bool {
		return slices.Contains(jellyfin.Filters, f)
	}))
	if p.DeviceID == "" {
		p.DeviceID = uuid.NewString()
	}
	p.ServerURL = jellyfin.NormalizeURL(p.ServerURL)
}
