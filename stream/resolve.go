// Package stream decides how an item is delivered to the playback surface.
//
// A direct source streams the original file, letting the server copy
// streams where it can. An adaptive source requests an HLS master playlist
// that the server transcodes segment by segment under a bitrate ceiling.
// Resolution performs no I/O.
package stream

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jellytok/jellytok/jellyfin"
)

// DefaultMaxBitrate is the ceiling used when no preference is set. It is high enough to never constrain.
const DefaultMaxBitrate = 100_000_000

// Kind is the delivery mode of a source.
type Kind int

const (
	Direct Kind = iota
	Adaptive
)

func (k Kind) String() string {
	if k == Direct {
		return "direct"
	}
	return "adaptive"
}

// Source is a resolved, parameterized endpoint. It is derived and never persisted.
type Source struct {
	Kind          Kind
	URL           string
	ItemID        string
	MediaSourceID string
	PlaySessionID string
	MaxBitrate    int
	AudioCodec    string
	Container     string
}

// Options are the preferences resolution depends on.
type Options struct {
	BaseURL         string
	Token           string
	DirectPlayFirst bool
	MaxBitrate      int

	// ForceAudioCodec, when set, asks the server for this audio codec on direct streams.
	ForceAudioCodec string

	// Now stamps play session ids; nil means time.Now.
	Now func() time.Time
}

// Resolve picks the source for item. directFailed reports a sticky direct-play failure for the item.
func Resolve(item *jellyfin.Item, opts Options, directFailed bool) Source {
	mediaSourceID := item.ID
	var container string
	if ms, ok := item.PrimarySource(); ok {
		if ms.ID != "" {
			mediaSourceID = ms.ID
		}
		container = primaryContainer(ms.Container)
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	itemPath := "/Videos/" + url.PathEscape(item.ID)

	if opts.DirectPlayFirst && !directFailed {
		q := url.Values{}
		q.Set("MediaSourceId", mediaSourceID)
		q.Set("api_key", opts.Token)
		q.Set("AllowVideoStreamCopy", "true")
		q.Set("AllowAudioStreamCopy", "true")
		q.Set("static", "true")
		if opts.ForceAudioCodec != "" {
			q.Set("AudioCodec", opts.ForceAudioCodec)
		}

		ext := ""
		if container != "" {
			ext = "." + container
		}

		return Source{
			Kind:          Direct,
			URL:           base + itemPath + "/stream" + ext + "?" + q.Encode(),
			ItemID:        item.ID,
			MediaSourceID: mediaSourceID,
			AudioCodec:    opts.ForceAudioCodec,
			Container:     container,
		}
	}

	bitrate := opts.MaxBitrate
	if bitrate <= 0 {
		bitrate = DefaultMaxBitrate
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	sessionID := strconv.FormatInt(nextSessionID(now()), 10)

	q := url.Values{}
	q.Set("MediaSourceId", mediaSourceID)
	q.Set("PlaySessionId", sessionID)
	q.Set("api_key", opts.Token)
	q.Set("VideoBitrate", strconv.Itoa(bitrate))
	q.Set("AllowVideoStreamCopy", "true")
	q.Set("AllowAudioStreamCopy", "true")

	return Source{
		Kind:          Adaptive,
		URL:           base + itemPath + "/master.m3u8?" + q.Encode(),
		ItemID:        item.ID,
		MediaSourceID: mediaSourceID,
		PlaySessionID: sessionID,
		MaxBitrate:    bitrate,
		Container:     container,
	}
}

// primaryContainer picks the first name of a comma separated container list such as "mov,mp4,m4a".
func primaryContainer(container string) string {
	first, _, _ := strings.Cut(container, ",")
	return strings.ToLower(strings.TrimSpace(first))
}

var (
	sessionMu   sync.Mutex
	lastSession int64
)

// nextSessionID returns the wall clock in milliseconds, bumped so ids never repeat within the process.
func nextSessionID(t time.Time) int64 {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	id := t.UnixMilli()
	if id <= lastSession {
		id = lastSession + 1
	}
	lastSession = id
	return id
}

// Failures records items whose direct stream failed. Once marked, an item
// resolves adaptively for as long as the set lives.
type Failures struct {
	ids map[string]struct{}
}

// NewFailures returns an empty set.
func NewFailures() *Failures {
	return &Failures{ids: make(map[string]struct{})}
}

// Mark records a direct-play failure for itemID.
func (f *Failures) Mark(itemID string) {
	f.ids[itemID] = struct{}{}
}

// Has reports whether itemID has failed direct play.
func (f *Failures) Has(itemID string) bool {
	_, ok := f.ids[itemID]
	return ok
}

// Len is the number of marked items.
func (f *Failures) Len() int {
	return len(f.ids)
}
