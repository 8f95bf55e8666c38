// Package player drives the playback surfaces that render the feed.
// The only backend is mpv, controlled over its JSON-IPC socket.
package player

import "fmt"

// Surface is a single video output. A surface plays at most one media at a time;
// loading new media or releasing the surface ends the previous media's event stream.
type Surface interface {
	// Load replaces whatever is loaded with media. The surface stays paused until Play.
	// Events for this media are delivered through emit, from any goroutine, until the
	// next Load or Release.
	Load(media Media, emit func(Event)) error

	Play() error
	Pause() error

	// Seek moves to an absolute position in seconds.
	Seek(seconds float64) error

	// Focus raises the surface's window when on and hides it otherwise.
	Focus(on bool) error

	// Release stops playback and unloads the media, closing its network streams.
	Release() error

	// Close terminates the surface.
	Close() error
}

// Media is what a surface loads.
type Media struct {
	URL   string
	Title string

	// Start is the initial position in seconds.
	Start float64

	// MaxBitrate caps adaptive variant selection in bits per second; zero leaves it to the player.
	MaxBitrate int
}

// EventKind tags an Event.
type EventKind int

const (
	Loaded EventKind = iota
	TimeUpdate
	DurationChanged
	Ended
	Error
)

func (k EventKind) String() string {
	switch k {
	case Loaded:
		return "loaded"
	case TimeUpdate:
		return "time-update"
	case DurationChanged:
		return "duration"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a notification from a surface about the media it has loaded.
type Event struct {
	Kind EventKind

	// Position for TimeUpdate and Duration for DurationChanged, in seconds.
	Position float64
	Duration float64

	// Reason describes an Error.
	Reason string
}
