package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"sync"

	"github.com/jellytok/jellytok/log"
)

// observed properties, in observe_property id order.
var observed = []string{"time-pos", "duration", "eof-reached"}

// timeUpdateStep throttles time-pos notifications, which mpv sends for every frame.
const timeUpdateStep = 0.25

// rawEvent is an asynchronous message on the IPC connection.
type rawEvent struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// translate maps an mpv message to a surface event.
func translate(raw rawEvent) (Event, bool) {
	switch raw.Event {
	case "file-loaded":
		return Event{Kind: Loaded}, true
	case "end-file":
		switch raw.Reason {
		case "eof":
			return Event{Kind: Ended}, true
		case "error":
		default:
			return Event{}, false
		}
		reason := raw.FileError
		if reason == "" {
			reason = "playback error"
		}
		return Event{Kind: Error, Reason: reason}, true
	case "property-change":
		switch raw.Name {
		case "time-pos":
			var pos *float64
			if err := json.Unmarshal(raw.Data, &pos); err != nil || pos == nil {
				return Event{}, false
			}
			return Event{Kind: TimeUpdate, Position: *pos}, true
		case "duration":
			var dur *float64
			if err := json.Unmarshal(raw.Data, &dur); err != nil || dur == nil || *dur <= 0 {
				return Event{}, false
			}
			return Event{Kind: DurationChanged, Duration: *dur}, true
		case "eof-reached":
			var eof bool
			if err := json.Unmarshal(raw.Data, &eof); err != nil || !eof {
				return Event{}, false
			}
			return Event{Kind: Ended}, true
		}
	}
	return Event{}, false
}

// eventListener holds a persistent connection that observes the surface's
// properties and forwards translated events to the current sink.
type eventListener struct {
	conn net.Conn

	mu      sync.Mutex
	emit    func(Event)
	lastPos float64

	done chan struct{}
}

func startListener(socketPath string) (*eventListener, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el := &eventListener{conn: conn, lastPos: -1, done: make(chan struct{})}
	go el.readLoop()

	log.Debugf("mpv event listener started on %s", socketPath)
	return el, nil
}

// setSink routes subsequent events to emit. A nil sink drops them.
func (el *eventListener) setSink(emit func(Event)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.emit = emit
	el.lastPos = -1
}

func (el *eventListener) dispatch(ev Event) {
	el.mu.Lock()
	emit := el.emit
	if ev.Kind == TimeUpdate {
		if el.lastPos >= 0 && ev.Position >= el.lastPos && math.Abs(ev.Position-el.lastPos) < timeUpdateStep {
			el.mu.Unlock()
			return
		}
		el.lastPos = ev.Position
	}
	el.mu.Unlock()

	if emit != nil {
		emit(ev)
	}
}

func (el *eventListener) readLoop() {
	defer close(el.done)

	scanner := bufio.NewScanner(el.conn)
	for scanner.Scan() {
		var raw rawEvent
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil || raw.Event == "" {
			continue
		}
		if ev, ok := translate(raw); ok {
			el.dispatch(ev)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debugf("event listener stopped: %v", err)
	}
}

func (el *eventListener) stop() {
	el.setSink(nil)
	_ = el.conn.Close()
	<-el.done
}
