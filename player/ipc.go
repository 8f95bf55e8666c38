package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/avast/retry-go/v4"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id,omitempty"`
}

// ipcResponse is the JSON structure received from mpv's IPC socket.
type ipcResponse struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID int    `json:"request_id"`
	Event     string `json:"event"`
}

const (
	commandAttempts = 3
	retryDelay      = 100 * time.Millisecond
	readDeadline    = time.Second
)

// sendCommand sends a command over a fresh connection, retrying transient failures.
func (m *MPV) sendCommand(command ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return retry.DoWithData(
		func() (any, error) {
			return doSendCommand(m.socketPath, command)
		},
		retry.Attempts(commandAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			_, mpvErr := err.(*mpvError)
			return !mpvErr
		}),
	)
}

// mpvError is an error reported by mpv itself. It is not retried.
type mpvError struct {
	command any
	reason  string
}

func (e *mpvError) Error() string {
	return fmt.Sprintf("mpv %v: %s", e.command, e.reason)
}

// doSendCommand performs a single IPC round trip. Asynchronous events that
// arrive on the connection before the reply are skipped.
func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	const requestID = 1
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: requestID})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if resp.Event != "" || resp.RequestID != requestID {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, &mpvError{command: command[0], reason: resp.Error}
		}
		return resp.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed")
}
