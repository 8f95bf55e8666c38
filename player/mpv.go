package player

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/where"
)

const socketWaitDelay = 300 * time.Millisecond

// Options configure the mpv processes.
type Options struct {
	Binary        string
	Loop          bool
	ExtraArgs     []string
	SocketRetries int
}

// MPV is a Surface backed by one idle mpv process.
type MPV struct {
	opts       Options
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *eventListener
	mu         sync.Mutex
}

// NewMPV creates a surface. The process is spawned by Start.
func NewMPV(opts Options) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.SocketRetries <= 0 {
		opts.SocketRetries = 10
	}
	return &MPV{opts: opts, exited: make(chan struct{})}
}

// StartMPV spawns a surface and waits until it accepts commands.
func StartMPV(ctx context.Context, opts Options) (*MPV, error) {
	m := NewMPV(opts)
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// buildArgs returns the command line of an idle, paused surface.
// User mpv.conf settings such as --vo or --hwdec are left alone.
func buildArgs(opts Options, socketPath string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socketPath,
		"--idle=yes",
		"--force-window=yes",
		"--pause=yes",
		"--keep-open=no",
		"--title=" + constant.ClientName,
	}

	if opts.Loop {
		args = append(args, "--loop-file=inf")
	}

	for _, extra := range opts.ExtraArgs {
		if strings.HasPrefix(extra, "--input-ipc-server") {
			continue
		}
		args = append(args, extra)
	}

	return args
}

// Start spawns the process and attaches the event listener.
func (m *MPV) Start(ctx context.Context) error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))

	m.cmd = exec.Command(m.opts.Binary, buildArgs(m.opts, m.socketPath)...)
	m.cmd.SysProcAttr = detached()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(ctx); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = kill(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	listener, err := startListener(m.socketPath)
	if err != nil {
		_ = m.Close()
		return err
	}
	m.listener = listener

	return nil
}

var errExited = errors.New("mpv exited before socket was ready")

// waitForSocket polls until the IPC socket accepts connections.
func (m *MPV) waitForSocket(ctx context.Context) error {
	return retry.Do(
		func() error {
			select {
			case <-m.exited:
				return retry.Unrecoverable(errExited)
			default:
			}

			conn, err := net.Dial("unix", m.socketPath)
			if err != nil {
				return err
			}
			return conn.Close()
		},
		retry.Context(ctx),
		retry.Attempts(uint(m.opts.SocketRetries)),
		retry.Delay(socketWaitDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// Load replaces the current media. Per-file settings are applied as options before loadfile.
func (m *MPV) Load(media Media, emit func(Event)) error {
	target, err := sanitizeMediaTarget(media.URL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if err := m.set("pause", true); err != nil {
		return err
	}
	if err := m.set("force-media-title", sanitizeTitle(media.Title)); err != nil {
		return err
	}
	if err := m.set("start", strconv.FormatFloat(media.Start, 'f', 3, 64)); err != nil {
		return err
	}

	bitrate := "max"
	if media.MaxBitrate > 0 {
		bitrate = strconv.Itoa(media.MaxBitrate)
	}
	if err := m.set("hls-bitrate", bitrate); err != nil {
		return err
	}

	if m.listener != nil {
		m.listener.setSink(emit)
	}

	if _, err := m.sendCommand("loadfile", target, "replace"); err != nil {
		if m.listener != nil {
			m.listener.setSink(nil)
		}
		return err
	}

	return nil
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

// Focus minimizes inactive surfaces. Video outputs without window control report an error that is ignored.
func (m *MPV) Focus(on bool) error {
	err := m.set("window-minimized", !on)
	var mpvErr *mpvError
	if errors.As(err, &mpvErr) {
		return nil
	}
	return err
}

// Release stops playback. mpv tears down the demuxer and its network streams
// before replying, so the media is fully released when this returns.
func (m *MPV) Release() error {
	if m.listener != nil {
		m.listener.setSink(nil)
	}
	if !m.IsRunning() {
		return nil
	}
	_, err := m.sendCommand("stop")
	return err
}

// IsRunning reports whether the process is alive.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Close quits mpv, killing it if it does not exit in time.
func (m *MPV) Close() error {
	if m.socketPath == "" {
		return nil
	}

	if m.IsRunning() {
		_, _ = m.sendCommand("quit")
	}

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = kill(m.cmd)
	}

	if m.listener != nil {
		m.listener.stop()
		m.listener = nil
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) set(property string, value any) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// sanitizeMediaTarget rejects anything that is not an http(s) URL so that nothing can be read as an mpv flag.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	u, err := url.Parse(l)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l, nil
	default:
		return "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
