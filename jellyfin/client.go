// Package jellyfin is a small client for the parts of the Jellyfin HTTP API the feed needs.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/network"
	"github.com/jellytok/jellytok/util"
)

var (
	// ErrAuthentication is returned when the server rejects the credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// Client talks to a single server.
type Client struct {
	BaseURL  string
	Token    string
	DeviceID string
	Device   string
	HTTP     *http.Client
}

// New returns a client for baseURL. Trailing slashes are trimmed.
func New(baseURL, token, deviceID string) *Client {
	device, err := os.Hostname()
	if err != nil || device == "" {
		device = constant.App
	}

	return &Client{
		BaseURL:  NormalizeURL(baseURL),
		Token:    token,
		DeviceID: deviceID,
		Device:   device,
		HTTP:     network.Client,
	}
}

// NormalizeURL trims whitespace and trailing slashes.
func NormalizeURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// authorization is the client identification header sent on the authentication call.
func (c *Client) authorization() string {
	return fmt.Sprintf(
		`MediaBrowser Client="%s", Device="%s", DeviceId="%s", Version="%s"`,
		constant.ClientName, c.Device, c.DeviceID, constant.Version,
	)
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	header http.Header
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	target := c.BaseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth {
		req.Header.Set("X-Emby-Token", c.Token)
	}
	for name, values := range r.header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	return req, nil
}

// do performs r and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer util.Ignore(resp.Body.Close)

	if err := checkStatus(r, resp.StatusCode); err != nil {
		log.WithField("status", resp.StatusCode).Debugf("%s %s failed", r.method, r.path)
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", r.method, r.path, err)
	}

	return nil
}

func checkStatus(r request, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", r.method, r.path, ErrAuthentication)
	case code == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", r.method, r.path, ErrNotFound)
	default:
		return &StatusError{Method: r.method, Path: r.path, Code: code}
	}
}
