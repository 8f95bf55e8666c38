// Package network provides the HTTP client shared by every call to the media server.
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/log"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
)

// UserAgent identifies the client in every request.
const UserAgent = constant.ClientName + "/" + constant.Version

// Client is shared by the catalog client. Its timeout comes from network.timeout_seconds.
var Client = NewClient(0)

// NewClient builds an http.Client around a tuned transport. A zero timeout falls back to the configured one.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: newTransport(nil)},
	}
}

// newTransport speaks HTTP/2 to servers behind TLS. Idle HTTP/2 connections
// are pinged so a server that went to sleep is noticed before a request hangs on it.
func newTransport(tlsConfig *tls.Config) *http.Transport {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	h2, err := http2.ConfigureTransports(t)
	if err != nil {
		log.Warnf("http2 unavailable: %v", err)
		return t
	}
	h2.ReadIdleTimeout = 30 * time.Second
	h2.PingTimeout = 15 * time.Second

	return t
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.base.RoundTrip(req)
}
