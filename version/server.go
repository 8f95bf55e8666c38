package version

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/filesystem"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/where"
	"github.com/metafates/gache"
)

// ErrUnsupportedServer is returned for servers older than constant.MinServerVersion.
var ErrUnsupportedServer = errors.New("unsupported server")

// CheckServer accepts server releases at or above the minimum.
func CheckServer(serverVersion string) error {
	cmp, err := Compare(serverVersion, constant.MinServerVersion)
	if err != nil {
		return fmt.Errorf("server version: %w", err)
	}

	if cmp < 0 {
		return fmt.Errorf("%w: version %s is older than %s", ErrUnsupportedServer, serverVersion, constant.MinServerVersion)
	}
	return nil
}

const serverInfoLifetime = 24 * time.Hour

type cachedServer struct {
	URL  string               `json:"url"`
	Info *jellyfin.ServerInfo `json:"info"`
}

func serverCache() *gache.Cache[*cachedServer] {
	return gache.New[*cachedServer](&gache.Options{
		Path:       filepath.Join(where.Cache(), "server.json"),
		Lifetime:   serverInfoLifetime,
		FileSystem: &filesystem.GacheFs{},
	})
}

// Server returns the public description of the client's server. Answers are
// cached on disk for a day, for the last server asked about.
func Server(ctx context.Context, client *jellyfin.Client) (*jellyfin.ServerInfo, error) {
	cache := serverCache()

	cached, expired, err := cache.Get()
	if err != nil {
		log.Warnf("read server info cache: %v", err)
	} else if !expired && cached != nil && cached.Info != nil && cached.URL == client.BaseURL {
		return cached.Info, nil
	}

	info, err := client.PublicInfo(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.Set(&cachedServer{URL: client.BaseURL, Info: info}); err != nil {
		log.Warnf("write server info cache: %v", err)
	}
	return info, nil
}
