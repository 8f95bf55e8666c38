package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/log"
)

// Version is the schema version written by this release.
const Version = 2

// Envelope is the persisted blob.
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// stateV1 is the shape written by the first release, where the play and
// favorite filters were mutually exclusive choices.
type stateV1 struct {
	ServerURL string `json:"serverUrl"`
	User      *struct {
		ID          string `json:"Id"`
		Name        string `json:"Name"`
		AccessToken string `json:"AccessToken"`
	} `json:"user"`
	SelectedLibraryID string `json:"selectedLibraryId"`
	Bitrate           int    `json:"bitrate"`
	DirectPlayFirst   bool   `json:"directPlayFirst"`
	Filters           struct {
		PlayStatus     string `json:"playStatus"`
		FavoriteStatus string `json:"favoriteStatus"`
		Sorting        string `json:"sorting"`
	} `json:"filters"`
}

// decode reads an envelope of any known version into current preferences.
func decode(env *Envelope) (Preferences, error) {
	switch {
	case env.Version >= Version:
		if env.Version > Version {
			log.Warnf("preferences written by a newer release (version %d), reading as version %d", env.Version, Version)
		}
		p := Default()
		if err := json.Unmarshal(env.State, &p); err != nil {
			return Preferences{}, fmt.Errorf("decode preferences: %w", err)
		}
		p.normalize()
		return p, nil
	default:
		var old stateV1
		if err := json.Unmarshal(env.State, &old); err != nil {
			return Preferences{}, fmt.Errorf("decode version %d preferences: %w", env.Version, err)
		}
		return migrateV1(old), nil
	}
}

// migrateV1 maps the exclusive play and favorite choices onto the filter set.
// There is no server filter for non-favorites, so that choice is dropped.
func migrateV1(old stateV1) Preferences {
	p := Default()
	p.ServerURL = old.ServerURL
	p.LibraryID = old.SelectedLibraryID
	p.MaxBitrate = old.Bitrate
	p.DirectPlayFirst = old.DirectPlayFirst

	if old.User != nil {
		p.User = &jellyfin.User{
			ID:          old.User.ID,
			Name:        old.User.Name,
			AccessToken: old.User.AccessToken,
		}
	}

	switch old.Filters.PlayStatus {
	case "Unplayed":
		p.Filters.Selected = append(p.Filters.Selected, jellyfin.IsUnplayed)
	case "Played":
		p.Filters.Selected = append(p.Filters.Selected, jellyfin.IsPlayed)
	}

	switch old.Filters.FavoriteStatus {
	case "Favorites":
		p.Filters.Selected = append(p.Filters.Selected, jellyfin.IsFavorite)
	case "NonFavorites":
		log.Info("dropping the non-favorites filter, it has no equivalent")
	}

	if mode, err := jellyfin.ParseSortMode(old.Filters.Sorting); err == nil {
		p.Filters.Sorting = mode
	}

	p.normalize()
	return p
}
