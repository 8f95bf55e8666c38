package jellyfin

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Filter is a server-side item predicate. Filters combine additively.
type Filter string

const (
	IsUnplayed  Filter = "IsUnplayed"
	IsPlayed    Filter = "IsPlayed"
	IsFavorite  Filter = "IsFavorite"
	IsResumable Filter = "IsResumable"
	Likes       Filter = "Likes"
	Dislikes    Filter = "Dislikes"
)

// Filters lists every known filter in display order.
var Filters = []Filter{IsUnplayed, IsPlayed, IsFavorite, IsResumable, Likes, Dislikes}

// Label is a short human readable name.
func (f Filter) Label() string {
	switch f {
	case IsUnplayed:
		return "Unplayed"
	case IsPlayed:
		return "Played"
	case IsFavorite:
		return "Favorites"
	case IsResumable:
		return "Resumable"
	case Likes:
		return "Liked"
	case Dislikes:
		return "Disliked"
	default:
		return string(f)
	}
}

// ParseFilter accepts either the wire name or the label, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if strings.EqualFold(s, string(f)) || strings.EqualFold(s, f.Label()) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// SortMode orders the feed.
type SortMode string

const (
	Shuffle  SortMode = "Shuffle"
	DateDesc SortMode = "DateDesc"
	DateAsc  SortMode = "DateAsc"
)

// SortModes lists every sort mode in display order.
var SortModes = []SortMode{Shuffle, DateDesc, DateAsc}

// Label is a short human readable name.
func (s SortMode) Label() string {
	switch s {
	case DateDesc:
		return "Newest first"
	case DateAsc:
		return "Oldest first"
	default:
		return "Shuffle"
	}
}

// ParseSortMode accepts the wire name or the label, case-insensitively.
func ParseSortMode(s string) (SortMode, error) {
	for _, m := range SortModes {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 20

// Query selects one page of a library.
type Query struct {
	UserID     string
	LibraryID  string
	Filters    []Filter
	Sort       SortMode
	StartIndex int
	Limit      int
}

var itemTypes = []string{"Movie", "Video", "Episode", "MusicVideo"}

var itemFields = []string{"Path", "MediaSources", "RunTimeTicks", "ProductionYear", "SeriesName", "UserData"}

// Values encodes q as query parameters.
func (q Query) Values() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	v := url.Values{}
	if q.LibraryID != "" {
		v.Set("ParentId", q.LibraryID)
	}
	v.Set("IncludeItemTypes", strings.Join(itemTypes, ","))
	v.Set("Recursive", "true")
	v.Set("Fields", strings.Join(itemFields, ","))
	v.Set("Limit", strconv.Itoa(limit))
	v.Set("StartIndex", strconv.Itoa(q.StartIndex))
	v.Set("ImageTypeLimit", "1")

	if filters := lo.Uniq(q.Filters); len(filters) > 0 {
		v.Set("Filters", strings.Join(lo.Map(filters, func(f Filter, _ int) string {
			return string(f)
		}), ","))
	}

	switch q.Sort {
	case DateDesc:
		v.Set("SortBy", "DateCreated")
		v.Set("SortOrder", "Descending")
	case DateAsc:
		v.Set("SortBy", "DateCreated")
		v.Set("SortOrder", "Ascending")
	default:
		v.Set("SortBy", "Random")
	}

	return v
}
