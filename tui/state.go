package tui

type state int

const (
	loadingState state = iota
	feedState
	filtersState
	sortState
	librariesState
	errorState
)

func (s state) String() string {
	switch s {
	case loadingState:
		return "loading"
	case feedState:
		return "feed"
	case filtersState:
		return "filters"
	case sortState:
		return "sort"
	case librariesState:
		return "libraries"
	case errorState:
		return "error"
	default:
		return "unknown"
	}
}
