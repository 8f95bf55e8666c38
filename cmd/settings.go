package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// parseBitrate reads a bitrate in megabits per second.
func parseBitrate(s string) (int, error) {
	mbps, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(s), "mbps"), 64)
	if err != nil || mbps <= 0 {
		return 0, fmt.Errorf("invalid bitrate %q, expected a positive number of megabits per second", s)
	}
	return int(mbps * 1_000_000), nil
}

func formatBitrate(bps int) string {
	return strconv.FormatFloat(float64(bps)/1_000_000, 'f', -1, 64) + " Mbps"
}

func parseFilters(args []string) ([]jellyfin.Filter, error) {
	filters := make([]jellyfin.Filter, 0, len(args))
	for _, arg := range args {
		f, err := jellyfin.ParseFilter(arg)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func completeFilters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(jellyfin.Filters, func(f jellyfin.Filter, _ int) string {
		return string(f) + "\t" + f.Label()
	}), cobra.ShellCompDirectiveNoFileComp
}

func updatePrefs(fn func(p *prefs.Preferences)) {
	store := loggedIn()
	handleErr(store.Update(fn))
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the playback and feed settings",
	Run: func(cmd *cobra.Command, args []string) {
		p := loggedIn().Get()

		filters := "none"
		if len(p.Filters.Selected) > 0 {
			filters = strings.Join(lo.Map(p.Filters.Selected, func(f jellyfin.Filter, _ int) string {
				return f.Label()
			}), ", ")
		}

		library := allLibraries
		if p.LibraryID != "" {
			library = p.LibraryID
		}

		rows := [][2]string{
			{"Server", p.ServerURL},
			{"User", p.User.Name},
			{"Library", library},
			{"Max bitrate", formatBitrate(p.MaxBitrate)},
			{"Direct play first", strconv.FormatBool(p.DirectPlayFirst)},
			{"Filters", filters},
			{"Sort", p.Filters.Sorting.Label()},
		}

		for _, row := range rows {
			fmt.Printf("%s %s\n", style.Bold(row[0]+":"), row[1])
		}
	},
}

func init() {
	settingsCmd.AddCommand(settingsBitrateCmd)
}

var settingsBitrateCmd = &cobra.Command{
	Use:     "bitrate <mbps>",
	Short:   "Set the maximum streaming bitrate",
	Example: "  bitrate 8",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bps, err := parseBitrate(args[0])
		handleErr(err)

		updatePrefs(func(p *prefs.Preferences) { p.MaxBitrate = bps })
		success("Max bitrate set to %s", style.Bold(formatBitrate(bps)))
	},
}

func init() {
	settingsCmd.AddCommand(settingsDirectPlayCmd)
}

var settingsDirectPlayCmd = &cobra.Command{
	Use:       "direct-play <true|false>",
	Short:     "Try the original file before asking the server to transcode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"true", "false"},
	Run: func(cmd *cobra.Command, args []string) {
		enabled, err := strconv.ParseBool(args[0])
		handleErr(err)

		updatePrefs(func(p *prefs.Preferences) { p.DirectPlayFirst = enabled })
		success("Direct play first %s", style.Bold(lo.Ternary(enabled, "enabled", "disabled")))
	},
}

func init() {
	settingsCmd.AddCommand(settingsFilterCmd)
	settingsFilterCmd.AddCommand(settingsFilterAddCmd)
	settingsFilterCmd.AddCommand(settingsFilterRemoveCmd)
	settingsFilterCmd.AddCommand(settingsFilterClearCmd)
}

var settingsFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Change which videos the feed shows",
}

var settingsFilterAddCmd = &cobra.Command{
	Use:               "add <filter>...",
	Short:             "Select filters",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeFilters,
	Run: func(cmd *cobra.Command, args []string) {
		filters, err := parseFilters(args)
		handleErr(err)

		updatePrefs(func(p *prefs.Preferences) {
			p.Filters.Selected = append(p.Filters.Selected, filters...)
		})
		success("Filters updated")
	},
}

var settingsFilterRemoveCmd = &cobra.Command{
	Use:               "remove <filter>...",
	Aliases:           []string{"rm"},
	Short:             "Deselect filters",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeFilters,
	Run: func(cmd *cobra.Command, args []string) {
		filters, err := parseFilters(args)
		handleErr(err)

		updatePrefs(func(p *prefs.Preferences) {
			p.Filters.Selected = lo.Without(p.Filters.Selected, filters...)
		})
		success("Filters updated")
	},
}

var settingsFilterClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deselect every filter",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		updatePrefs(func(p *prefs.Preferences) { p.Filters.Selected = nil })
		success("Filters cleared")
	},
}

func init() {
	settingsCmd.AddCommand(settingsSortCmd)
}

var settingsSortCmd = &cobra.Command{
	Use:   "sort <mode>",
	Short: "Set the feed order",
	Args:  cobra.ExactArgs(1),
	ValidArgs: lo.Map(jellyfin.SortModes, func(m jellyfin.SortMode, _ int) string {
		return string(m)
	}),
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := jellyfin.ParseSortMode(args[0])
		handleErr(err)

		updatePrefs(func(p *prefs.Preferences) { p.Filters.Sorting = mode })
		success("Sorting by %s", style.Bold(mode.Label()))
	},
}
