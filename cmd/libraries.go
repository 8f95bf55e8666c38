package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/style"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const allLibraries = "All libraries"

func fetchLibraries(p prefs.Preferences) []jellyfin.Library {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout())
	defer cancel()

	libs, err := p.Client().Libraries(ctx, p.UserID())
	handleErr(err)
	return libs
}

// matchLibrary finds the library whose name is closest to name. Exact
// matches, ignoring case, win over fuzzy ones.
func matchLibrary(libs []jellyfin.Library, name string) (jellyfin.Library, bool) {
	if lib, ok := lo.Find(libs, func(l jellyfin.Library) bool {
		return strings.EqualFold(l.Name, name)
	}); ok {
		return lib, true
	}

	names := lo.Map(libs, func(l jellyfin.Library, _ int) string { return l.Name })
	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return jellyfin.Library{}, false
	}

	sort.Sort(ranks)
	return libs[ranks[0].OriginalIndex], true
}

func init() {
	rootCmd.AddCommand(librariesCmd)
}

var librariesCmd = &cobra.Command{
	Use:     "libraries",
	Aliases: []string{"library"},
	Short:   "List your libraries, the selected one is marked",
	Run: func(cmd *cobra.Command, args []string) {
		p := loggedIn().Get()

		mark := func(selected bool) string {
			if selected {
				return style.Fg(style.AccentColor)(icon.Get(icon.Success))
			}
			return " "
		}

		fmt.Printf("%s %s\n", mark(p.LibraryID == ""), allLibraries)
		for _, lib := range fetchLibraries(p) {
			fmt.Printf("%s %s %s\n", mark(lib.ID == p.LibraryID), style.Bold(lib.Name), style.Faint(lib.CollectionType))
		}
	},
}

func init() {
	librariesCmd.AddCommand(librariesSelectCmd)
	librariesSelectCmd.Flags().BoolP("all", "a", false, "Play from all libraries")
}

var librariesSelectCmd = &cobra.Command{
	Use:   "select [name]",
	Short: "Choose the library the feed plays from",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loggedIn()
		p := store.Get()

		var (
			id   string
			name = allLibraries
		)

		switch {
		case lo.Must(cmd.Flags().GetBool("all")):
		case len(args) == 1:
			lib, ok := matchLibrary(fetchLibraries(p), args[0])
			if !ok {
				handleErr(fmt.Errorf("no library matches %q", args[0]))
			}
			id, name = lib.ID, lib.Name
		default:
			libs := fetchLibraries(p)
			options := append([]string{allLibraries}, lo.Map(libs, func(l jellyfin.Library, _ int) string { return l.Name })...)

			current := allLibraries
			if lib, ok := lo.Find(libs, func(l jellyfin.Library) bool { return l.ID == p.LibraryID }); ok {
				current = lib.Name
			}

			var index int
			handleErr(survey.AskOne(&survey.Select{
				Message: "Library",
				Options: options,
				Default: current,
			}, &index))

			if index > 0 {
				id, name = libs[index-1].ID, libs[index-1].Name
			}
		}

		handleErr(store.Update(func(p *prefs.Preferences) {
			p.LibraryID = id
		}))
		success("Playing from %s", style.Bold(name))
	},
}
