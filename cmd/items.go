package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/jellytok/jellytok/filesystem"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/internal/cache"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/stream"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/util"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Item is one video of the feed as printed by the items command.
type Item struct {
	ID       string  `json:"id" jsonschema:"description=Item id on the server."`
	Name     string  `json:"name"`
	Subtitle string  `json:"subtitle,omitempty" jsonschema:"description=Series and production year."`
	Runtime  float64 `json:"runtime,omitempty" jsonschema:"description=Duration in seconds when known."`
	Favorite bool    `json:"favorite"`
	Kind     string  `json:"kind" jsonschema:"enum=direct,enum=adaptive"`
	URL      string  `json:"url" jsonschema:"description=Playable stream URL. Contains the access token."`
	Image    string  `json:"image,omitempty" jsonschema:"description=Primary image URL."`
	Poster   string  `json:"poster,omitempty" jsonschema:"description=Path of the downloaded primary image."`
}

// Output is the JSON document written by items --json.
type Output struct {
	Server    string            `json:"server"`
	LibraryID string            `json:"libraryId,omitempty"`
	Filters   []jellyfin.Filter `json:"filters"`
	Sort      jellyfin.SortMode `json:"sort"`
	Items     []*Item           `json:"items"`
}

func newOutput(p prefs.Preferences, client *jellyfin.Client, items []*jellyfin.Item, opts stream.Options) *Output {
	return &Output{
		Server:    p.ServerURL,
		LibraryID: p.LibraryID,
		Filters:   lo.Ternary(p.Filters.Selected == nil, []jellyfin.Filter{}, p.Filters.Selected),
		Sort:      p.Filters.Sorting,
		Items: lo.Map(items, func(item *jellyfin.Item, _ int) *Item {
			src := stream.Resolve(item, opts, false)
			return &Item{
				ID:       item.ID,
				Name:     item.Name,
				Subtitle: item.Subtitle(),
				Runtime:  item.Runtime(),
				Favorite: item.UserData.IsFavorite,
				Kind:     src.Kind.String(),
				URL:      src.URL,
				Image:    client.ImageURL(item.ID, item.ImageTags.Primary),
			}
		}),
	}
}

// downloadPosters saves the primary image of every item that has one under dir.
func downloadPosters(ctx context.Context, client *jellyfin.Client, items []*jellyfin.Item, out *Output, dir string) error {
	if err := filesystem.API().MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(4)
	for i, item := range items {
		if item.ImageTags.Primary == "" {
			continue
		}

		p.Go(func(ctx context.Context) error {
			data, err := client.Image(ctx, item.ID, item.ImageTags.Primary)
			if err != nil {
				return fmt.Errorf("poster of %s: %w", item.Name, err)
			}

			path := filepath.Join(dir, item.ID+".jpg")
			if err := filesystem.API().WriteFile(path, data, 0o644); err != nil {
				return err
			}

			out.Items[i].Poster = path
			return nil
		})
	}

	return p.Wait()
}

func printItems(w io.Writer, out *Output, showURLs bool) {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}
	cut := style.Truncate(width)

	for i, item := range out.Items {
		heart := lo.Ternary(item.Favorite, style.Fg(style.LikedColor)(icon.Get(icon.Heart)), " ")
		line := fmt.Sprintf("%3d %s %s %s", i, heart, style.Bold(item.Name), style.Faint(item.Subtitle))
		if item.Runtime > 0 {
			line += " " + style.Faint(util.Clock(item.Runtime))
		}
		_, _ = fmt.Fprintln(w, cut(line))

		if showURLs {
			_, _ = fmt.Fprintln(w, "    "+cut(style.Faint(item.Kind+" "+item.URL)))
		}
	}
}

func init() {
	rootCmd.AddCommand(itemsCmd)

	itemsCmd.Flags().IntP("start", "s", 0, "Index of the first item")
	itemsCmd.Flags().IntP("limit", "l", jellyfin.DefaultPageSize, "Number of items to fetch")
	itemsCmd.Flags().BoolP("json", "j", false, "Print the items as JSON")
	itemsCmd.Flags().BoolP("posters", "p", false, "Download the primary images to the cache directory")
	itemsCmd.Flags().BoolP("urls", "u", false, "Print the stream URL under every item")
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Print a page of the feed with the current filters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := loggedIn().Get()
		client := p.Client()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout())
		defer cancel()

		items, err := client.Items(ctx, jellyfin.Query{
			UserID:     p.UserID(),
			LibraryID:  p.LibraryID,
			Filters:    p.Filters.Selected,
			Sort:       p.Filters.Sorting,
			StartIndex: lo.Must(cmd.Flags().GetInt("start")),
			Limit:      lo.Must(cmd.Flags().GetInt("limit")),
		})
		handleErr(err)

		out := newOutput(p, client, items, p.StreamOptions(viper.GetString(key.PlayerForceAudioCodec)))

		if lo.Must(cmd.Flags().GetBool("posters")) {
			handleErr(downloadPosters(ctx, client, items, out, cache.Posters()))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(out))
			return
		}

		printItems(os.Stdout, out, lo.Must(cmd.Flags().GetBool("urls")) || viper.GetBool(key.TUIShowURLs))
	},
}

func init() {
	itemsCmd.AddCommand(itemsSchemaCmd)
}

var itemsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of items --json",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			if strings.EqualFold(t.Name(), "item") || strings.EqualFold(t.Name(), "output") {
				return filepath.Base(t.PkgPath()) + "." + t.Name()
			}
			return t.Name()
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&Output{})))
	},
}
