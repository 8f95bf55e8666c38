// Package cmd is the command line of jellytok.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/jellytok/jellytok/color"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/tui"
	"github.com/jellytok/jellytok/util"
	"github.com/jellytok/jellytok/version"
	"github.com/jellytok/jellytok/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNotLoggedIn = errors.New("not signed in, run `" + constant.App + " login` first")

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icons variant (emoji, nerd, plain, kaomoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().Bool("show-urls", false, "Show the resolved stream URL under the active video")
	lo.Must0(viper.BindPFlag(key.TUIShowURLs, rootCmd.Flags().Lookup("show-urls")))
}

var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "A vertically swiping video feed for Jellyfin",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiPurple).Render("    - A vertically swiping video feed for Jellyfin"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies(viper.GetString(key.PlayerBinary))

		store := loggedIn()
		checkServer(store.Get())

		// sockets left behind by crashed runs
		if err := util.Delete(where.Temp()); err != nil {
			log.Warnf("clean temp: %v", err)
		}

		handleErr(tui.Run(&tui.Options{Store: store}))
	},
}

// loggedIn opens the preferences and exits unless a user is signed in.
func loggedIn() *prefs.Store {
	store, err := prefs.Shared()
	handleErr(err)

	if !store.Get().LoggedIn() {
		handleErr(errNotLoggedIn)
	}
	return store
}

// checkServer refuses servers that are too old. An unreachable server is
// only logged: the feed shows its own errors.
func checkServer(p prefs.Preferences) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout())
	defer cancel()

	info, err := version.Server(ctx, p.Client())
	if err != nil {
		log.Warnf("server info: %v", err)
		return
	}
	handleErr(version.CheckServer(info.Version))
}

func requestTimeout() time.Duration {
	if s := viper.GetInt(key.NetworkTimeout); s > 0 {
		return time.Duration(s) * time.Second
	}
	return 30 * time.Second
}

// Execute runs the command line.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}
