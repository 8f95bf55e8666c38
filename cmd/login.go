package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/util"
	"github.com/jellytok/jellytok/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var errLoginFailed = errors.New("Login failed. Check URL and credentials.")

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("server", "s", "", "Server URL, e.g. https://media.example.com")
	loginCmd.Flags().StringP("username", "u", "", "User name")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a Jellyfin server",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := prefs.Shared()
		handleErr(err)
		current := store.Get()

		server := lo.Must(cmd.Flags().GetString("server"))
		if server == "" {
			handleErr(survey.AskOne(&survey.Input{
				Message: "Server URL",
				Default: current.ServerURL,
			}, &server, survey.WithValidator(survey.Required)))
		}

		client := jellyfin.New(server, "", current.DeviceID)

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout())
		defer cancel()

		erase := util.PrintErasable(icon.Get(icon.Progress) + " Connecting to " + client.BaseURL)
		info, err := version.Server(ctx, client)
		erase()
		if err != nil {
			log.Error(err)
			handleErr(fmt.Errorf("%w (%v)", errLoginFailed, err))
		}
		handleErr(version.CheckServer(info.Version))

		username := lo.Must(cmd.Flags().GetString("username"))
		if username == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Username"}, &username, survey.WithValidator(survey.Required)))
		}

		var password string
		handleErr(survey.AskOne(&survey.Password{Message: "Password"}, &password))

		user, err := client.Authenticate(ctx, username, password)
		if err != nil {
			log.Error(err)
			handleErr(errLoginFailed)
		}

		handleErr(store.Update(func(p *prefs.Preferences) {
			if p.ServerURL != client.BaseURL {
				// library ids are per server
				p.LibraryID = ""
			}
			p.ServerURL = client.BaseURL
			p.User = user
		}))

		success("Signed in to %s as %s", info.ServerName, user.Name)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the access token",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := prefs.Shared()
		handleErr(err)

		handleErr(store.Reset())
		success("Signed out")
	},
}
