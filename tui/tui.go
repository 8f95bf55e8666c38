// Package tui is the terminal interface of the feed: one video at a time,
// swiped with the arrow keys, played by a small pool of mpv processes.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/loop"
	"github.com/jellytok/jellytok/open"
	"github.com/jellytok/jellytok/player"
	"github.com/jellytok/jellytok/prefs"
	"github.com/spf13/viper"
)

// Options configures Run.
type Options struct {
	// Store holds a signed in session.
	Store *prefs.Store
}

func playerOptions() player.Options {
	return player.Options{
		Binary:        viper.GetString(key.PlayerBinary),
		Loop:          viper.GetBool(key.PlayerLoop),
		ExtraArgs:     viper.GetStringSlice(key.PlayerExtraArgs),
		SocketRetries: viper.GetInt(key.PlayerSocketRetries),
	}
}

// Run shows the feed until the user quits.
func Run(options *Options) error {
	pool := player.NewPool(player.DefaultPoolSize, func(ctx context.Context) (player.Surface, error) {
		mpv, err := player.StartMPV(ctx, playerOptions())
		if err != nil {
			return nil, err
		}
		return mpv, nil
	})

	var program *tea.Program
	lp := loop.New(func(fn func()) { program.Send(loopMsg(fn)) })

	bubble := newBubble(options, environment{
		loop:     lp,
		catalog:  options.Store.Get().Client(),
		surfaces: pool,
		open:     open.Start,
		connect:  func(p prefs.Preferences) catalog { return p.Client() },
	})
	program = tea.NewProgram(bubble, tea.WithAltScreen())

	_, err := program.Run()

	bubble.shutdown()
	lp.Close()
	return errors.Join(err, pool.Close())
}
