package cmd

import (
	"os"

	"github.com/jellytok/jellytok/color"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type location struct {
	name   string
	flag   string
	short  mo.Option[string]
	path   func() string
	hidden bool
}

var locations = []location{
	{"Config", "config", mo.Some("c"), where.Config, false},
	{"Preferences", "preferences", mo.Some("p"), where.Preferences, false},
	{"Logs", "logs", mo.Some("l"), where.Logs, false},
	{"Cache", "cache", mo.None[string](), where.Cache, true},
	{"Temp", "temp", mo.None[string](), where.Temp, true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, l := range locations {
		usage := "Print the " + l.name + " path"
		if short, ok := l.short.Get(); ok {
			whereCmd.Flags().BoolP(l.flag, short, false, usage)
		} else {
			whereCmd.Flags().Bool(l.flag, false, usage)
		}

		if l.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(l.flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(locations, func(l location, _ int) string { return l.flag })...)
	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where files are kept",
	Run: func(cmd *cobra.Command, args []string) {
		if l, ok := lo.Find(locations, func(l location) bool {
			return lo.Must(cmd.Flags().GetBool(l.flag))
		}); ok {
			cmd.Println(l.path())
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(locations, func(l location, _ int) bool { return l.hidden })

		for i, l := range visible {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n", header(l.name+"?"), style.Fg(color.Yellow)("--"+l.flag))
			cmd.Println(l.path())
		}
	},
}
