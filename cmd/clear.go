package cmd

import (
	"fmt"

	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/util"
	"github.com/jellytok/jellytok/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type clearable struct {
	name string
	flag string
	path func() string
}

var clearables = []clearable{
	{"Cache", "cache", where.Cache},
	{"Logs", "logs", where.Logs},
	{"Temporary files", "temp", where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, c := range clearables {
		clearCmd.Flags().BoolP(c.flag, c.flag[:1], false, "Clear "+c.name)
	}
	clearCmd.Flags().Bool("all", false, "Clear everything above")
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached and temporary files",
	Long:  "Remove cached and temporary files. Preferences are kept, use logout to sign out.",
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		targets := lo.Filter(clearables, func(c clearable, _ int) bool {
			return all || lo.Must(cmd.Flags().GetBool(c.flag))
		})

		if len(targets) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, c := range targets {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), c.name))
			err := util.Delete(c.path())
			erase()
			handleErr(err)
			success("%s cleared", c.name)
		}
	},
}
