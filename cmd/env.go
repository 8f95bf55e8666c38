package cmd

import (
	"os"
	"strings"

	"github.com/jellytok/jellytok/color"
	"github.com/jellytok/jellytok/config"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// envNames lists every variable the configuration reads, sorted.
func envNames() []string {
	names := lo.Map(config.EnvExposed, func(k string, _ int) string {
		return strings.ToUpper(constant.App + "_" + config.EnvKeyReplacer.Replace(k))
	})
	names = append(names, where.EnvConfigPath)
	slices.Sort(names)
	return slices.Compact(names)
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are not set")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the environment variables that override the config file",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
			name      = style.New().Bold(true).Foreground(color.Purple).Render
		)

		for _, env := range envNames() {
			value, set := os.LookupEnv(env)
			if (setOnly && !set) || (unsetOnly && set) {
				continue
			}

			cmd.Println(name(env) + "=" + lo.Ternary(set, style.Fg(color.Green)(value), style.Fg(color.Red)("unset")))
		}
	},
}
