package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/jellytok/jellytok/color"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"accent": style.Fg(color.Purple),
}).Parse(`{{ accent "▶" }} {{ accent .App }}

  {{ faint "Version" }}     {{ bold .Version }}
  {{ faint "Revision" }}    {{ bold .Revision }}
  {{ faint "Built at" }}    {{ bold .BuiltAt }}
  {{ faint "Built by" }}    {{ bold .BuiltBy }}
  {{ faint "Platform" }}    {{ bold .Platform }}
  {{ faint "Server" }}      {{ bold .MinServer }} or newer
`))

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), map[string]string{
			"App":       constant.App,
			"Version":   constant.Version,
			"Revision":  constant.Revision,
			"BuiltAt":   strings.TrimSpace(constant.BuiltAt),
			"BuiltBy":   constant.BuiltBy,
			"Platform":  runtime.GOOS + "/" + runtime.GOARCH,
			"MinServer": constant.MinServerVersion,
		}))
	},
}
