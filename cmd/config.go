package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jellytok/jellytok/color"
	"github.com/jellytok/jellytok/config"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/filesystem"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/util"
	"github.com/jellytok/jellytok/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func configFile() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// field looks up a known key and suggests the closest one otherwise.
func field(name string) (config.Field, error) {
	if f, ok := config.Default[name]; ok {
		return f, nil
	}

	closest := lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return config.Field{}, fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(name),
		style.Fg(color.Yellow)(closest),
	)
}

// parseValue converts raw arguments to the type of the field's default.
func parseValue(f config.Field, raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no value given for %s", f.Key)
	}

	switch f.Value.(type) {
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", f.Key, raw[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", f.Key, raw[0])
		}
		return b, nil
	case []string:
		return raw, nil
	default:
		return raw[0], nil
	}
}

func writeConfig() {
	err := viper.WriteConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = viper.SafeWriteConfig()
	}
	handleErr(err)
}

func completeConfigKeys(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the configuration",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().BoolP("json", "j", false, "Print the fields as JSON")
}

var configInfoCmd = &cobra.Command{
	Use:               "info [key]...",
	Short:             "Describe configuration fields",
	ValidArgsFunction: completeConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)
		if len(args) > 0 {
			fields = lo.Map(args, func(name string, _ int) config.Field {
				f, err := field(name)
				handleErr(err)
				return f
			})
		}

		sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i := range fields {
			if i > 0 {
				fmt.Print("\n\n")
			}
			fmt.Print(fields[i].Pretty())
		}
		fmt.Println()
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the current value of a key",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		_, err := field(args[0])
		handleErr(err)
		fmt.Println(viper.Get(args[0]))
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>...",
	Short:             "Change a key and save the config file",
	Example:           "  config set player.loop false\n  config set player.extra_args --mute=yes --volume=50",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		f, err := field(args[0])
		handleErr(err)

		value, err := parseValue(f, args[1:])
		handleErr(err)

		viper.Set(f.Key, value)
		writeConfig()
		success("set %s to %s", style.Fg(color.Purple)(f.Key), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key]...",
	Short:             "Restore keys to their defaults",
	ValidArgsFunction: completeConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		if !all && len(args) == 0 {
			handleErr(fmt.Errorf("name the keys to reset or pass --all"))
		}

		fields := lo.Values(config.Default)
		if !all {
			fields = lo.Map(args, func(name string, _ int) config.Field {
				f, err := field(name)
				handleErr(err)
				return f
			})
		}

		for _, f := range fields {
			viper.Set(f.Key, f.Value)
		}
		writeConfig()

		if all {
			success("reset every key")
			return
		}
		success("reset %s", style.Fg(color.Purple)(fmt.Sprint(args)))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile()
		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(util.Delete(path))
		}

		handleErr(viper.SafeWriteConfig())
		success("wrote config to %s", path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Delete the config file",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		success("deleted config")
	},
}
