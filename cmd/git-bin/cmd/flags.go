// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/gitbin/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type flagsT struct {
	root struct {
		configFile string
		logLevel   string
		cacheDir   string
		remote     string
		cpuProfile string
		memProfile string
	}
	status struct {
		withRemote bool
	}
	clear struct {
		dryRun bool
		force  bool
	}
}

var gitbinFlags = flagsT{}

// rootBindings maps persistent flags to the configuration key they override
var rootBindings = map[string]string{}

func addConfigFileFlag(cmd *cobra.Command) string {
	configFile := "config"
	cmd.PersistentFlags().StringVar(&gitbinFlags.root.configFile, configFile, "",
		"A configuration file (yaml, toml or json), overridden by git config and the environment")
	return configFile
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "log-level"
	cmd.PersistentFlags().StringVar(&gitbinFlags.root.logLevel, logLevel, "",
		"The logging level: debug, info, warn, error or none. Logs go to stderr")
	rootBindings[logLevel] = config.KeyLogLevel
	return logLevel
}

func addCacheDirFlag(cmd *cobra.Command) string {
	cacheDir := "cache-dir"
	cmd.PersistentFlags().StringVar(&gitbinFlags.root.cacheDir, cacheDir, "",
		"The chunk cache directory. Relative paths are resolved against the .git directory")
	rootBindings[cacheDir] = config.KeyCacheDirectory
	return cacheDir
}

func addRemoteFlag(cmd *cobra.Command) string {
	remote := "remote"
	cmd.PersistentFlags().StringVar(&gitbinFlags.root.remote, remote, "",
		"The kind of remote: s3, gcs or local")
	rootBindings[remote] = config.KeyRemote
	return remote
}

func addProfileFlags(cmd *cobra.Command) {
	cpuProfile, memProfile := "cpu-profile", "mem-profile"
	cmd.PersistentFlags().StringVar(&gitbinFlags.root.cpuProfile, cpuProfile, "", "Write a CPU profile to this file")
	cmd.PersistentFlags().StringVar(&gitbinFlags.root.memProfile, memProfile, "", "Write a heap profile to this file on exit")
	_ = cmd.PersistentFlags().MarkHidden(cpuProfile)
	_ = cmd.PersistentFlags().MarkHidden(memProfile)
}

func addWithRemoteFlag(cmd *cobra.Command) string {
	withRemote := "remote-status"
	cmd.Flags().BoolVarP(&gitbinFlags.status.withRemote, withRemote, "r", false,
		"Also report the content of the remote, and what is left to push")
	return withRemote
}

func addDryRunFlag(cmd *cobra.Command) string {
	dryRun := "dry-run"
	cmd.Flags().BoolVarP(&gitbinFlags.clear.dryRun, dryRun, "n", false, "Only report what would be removed")
	return dryRun
}

func addForceFlag(cmd *cobra.Command) string {
	force := "force"
	cmd.Flags().BoolVarP(&gitbinFlags.clear.force, force, "f", false, "Actually remove chunks from the cache")
	return force
}

// bindRootFlags lets flags set on the command line take precedence over any other source
func bindRootFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range rootBindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
