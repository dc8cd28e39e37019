// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oneconcern/gitbin/internal"
	"github.com/oneconcern/gitbin/pkg/config"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "git-bin",
	Short: "git-bin stores large files outside of git",
	Long: `git-bin stores large files outside of git.

Files are split in chunks, each stored under the SHA-256 of its content in a local cache,
and pushed to a remote (S3, GCS or a local directory). Git only tracks a small manifest,
produced by the clean filter and expanded back by the smudge filter.

Configure it as a git filter:

  git config filter.bin.clean "git-bin clean %f"
  git config filter.bin.smudge "git-bin smudge %f"
  echo "*.bin filter=bin -text" >> .gitattributes
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if gitbinFlags.root.cpuProfile == "" {
			return nil
		}
		stop, err := internal.StartCPUProfile(gitbinFlags.root.cpuProfile)
		if err != nil {
			return err
		}
		stopProfile = stop
		return nil
	},
}

// stopProfile terminates a running CPU profile
var stopProfile func() error

// used to patch over git invocations during test
var gitExecutor config.GitExecutor = config.NewGitExecutor("")

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	cancel()
	wrapFatal(err)
}

func execute(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	err = rootCmd.ExecuteContext(ctx)
	if perr := stopProfiles(); perr != nil && err == nil {
		err = perr
	}
	if err != nil && !status.Known(err) && strings.HasPrefix(err.Error(), "unknown command") {
		return status.ErrArgument.Wrap(err)
	}
	return err
}

// stopProfiles runs even when a command fails, when post-run hooks do not
func stopProfiles() error {
	var err error
	if stopProfile != nil {
		err = stopProfile()
		stopProfile = nil
	}
	if gitbinFlags.root.memProfile != "" {
		err = multierr.Append(err, internal.WriteHeapProfile(gitbinFlags.root.memProfile))
	}
	return err
}

// usageArgs reports positional argument errors as invalid arguments
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return status.ErrArgument.Wrap(err)
		}
		return nil
	}
}

func init() {
	addConfigFileFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addCacheDirFlag(rootCmd)
	addRemoteFlag(rootCmd)
	addProfileFlags(rootCmd)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return status.ErrArgument.Wrap(err)
	})
}
