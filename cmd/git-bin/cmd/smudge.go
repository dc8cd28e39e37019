package cmd

import (
	"bufio"

	"github.com/oneconcern/gitbin/pkg/manifest"
	"github.com/spf13/cobra"
)

var smudgeCmd = &cobra.Command{
	Use:   "smudge [file]",
	Short: "Read a manifest from stdin, and write the content it describes to stdout",
	Long: `Reads a manifest from stdin, downloads the chunks missing from the local cache
and writes the reassembled content to stdout.

This is the smudge filter of git. The remote is only required when some chunks are missing.
`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		m, err := manifest.Read(stdin)
		if err != nil {
			return err
		}

		ui := newTransferUI(env.console)
		engine, err := env.engine(cmd.Context(), lazyRemote, ui)
		if err != nil {
			return err
		}

		out := bufio.NewWriter(stdout)
		err = engine.Smudge(cmd.Context(), m, out)
		ui.close()
		if err != nil {
			return err
		}
		return out.Flush()
	},
}

func init() {
	rootCmd.AddCommand(smudgeCmd)
}
