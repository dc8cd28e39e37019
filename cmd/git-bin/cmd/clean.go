package cmd

import (
	"bufio"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Store the content read from stdin in the cache, and write its manifest to stdout",
	Long: `Splits the content read from stdin in chunks, stores them in the local cache
and writes the manifest describing the content to stdout.

This is the clean filter of git: the file name, as given by %f, is recorded in the manifest.
`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		engine, err := env.engine(cmd.Context(), noRemote, nil)
		if err != nil {
			return err
		}

		var filename string
		if len(args) > 0 {
			filename = args[0]
		}
		m, err := engine.Clean(cmd.Context(), filename, bufio.NewReader(stdin))
		if err != nil {
			return err
		}
		_, err = m.WriteTo(stdout)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
