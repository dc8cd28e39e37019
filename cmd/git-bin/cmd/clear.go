package cmd

import (
	"fmt"

	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all chunks from the local cache",
	Long: `Removes all chunks from the local cache.

Exactly one of -n (dry run: only report what would be removed) or -f (actually remove) is required.
Chunks which were not pushed are lost.
`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, force := gitbinFlags.clear.dryRun, gitbinFlags.clear.force
		if dryRun == force {
			return status.ErrArgument.Wrap(fmt.Errorf("clear command requires either -n or -f"))
		}

		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		engine, err := env.engine(cmd.Context(), noRemote, nil)
		if err != nil {
			return err
		}

		removed, err := engine.Clear(cmd.Context(), dryRun)
		if dryRun {
			if err != nil {
				return err
			}
			env.console.Printf("clear dry run: would remove %s", describe(removed))
			return nil
		}
		// a partial clear still reports what was removed
		env.console.Printf("removed %s", describe(removed))
		return err
	},
}

func init() {
	addDryRunFlag(clearCmd)
	addForceFlag(clearCmd)
	rootCmd.AddCommand(clearCmd)
}
