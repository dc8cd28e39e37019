package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the chunks of the local cache missing from the remote",
	Long: `Uploads to the remote every chunk of the local cache which the remote does not hold yet.

Each chunk is verified against its address before being uploaded. The push stops on the first failure:
chunks uploaded before then remain on the remote.
`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		ui := newTransferUI(env.console)
		engine, err := env.engine(cmd.Context(), requireRemote, ui)
		if err != nil {
			return err
		}

		res, err := engine.Push(cmd.Context())
		ui.close()
		env.l.Info("push", zap.Int("pending", len(res.Pending)), zap.Int("uploaded", res.Uploaded))
		return err
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
