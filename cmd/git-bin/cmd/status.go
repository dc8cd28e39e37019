package cmd

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/core"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the content of the local cache",
	Long: `Reports the number of chunks held in the local cache and their total size.

With -r, also reports the content of the remote and what is left to push.
`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		usage := noRemote
		if gitbinFlags.status.withRemote {
			usage = requireRemote
		}
		engine, err := env.engine(cmd.Context(), usage, nil)
		if err != nil {
			return err
		}

		report, err := engine.Status(cmd.Context(), gitbinFlags.status.withRemote)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, statusTable(report))
		return err
	},
}

func statusTable(report core.StatusReport) *uitable.Table {
	table := uitable.New()
	section := func(title string, s chunk.Summary) {
		table.AddRow(title)
		table.AddRow("  items:", s.Count)
		table.AddRow("  size:", humanSize(s.Size))
	}

	section("Local cache:", report.Local)
	if report.WithRemote {
		table.AddRow("")
		section("Remote repo:", report.Remote)
		table.AddRow("")
		section("To push:", report.ToPush)
	}
	return table
}

func init() {
	addWithRemoteFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
