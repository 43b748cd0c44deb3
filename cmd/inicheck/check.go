package main

import (
	"context"

	"github.com/aretw0/inicheck/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <config>",
	Short: "Validate a configuration file",
	Long: `Checks every item of the configuration against the master schema and
prints a report. Exits with status 1 when any item fails.

With --write, the normalized configuration is written to the given file, in
the format named by its extension. With --watch, the check reruns whenever
the configuration or the schema changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.ConfigPath = args[0]
		opts.WritePath, _ = cmd.Flags().GetString("write")
		opts.Output, _ = cmd.Flags().GetString("output")
		watch, _ := cmd.Flags().GetBool("watch")

		if !watch {
			return cli.RunCheck(cmd.Context(), opts)
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunWatch(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("output", "o", cli.OutputText, "Report format: text, json or yaml")
	checkCmd.Flags().StringP("write", "w", "", "Write the normalized configuration to this file")
	checkCmd.Flags().Bool("watch", false, "Rerun the check when the configuration or schema changes")
}
