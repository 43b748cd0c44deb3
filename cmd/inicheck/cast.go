package main

import (
	"github.com/aretw0/inicheck/internal/cli"
	"github.com/spf13/cobra"
)

var castCmd = &cobra.Command{
	Use:   "cast <config>",
	Short: "Print the typed configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.ConfigPath = args[0]
		opts.Output, _ = cmd.Flags().GetString("output")
		return cli.RunCast(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(castCmd)
	castCmd.Flags().StringP("output", "o", cli.OutputYAML, "Output format: yaml or json")
}
