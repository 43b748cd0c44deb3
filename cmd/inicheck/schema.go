package main

import (
	"github.com/aretw0/inicheck/internal/cli"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Describe the master schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.Output, _ = cmd.Flags().GetString("output")
		return cli.RunSchema(opts)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("output", "o", cli.OutputText, "Output format: text, yaml or json")
}
