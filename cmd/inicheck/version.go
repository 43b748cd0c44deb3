package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of inicheck",
	Run: func(cmd *cobra.Command, args []string) {
		banner, _ := cmd.Flags().GetBool("banner")
		if banner {
			tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(inicheck.Version))
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inicheck version %s\n", strings.TrimSpace(inicheck.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner")
}
