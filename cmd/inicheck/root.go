package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/inicheck/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inicheck",
	Short: "inicheck validates configuration files against a master schema",
	Long: `inicheck type-casts and validates section/item configuration (INI, YAML,
TOML, JSON or HCL) against a declarative master schema, reporting every
item that fails and optionally writing back the normalized values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// The report already explains an invalid configuration.
		if !errors.Is(err, cli.ErrInvalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("schema", "s", "master.yaml", "Master schema file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("redis", "", "Redis address to stage the configuration in (e.g. localhost:6379)")
	rootCmd.PersistentFlags().String("redis-prefix", "inicheck:config:", "Key prefix for the staged configuration")
}

// commonOptions reads the persistent flags.
func commonOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	schemaPath, _ := flags.GetString("schema")
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	redisAddr, _ := flags.GetString("redis")
	redisPrefix, _ := flags.GetString("redis-prefix")

	return cli.Options{
		SchemaPath:  schemaPath,
		LogLevel:    level,
		LogFormat:   format,
		RedisAddr:   redisAddr,
		RedisPrefix: redisPrefix,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	}
}
