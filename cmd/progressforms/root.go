package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/progressforms/internal/cli"
)

// env is set up before every command that needs configuration.
var env *cli.Env

var rootCmd = &cobra.Command{
	Use:   "progressforms",
	Short: "Progressforms drives multi-step forms from a definition",
	Long: `Progressforms loads a multi-step form definition (YAML, TOML, JSON or a directory
of Markdown panels) and lets users walk through it from the terminal, over HTTP or
through MCP tools, validating each panel before moving on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		level, _ := cmd.Flags().GetString("log-level")
		e, err := cli.Setup(configPath, level)
		if err != nil {
			return err
		}
		env = e
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if env == nil {
			return nil
		}
		return env.Close()
	},
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if env != nil {
		_ = env.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default progressforms.{yaml,toml,json})")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// definitionPath returns the definition argument, or the working directory.
func definitionPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
