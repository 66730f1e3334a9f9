package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/progressforms"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of progressforms",
	// No configuration is needed to print the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "progressforms version %s\n", strings.TrimSpace(progressforms.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
