package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [definition]",
	Short: "Export the form as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph LR) of the panels in order.
With --session the completed and current panels of that session are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		def, err := env.LoadDefinition(cmd.Context(), definitionPath(args))
		if err != nil {
			return err
		}
		out, err := env.Graph(cmd.Context(), def, sessionID)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Overlay the progress of this session")
}
