package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/progressforms/internal/cli"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [definition]",
	Short: "Start the MCP server",
	Long: `Exposes the form to MCP clients through the start_session, form_status,
advance, retreat and jump tools. Uses stdio unless --sse is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sse, _ := cmd.Flags().GetBool("sse")
		port, _ := cmd.Flags().GetInt("port")

		def, err := env.LoadDefinition(cmd.Context(), definitionPath(args))
		if err != nil {
			return err
		}
		return env.ServeMCP(cmd.Context(), def, cli.MCPOptions{SSE: sse, Port: port})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().IntP("port", "p", 0, "Port for SSE (default from config, 8080)")
}
