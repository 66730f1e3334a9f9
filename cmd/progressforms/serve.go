package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/progressforms/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve [definition]",
	Short: "Start the HTTP server",
	Long: `Serves the form over a JSON API: sessions are created and stepped through
with POST requests, their changes streamed over Server-Sent Events on /events.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		watch, _ := cmd.Flags().GetBool("watch")

		def, err := env.LoadDefinition(cmd.Context(), definitionPath(args))
		if err != nil {
			return err
		}
		return env.Serve(cmd.Context(), def, cli.ServeOptions{Port: port, Watch: watch})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the definition when it changes")
}
