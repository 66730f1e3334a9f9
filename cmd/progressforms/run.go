package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aretw0/progressforms/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run [definition]",
	Short: "Walk through a form in the terminal",
	Long: `Loads the form definition and starts an interactive session.
Commands are read one per line, e.g. "next", "back", "set email ana@example.com" or "goto 2".
Use --tui for the full-screen wizard or --json for NDJSON input and output.
With --session the progress is stored and resumed on the next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		tuiMode, _ := cmd.Flags().GetBool("tui")
		sessionID, _ := cmd.Flags().GetString("session")
		pairs, _ := cmd.Flags().GetStringArray("set")

		if jsonMode && tuiMode {
			return errors.New("--json and --tui are mutually exclusive")
		}
		mode := cli.ModeText
		switch {
		case jsonMode:
			mode = cli.ModeJSON
		case tuiMode:
			mode = cli.ModeTUI
		}

		values, err := cli.ParseValues(pairs)
		if err != nil {
			return err
		}

		def, err := env.LoadDefinition(cmd.Context(), definitionPath(args))
		if err != nil {
			return err
		}

		err = env.Run(cmd.Context(), def, cli.RunOptions{
			Mode:      mode,
			SessionID: sessionID,
			Values:    values,
			Stdin:     cmd.InOrStdin(),
			Stdout:    cmd.OutOrStdout(),
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("json", false, "Read commands and write views as JSON lines")
	runCmd.Flags().Bool("tui", false, "Use the full-screen wizard")
	runCmd.Flags().StringP("session", "s", "", "Persist and resume progress under this session ID")
	runCmd.Flags().StringArray("set", nil, "Seed a field value (name=value), repeatable")
}
