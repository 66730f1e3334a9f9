package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definition]",
	Short: "Check a form definition for consistency",
	Long: `Loads the definition and reports duplicate IDs, empty groups, group members
without a field, unknown named validators and scripts that do not compile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := definitionPath(args)
		def, problems := env.Check(cmd.Context(), path)
		out := cmd.OutOrStdout()
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintf(out, "  - %v\n", p)
			}
			return fmt.Errorf("%s: %d problem(s) found", path, len(problems))
		}
		fmt.Fprintf(out, "Form %q is valid (%d panels)\n", def.Form.ID, len(def.Form.Panels))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
