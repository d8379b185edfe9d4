package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viewck/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Describe a diagnostic code, e.g. SEM3103",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, ok := diag.ParseCode(args[0])
		if !ok {
			return fmt.Errorf("unknown diagnostic code %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n\n%s\n", code.ID(), code.Title(), code.Help())
		return nil
	},
}
