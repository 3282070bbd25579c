package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shady/internal/evalorder"
)

var evalorderCmd = &cobra.Command{
	Use:   "evalorder",
	Short: "Print the argument evaluation order discovered at startup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), evalorder.Detect())
		return err
	},
}
