package main

import (
	"github.com/spf13/cobra"

	blockscmd "github.com/goliatone/go-blockbuilder/internal/commands/blocks"
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a block into a fresh draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, cleanup, err := newModule(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		provider, err := newLoggerProvider()
		if err != nil {
			return err
		}
		handler := blockscmd.NewDuplicateBlockHandler(module.Sync, provider)
		return handler.Execute(cmd.Context(), blockscmd.DuplicateBlockCommand{ID: args[0]})
	},
}
