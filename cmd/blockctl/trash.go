package main

import (
	"github.com/spf13/cobra"

	blockscmd "github.com/goliatone/go-blockbuilder/internal/commands/blocks"
)

var trashCmd = &cobra.Command{
	Use:   "trash <id>",
	Short: "Move a block to the trash and remove its snapshot",
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
		handler := blockscmd.NewTrashBlockHandler(module.Sync, provider)
		return handler.Execute(cmd.Context(), blockscmd.TrashBlockCommand{ID: args[0]})
	},
}
