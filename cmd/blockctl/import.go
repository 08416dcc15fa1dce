package main

import (
	"github.com/spf13/cobra"

	blockscmd "github.com/goliatone/go-blockbuilder/internal/commands/blocks"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import blocks from a portable document",
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
		handler := blockscmd.NewImportBlocksHandler(module.Sync, provider)
		return handler.Execute(cmd.Context(), blockscmd.ImportBlocksCommand{Path: args[0]})
	},
}
