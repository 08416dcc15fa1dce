package main

import (
	"github.com/spf13/cobra"

	blockscmd "github.com/goliatone/go-blockbuilder/internal/commands/blocks"
)

var syncCmd = &cobra.Command{
	Use:   "sync [slug...]",
	Short: "Apply snapshot files to storage",
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
		handler := blockscmd.NewSyncBlocksHandler(module.Sync, provider)
		return handler.Execute(cmd.Context(), blockscmd.SyncBlocksCommand{Slugs: args})
	},
}
