package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored blocks and their sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		module, cleanup, err := newModule(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		collection, err := module.Blocks.CollectionFromQuery(cmd.Context(), blocks.ListCriteria{ExcludeTrashed: true}, false)
		if err != nil {
			return err
		}

		for _, block := range collection.Items() {
			status, err := module.Sync.Status(cmd.Context(), block.Slug)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", block.ID, block.Slug, block.Status, status)
		}

		missing, err := module.Sync.Missing(cmd.Context())
		if err != nil {
			return err
		}
		for _, block := range missing.Items() {
			fmt.Fprintf(cmd.OutOrStdout(), "-\t%s\t%s\t%s\n", block.Slug, block.Status, blocks.SyncStatusAwaitingImport)
		}
		return nil
	},
}
