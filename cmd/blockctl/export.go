package main

import (
	"github.com/spf13/cobra"

	blockscmd "github.com/goliatone/go-blockbuilder/internal/commands/blocks"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export <id...>",
	Short: "Export blocks to a portable document",
	Args:  cobra.MinimumNArgs(1),
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
		handler := blockscmd.NewExportBlocksHandler(module.Sync, provider)
		return handler.Execute(cmd.Context(), blockscmd.ExportBlocksCommand{
			IDs:  args,
			Path: flagExportOut,
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "blocks-export.json", "output file")
}
