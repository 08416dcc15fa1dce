package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	blockbuilder "github.com/goliatone/go-blockbuilder"
	"github.com/goliatone/go-blockbuilder/internal/logging/gologger"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

// Global flag values.
var (
	flagConfig       string
	flagDatabase     string
	flagSnapshotDirs []string
	flagNamespace    string
	flagLogLevel     string
	flagLogFormat    string
)

// settings holds the resolved configuration, flags taking precedence over
// the config file. Set by PersistentPreRunE for all subcommands.
var settings struct {
	database     string
	snapshotDirs []string
	namespace    string
	logLevel     string
	logFormat    string
}

var rootCmd = &cobra.Command{
	Use:   "blockctl",
	Short: "blockctl manages block definitions and their snapshot files",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}

		settings.database = cfg.GetString(cfgKeyDatabase)
		settings.snapshotDirs = cfg.GetStringSlice(cfgKeySnapshotDirs)
		settings.namespace = cfg.GetString(cfgKeyNamespace)
		settings.logLevel = cfg.GetString(cfgKeyLogLevel)
		settings.logFormat = cfg.GetString(cfgKeyLogFormat)

		if flagDatabase != "" {
			settings.database = flagDatabase
		}
		if len(flagSnapshotDirs) > 0 {
			settings.snapshotDirs = flagSnapshotDirs
		}
		if flagNamespace != "" {
			settings.namespace = flagNamespace
		}
		if flagLogLevel != "" {
			settings.logLevel = flagLogLevel
		}
		if flagLogFormat != "" {
			settings.logFormat = flagLogFormat
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./blockctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "db", "", "SQLite database path (default: in-memory)")
	rootCmd.PersistentFlags().StringSliceVar(&flagSnapshotDirs, "snapshot-dir", nil, "snapshot directory, repeatable; first entry receives writes")
	rootCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "namespace for blocks saved without one")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (json, console, pretty)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(duplicateCmd)
	rootCmd.AddCommand(trashCmd)
}

// newModule wires a module instance from the resolved settings. The returned
// cleanup closes the database when one was opened.
func newModule(ctx context.Context) (*blockbuilder.Module, func(), error) {
	provider, err := newLoggerProvider()
	if err != nil {
		return nil, nil, err
	}

	var (
		db      *bun.DB
		cleanup = func() {}
		opts    []blockbuilder.ModuleOption
	)
	if settings.database != "" {
		db, err = blockbuilder.OpenSQLite(ctx, settings.database)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { db.Close() }
		opts = append(opts, blockbuilder.WithDB(db))
	}

	module, err := blockbuilder.New(blockbuilder.Config{
		Namespace:    settings.namespace,
		SnapshotDirs: settings.snapshotDirs,
		Logger:       provider,
	}, opts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire module: %w", err)
	}
	return module, cleanup, nil
}

func newLoggerProvider() (interfaces.LoggerProvider, error) {
	return gologger.NewProvider(gologger.Config{
		Level:  settings.logLevel,
		Format: settings.logFormat,
	})
}
