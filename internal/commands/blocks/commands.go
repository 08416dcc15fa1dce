// Package blockscmd exposes the block lifecycle operations as go-command
// messages so hosts can dispatch them over whatever bus they already run.
package blockscmd

import (
	"context"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
	"github.com/goliatone/go-blockbuilder/internal/commands"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

const (
	syncMessageType      = "blockbuilder.blocks.sync"
	importMessageType    = "blockbuilder.blocks.import"
	exportMessageType    = "blockbuilder.blocks.export"
	duplicateMessageType = "blockbuilder.blocks.duplicate"
	trashMessageType     = "blockbuilder.blocks.trash"
)

// SyncBlocksCommand applies snapshot files to storage. Empty Slugs means
// every snapshot found.
type SyncBlocksCommand struct {
	Slugs []string
}

// Type implements command.Message.
func (SyncBlocksCommand) Type() string { return syncMessageType }

// Validate satisfies command.Message.
func (c SyncBlocksCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Slugs, validation.Each(validation.Required)),
	)
}

// ImportBlocksCommand imports block definitions from a portable document on
// disk.
type ImportBlocksCommand struct {
	Path string
}

// Type implements command.Message.
func (ImportBlocksCommand) Type() string { return importMessageType }

// Validate satisfies command.Message.
func (c ImportBlocksCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ExportBlocksCommand exports the selected blocks to a portable document on
// disk.
type ExportBlocksCommand struct {
	IDs  []string
	Path string
}

// Type implements command.Message.
func (ExportBlocksCommand) Type() string { return exportMessageType }

// Validate satisfies command.Message.
func (c ExportBlocksCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.IDs, validation.Required, validation.Each(is.UUID)),
		validation.Field(&c.Path, validation.Required),
	)
}

// DuplicateBlockCommand copies a block into a fresh draft.
type DuplicateBlockCommand struct {
	ID string
}

// Type implements command.Message.
func (DuplicateBlockCommand) Type() string { return duplicateMessageType }

// Validate satisfies command.Message.
func (c DuplicateBlockCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required, is.UUID),
	)
}

// TrashBlockCommand moves a block to the trash status and removes its
// snapshot file.
type TrashBlockCommand struct {
	ID string
}

// Type implements command.Message.
func (TrashBlockCommand) Type() string { return trashMessageType }

// Validate satisfies command.Message.
func (c TrashBlockCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required, is.UUID),
	)
}

// NewSyncBlocksHandler wires SyncBlocksCommand to the sync engine.
func NewSyncBlocksHandler(engine *blocks.SyncEngine, provider interfaces.LoggerProvider) *commands.Handler[SyncBlocksCommand] {
	logger := commands.CommandLogger(provider, "blocks")
	return commands.NewHandler(func(ctx context.Context, msg SyncBlocksCommand) error {
		outcome := engine.Sync(ctx, msg.Slugs...)
		if len(outcome.Failed) > 0 {
			return outcomeError("sync", outcome)
		}
		return nil
	},
		commands.WithLogger[SyncBlocksCommand](logger),
		commands.WithOperation[SyncBlocksCommand]("blocks.sync"),
	)
}

// NewImportBlocksHandler wires ImportBlocksCommand to the sync engine.
func NewImportBlocksHandler(engine *blocks.SyncEngine, provider interfaces.LoggerProvider) *commands.Handler[ImportBlocksCommand] {
	logger := commands.CommandLogger(provider, "blocks")
	return commands.NewHandler(func(ctx context.Context, msg ImportBlocksCommand) error {
		file, err := os.Open(msg.Path)
		if err != nil {
			return &blocks.IOError{Op: "open", Path: msg.Path, Err: err}
		}
		defer file.Close()

		outcome, err := engine.Import(ctx, file)
		if err != nil {
			return err
		}
		if len(outcome.Failed) > 0 {
			return outcomeError("import", outcome)
		}
		return nil
	},
		commands.WithLogger[ImportBlocksCommand](logger),
		commands.WithOperation[ImportBlocksCommand]("blocks.import"),
	)
}

// NewExportBlocksHandler wires ExportBlocksCommand to the sync engine.
func NewExportBlocksHandler(engine *blocks.SyncEngine, provider interfaces.LoggerProvider) *commands.Handler[ExportBlocksCommand] {
	logger := commands.CommandLogger(provider, "blocks")
	return commands.NewHandler(func(ctx context.Context, msg ExportBlocksCommand) error {
		ids := make([]uuid.UUID, 0, len(msg.IDs))
		for _, raw := range msg.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("blocks command: invalid id %q: %w", raw, err)
			}
			ids = append(ids, id)
		}

		file, err := os.Create(msg.Path)
		if err != nil {
			return &blocks.IOError{Op: "create", Path: msg.Path, Err: err}
		}
		defer file.Close()

		return engine.Export(ctx, ids, file)
	},
		commands.WithLogger[ExportBlocksCommand](logger),
		commands.WithOperation[ExportBlocksCommand]("blocks.export"),
	)
}

// NewDuplicateBlockHandler wires DuplicateBlockCommand to the sync engine.
func NewDuplicateBlockHandler(engine *blocks.SyncEngine, provider interfaces.LoggerProvider) *commands.Handler[DuplicateBlockCommand] {
	logger := commands.CommandLogger(provider, "blocks")
	return commands.NewHandler(func(ctx context.Context, msg DuplicateBlockCommand) error {
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			return fmt.Errorf("blocks command: invalid id %q: %w", msg.ID, err)
		}
		_, err = engine.Duplicate(ctx, id)
		return err
	},
		commands.WithLogger[DuplicateBlockCommand](logger),
		commands.WithOperation[DuplicateBlockCommand]("blocks.duplicate"),
	)
}

// NewTrashBlockHandler wires TrashBlockCommand to the sync engine.
func NewTrashBlockHandler(engine *blocks.SyncEngine, provider interfaces.LoggerProvider) *commands.Handler[TrashBlockCommand] {
	logger := commands.CommandLogger(provider, "blocks")
	return commands.NewHandler(func(ctx context.Context, msg TrashBlockCommand) error {
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			return fmt.Errorf("blocks command: invalid id %q: %w", msg.ID, err)
		}
		_, err = engine.Trash(ctx, id)
		return err
	},
		commands.WithLogger[TrashBlockCommand](logger),
		commands.WithOperation[TrashBlockCommand]("blocks.trash"),
	)
}

func outcomeError(op string, outcome *blocks.Outcome) error {
	first := outcome.Failed[0]
	return fmt.Errorf("blocks command: %s finished with %d failure(s), first %q: %w",
		op, len(outcome.Failed), first.Slug, first.Err)
}
