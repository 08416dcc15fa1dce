package blocks

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the block tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Block)(nil),
		(*Version)(nil),
		(*Pattern)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("blocks: create table for %T: %w", model, err)
		}
	}

	// Slug uniqueness only binds active records; a trashed block releases its
	// slug for reuse.
	if _, err := db.NewCreateIndex().
		Model((*Block)(nil)).
		Index("ux_blocks_slug_active").
		Unique().
		IfNotExists().
		Column("slug").
		Where("status != 'trash'").
		Exec(ctx); err != nil {
		return fmt.Errorf("blocks: create slug index: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*Version)(nil)).
		Index("ix_block_versions_block_id").
		IfNotExists().
		Column("block_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("blocks: create version index: %w", err)
	}

	return nil
}
