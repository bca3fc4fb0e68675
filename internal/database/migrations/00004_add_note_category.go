package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddNoteCategory, downAddNoteCategory)
}

// SQLite has no ADD COLUMN IF NOT EXISTS, so the column is probed first.
// A database staged partway through an interrupted upgrade may already
// carry it.
func upAddNoteCategory(ctx context.Context, tx *sql.Tx) error {
	exists, err := columnExists(ctx, tx, "notes", "category")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `ALTER TABLE notes ADD COLUMN category TEXT`); err != nil {
		return fmt.Errorf("add category column: %w", err)
	}

	return nil
}

func downAddNoteCategory(ctx context.Context, tx *sql.Tx) error {
	exists, err := columnExists(ctx, tx, "notes", "category")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `ALTER TABLE notes DROP COLUMN category`); err != nil {
		return fmt.Errorf("drop category column: %w", err)
	}

	return nil
}

func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
