// Package migrations holds the versioned schema migrations for the note
// store. SQL migrations are embedded by the database package; Go migrations
// register themselves here and are compiled into the binary.
package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upLegacyRebuild, downLegacyRebuild)
}

// Version 2 historically dropped and recreated the notes table for
// installations predating the schema version table. That destructive rebuild
// is retired: it ran after later migrations and would have wiped objects they
// had just created. The version number is kept so existing installations at
// version 2 or above line up with the ladder.
func upLegacyRebuild(ctx context.Context, tx *sql.Tx) error {
	return nil
}

func downLegacyRebuild(ctx context.Context, tx *sql.Tx) error {
	return nil
}
