package database

import (
	"database/sql"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Full current schema must be present: notes with category, attachments
	// with a working foreign key.
	res, err := db.Exec(
		`INSERT INTO notes (title, note, created, modified, category) VALUES (?, ?, ?, ?, ?)`,
		"t", "b", 1, 1, "work",
	)
	if err != nil {
		t.Fatalf("insert note: %v", err)
	}
	noteID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO attachments (note_id, file_type, file_path, file_name, file_size) VALUES (?, ?, ?, ?, ?)`,
		noteID, "image/png", "attachment_1_x.png", "x.png", 1,
	); err != nil {
		t.Fatalf("insert attachment: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO attachments (note_id, file_type, file_path, file_name, file_size) VALUES (?, ?, ?, ?, ?)`,
		noteID+100, "image/png", "attachment_2_x.png", "x.png", 1,
	); err == nil {
		t.Fatal("expected foreign key violation for dangling note_id")
	}
}

func TestCascadeDeletesAttachmentRows(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	res, _ := db.Exec(`INSERT INTO notes (title, note, created, modified) VALUES ('t', 'b', 1, 1)`)
	noteID, _ := res.LastInsertId()
	if _, err := db.Exec(
		`INSERT INTO attachments (note_id, file_type, file_path, file_name, file_size) VALUES (?, 'a', 'p', 'n', 1)`,
		noteID,
	); err != nil {
		t.Fatalf("insert attachment: %v", err)
	}

	if _, err := db.Exec(`DELETE FROM notes WHERE _id = ?`, noteID); err != nil {
		t.Fatalf("delete note: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM attachments`).Scan(&count); err != nil {
		t.Fatalf("count attachments: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascade to remove attachment rows, got %d", count)
	}
}

// A database staged at version 2 whose later objects already exist (an
// interrupted or externally-patched upgrade) must migrate to the current
// version without duplicate-table or duplicate-column errors.
func TestUpgradeFromVersionTwoWithExistingObjects(t *testing.T) {
	db := openRaw(t)

	if err := MigrateTo(db, 2); err != nil {
		t.Fatalf("migrate to v2: %v", err)
	}

	if _, err := db.Exec(`CREATE TABLE attachments (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		note_id INTEGER NOT NULL,
		file_type TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		FOREIGN KEY (note_id) REFERENCES notes(_id) ON DELETE CASCADE
	)`); err != nil {
		t.Fatalf("pre-create attachments: %v", err)
	}
	if _, err := db.Exec(`ALTER TABLE notes ADD COLUMN category TEXT`); err != nil {
		t.Fatalf("pre-add category: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate to current version: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO notes (title, note, created, modified, category) VALUES ('t', 'b', 1, 1, 'c')`,
	); err != nil {
		t.Fatalf("schema unusable after upgrade: %v", err)
	}
}

func TestMigrateIsRerunSafe(t *testing.T) {
	db := openRaw(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

// openRaw opens an unmigrated in-memory database so tests can stage
// arbitrary schema versions.
func openRaw(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
