// Package provider is the data-access core: it routes resource addresses to
// table operations over the SQLite store, whitelists projections, applies
// insert defaults and validation, keeps attachment rows and their backing
// files in lockstep, and streams single notes as plain text.
package provider

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/notepad/internal/filestore"
)

// Untitled placeholder applied when a note is inserted without a title.
const untitledTitle = "Untitled"

// Values is a column-name-to-value map supplied on insert and update.
type Values map[string]any

// Row is a single result row keyed by projected column name.
type Row map[string]any

// ResultSet carries query rows together with the resource address they came
// from, so mutations to that address can be correlated by observers.
type ResultSet struct {
	URI     string
	Columns []string
	Rows    []Row
}

// Notifier receives fire-and-forget change notifications keyed by the
// mutated resource address.
type Notifier interface {
	NotifyChange(uri string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyChange(string) {}

// Provider executes routed CRUD operations against one store handle. It is
// safe for concurrent callers; single-writer serialization is left to
// SQLite itself.
type Provider struct {
	db       *sql.DB
	files    *filestore.Store
	notifier Notifier
	logger   *slog.Logger
}

// New creates a Provider. A nil notifier disables change notification.
func New(db *sql.DB, files *filestore.Store, notifier Notifier, logger *slog.Logger) *Provider {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Provider{db: db, files: files, notifier: notifier, logger: logger}
}

// Query runs a whitelisted projection over the addressed resource. The
// caller's selection is conjoined with the route's identity predicate for
// item-scoped addresses; sortOrder overrides the resource default entirely.
func (p *Provider) Query(uri string, projection []string, selection string, args []any, sortOrder string) (*ResultSet, error) {
	rt, err := Match(uri)
	if err != nil {
		return nil, err
	}

	plan, err := buildQuery(rt, projection, selection, args, sortOrder)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(plan.sql, plan.args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", rt.URI, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", rt.URI, err)
	}

	rs := &ResultSet{URI: rt.URI, Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", rt.URI, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", rt.URI, err)
	}
	return rs, nil
}

// Insert creates a row under a collection address and returns the new
// item's address. Notes receive defaults for missing fields; attachments
// are validated instead and synthesize nothing.
func (p *Provider) Insert(uri string, values Values) (string, error) {
	rt, err := Match(uri)
	if err != nil {
		return "", err
	}

	switch rt.Kind {
	case KindNotes:
		return p.insertNote(values)
	case KindAttachments:
		return p.insertAttachment(values)
	default:
		return "", fmt.Errorf("insert %s: %w", rt.URI, ErrUnknownRoute)
	}
}

func (p *Provider) insertNote(values Values) (string, error) {
	v := make(Values, len(values)+4)
	for k, val := range values {
		v[k] = val
	}

	now := time.Now().UnixMilli()
	if _, ok := v["created"]; !ok {
		v["created"] = now
	}
	if _, ok := v["modified"]; !ok {
		v["modified"] = now
	}
	if _, ok := v["title"]; !ok {
		v["title"] = untitledTitle
	}
	if _, ok := v["note"]; !ok {
		v["note"] = ""
	}

	id, err := p.execInsert(notesTable, v, notesProjection, notesColumns)
	if err != nil {
		return "", err
	}

	itemURI := fmt.Sprintf("notes/%d", id)
	p.notifier.NotifyChange(itemURI)
	return itemURI, nil
}

func (p *Provider) insertAttachment(values Values) (string, error) {
	for _, field := range []string{"note_id", "file_path", "file_type"} {
		if _, ok := values[field]; !ok {
			return "", missingField(field)
		}
	}

	id, err := p.execInsert(attachmentsTable, values, attachmentProjection, attachmentColumns)
	if err != nil {
		return "", err
	}

	itemURI := fmt.Sprintf("attachments/%d", id)
	p.notifier.NotifyChange(itemURI)
	return itemURI, nil
}

func (p *Provider) execInsert(table string, values Values, projMap map[string]string, ordered []string) (int64, error) {
	cols, err := columnsForInsert(values, projMap, ordered)
	if err != nil {
		return 0, err
	}

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = values[c]
		marks[i] = "?"
	}

	res, err := p.db.Exec(
		"INSERT INTO "+table+" ("+strings.Join(cols, ", ")+") VALUES ("+strings.Join(marks, ", ")+")",
		args...,
	)
	if err != nil {
		return 0, &ConstraintError{URI: table, Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil || id <= 0 {
		return 0, &ConstraintError{URI: table, Err: err}
	}
	return id, nil
}

// Update applies the value map to rows matching the address and selection.
// It never touches modified; stamping it is the caller's responsibility.
func (p *Provider) Update(uri string, values Values, selection string, args []any) (int64, error) {
	rt, err := Match(uri)
	if err != nil {
		return 0, err
	}

	if len(values) == 0 {
		return 0, &ValidationError{Field: "values", Reason: "must not be empty"}
	}

	var (
		table    string
		projMap  map[string]string
		ordered  []string
		idColumn string
	)
	switch rt.Kind {
	case KindNotes:
		table, projMap, ordered = notesTable, notesProjection, notesColumns
	case KindNoteID:
		table, projMap, ordered, idColumn = notesTable, notesProjection, notesColumns, "_id"
	case KindAttachments:
		table, projMap, ordered = attachmentsTable, attachmentProjection, attachmentColumns
	case KindAttachmentID:
		table, projMap, ordered, idColumn = attachmentsTable, attachmentProjection, attachmentColumns, "_id"
	default:
		return 0, fmt.Errorf("update %s: %w", rt.URI, ErrUnknownRoute)
	}

	cols, err := columnsForInsert(values, projMap, ordered)
	if err != nil {
		return 0, err
	}

	sets := make([]string, len(cols))
	setArgs := make([]any, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
		setArgs[i] = values[c]
	}

	where, whereArgs := conjoinID(idColumn, rt.ID, selection, args)

	q := "UPDATE " + table + " SET " + strings.Join(sets, ", ")
	if where != "" {
		q += " WHERE " + where
	}

	res, err := p.db.Exec(q, append(setArgs, whereArgs...)...)
	if err != nil {
		return 0, &ConstraintError{URI: rt.URI, Err: err}
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", rt.URI, err)
	}

	p.notifier.NotifyChange(rt.URI)
	return count, nil
}

// Delete removes rows matching the address and selection and returns the
// affected count; zero matches is not an error.
//
// Deleting a note here removes attachment rows through the store's cascade
// but never their files; only DeleteNoteWithAttachments does both. Deleting
// through an attachment address removes rows first, then files: the row
// delete is authoritative and file removal is best-effort, so a failure in
// between orphans a file rather than leaving a dangling row.
func (p *Provider) Delete(uri string, selection string, args []any) (int64, error) {
	rt, err := Match(uri)
	if err != nil {
		return 0, err
	}

	var count int64
	switch rt.Kind {
	case KindNotes:
		count, err = p.execDelete(notesTable, selection, args)
	case KindNoteID:
		where, whereArgs := conjoinID("_id", rt.ID, selection, args)
		count, err = p.execDelete(notesTable, where, whereArgs)
	case KindAttachments:
		count, err = p.deleteAttachments(selection, args)
	case KindAttachmentID:
		count, err = p.deleteAttachmentByID(rt, selection, args)
	default:
		return 0, fmt.Errorf("delete %s: %w", rt.URI, ErrUnknownRoute)
	}
	if err != nil {
		return 0, err
	}

	p.notifier.NotifyChange(rt.URI)
	return count, nil
}

func (p *Provider) execDelete(table, where string, args []any) (int64, error) {
	q := "DELETE FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	res, err := p.db.Exec(q, args...)
	if err != nil {
		return 0, &ConstraintError{URI: table, Err: err}
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return count, nil
}

// deleteAttachments resolves the backing file of every row a predicate-based
// bulk delete is about to remove, deletes the rows, then removes the files.
// An unfiltered delete-all removes rows only, matching the historic
// provider behavior.
func (p *Provider) deleteAttachments(selection string, args []any) (int64, error) {
	var paths []string
	if selection != "" {
		rs, err := p.Query("attachments", []string{"file_path"}, selection, args, "")
		if err != nil {
			return 0, err
		}
		for _, row := range rs.Rows {
			if path, ok := row["file_path"].(string); ok {
				paths = append(paths, path)
			}
		}
	}

	count, err := p.execDelete(attachmentsTable, selection, args)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		p.removeFiles(paths)
	}
	return count, nil
}

func (p *Provider) deleteAttachmentByID(rt Route, selection string, args []any) (int64, error) {
	var path string
	row := p.db.QueryRow("SELECT file_path FROM attachments WHERE _id = ?", rt.ID)
	if err := row.Scan(&path); err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("resolve attachment %d: %w", rt.ID, err)
	}

	where, whereArgs := conjoinID("_id", rt.ID, selection, args)
	count, err := p.execDelete(attachmentsTable, where, whereArgs)
	if err != nil {
		return 0, err
	}

	if count > 0 && path != "" {
		p.removeFiles([]string{path})
	}
	return count, nil
}

// removeFiles is best-effort: a failed removal is logged and never rolls
// back the already-committed row delete.
func (p *Provider) removeFiles(paths []string) {
	if p.files == nil {
		return
	}
	for _, path := range paths {
		if err := p.files.Remove(path); err != nil {
			p.logger.Warn("remove attachment file", "path", path, "error", err)
		}
	}
}

// DeleteNoteWithAttachments is the purge path for the editing collaborator:
// it enumerates the note's attachments, deletes each through the
// file-aware by-id path, then deletes the note row itself.
func (p *Provider) DeleteNoteWithAttachments(noteID int64) (int64, error) {
	rs, err := p.Query(fmt.Sprintf("notes/%d/attachments", noteID), []string{"_id"}, "", nil, "")
	if err != nil {
		return 0, err
	}

	for _, row := range rs.Rows {
		id, ok := row["_id"].(int64)
		if !ok {
			continue
		}
		if _, err := p.Delete(fmt.Sprintf("attachments/%d", id), "", nil); err != nil {
			return 0, fmt.Errorf("purge attachment %d of note %d: %w", id, noteID, err)
		}
	}

	return p.Delete(fmt.Sprintf("notes/%d", noteID), "", nil)
}

// GetType reports the negotiated content type for a resource address.
func (p *Provider) GetType(uri string) (string, error) {
	rt, err := Match(uri)
	if err != nil {
		return "", err
	}
	return rt.ContentType(), nil
}

// StreamTypes reports the stream representations available for the address
// under the given MIME filter.
func (p *Provider) StreamTypes(uri, mimeFilter string) ([]string, error) {
	rt, err := Match(uri)
	if err != nil {
		return nil, err
	}
	return rt.StreamTypes(mimeFilter), nil
}
