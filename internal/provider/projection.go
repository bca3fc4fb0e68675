package provider

import (
	"strings"
)

// Per-resource projection whitelists. Requested logical column names resolve
// through these maps, so a caller can never smuggle arbitrary expressions
// into the SELECT list. Built once; read-only thereafter.
var (
	notesColumns    = []string{"_id", "title", "note", "created", "modified", "category"}
	notesProjection = map[string]string{
		"_id":      "_id",
		"title":    "title",
		"note":     "note",
		"created":  "created",
		"modified": "modified",
		"category": "category",
	}

	liveFolderColumns    = []string{"_id", "name"}
	liveFolderProjection = map[string]string{
		"_id":  "_id",
		"name": "title AS name",
	}

	attachmentColumns    = []string{"_id", "note_id", "file_type", "file_path", "file_name", "file_size"}
	attachmentProjection = map[string]string{
		"_id":       "_id",
		"note_id":   "note_id",
		"file_type": "file_type",
		"file_path": "file_path",
		"file_name": "file_name",
		"file_size": "file_size",
	}
)

const (
	notesTable       = "notes"
	attachmentsTable = "attachments"

	defaultNotesSort       = "modified DESC"
	defaultAttachmentsSort = "_id ASC"
)

type queryPlan struct {
	sql  string
	args []any
}

// buildQuery assembles a SELECT for the route: projection resolved through
// the resource whitelist, the caller's selection conjoined with the route's
// identity predicate for item-scoped kinds, and the resource default sort
// unless the caller overrides it.
func buildQuery(rt Route, projection []string, selection string, args []any, sortOrder string) (queryPlan, error) {
	var (
		table    string
		columns  []string
		projMap  map[string]string
		idColumn string
		sort     string
	)

	switch rt.Kind {
	case KindNotes:
		table, columns, projMap, sort = notesTable, notesColumns, notesProjection, defaultNotesSort
	case KindNoteID:
		table, columns, projMap, sort = notesTable, notesColumns, notesProjection, defaultNotesSort
		idColumn = "_id"
	case KindLiveFolderNotes:
		table, columns, projMap, sort = notesTable, liveFolderColumns, liveFolderProjection, defaultNotesSort
	case KindAttachments:
		table, columns, projMap, sort = attachmentsTable, attachmentColumns, attachmentProjection, defaultAttachmentsSort
	case KindAttachmentID:
		table, columns, projMap, sort = attachmentsTable, attachmentColumns, attachmentProjection, defaultAttachmentsSort
		idColumn = "_id"
	case KindNoteAttachments:
		table, columns, projMap, sort = attachmentsTable, attachmentColumns, attachmentProjection, defaultAttachmentsSort
		idColumn = "note_id"
	default:
		return queryPlan{}, ErrUnknownRoute
	}

	exprs, err := resolveProjection(projection, columns, projMap)
	if err != nil {
		return queryPlan{}, err
	}

	where, whereArgs := conjoinID(idColumn, rt.ID, selection, args)

	if sortOrder != "" {
		sort = sortOrder
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(exprs, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(sort)

	return queryPlan{sql: b.String(), args: whereArgs}, nil
}

// resolveProjection maps requested logical columns to select expressions.
// An empty request selects every whitelisted column in stable order.
func resolveProjection(requested, columns []string, projMap map[string]string) ([]string, error) {
	if len(requested) == 0 {
		exprs := make([]string, len(columns))
		for i, c := range columns {
			exprs[i] = projMap[c]
		}
		return exprs, nil
	}

	exprs := make([]string, len(requested))
	for i, c := range requested {
		expr, ok := projMap[c]
		if !ok {
			return nil, unknownColumn(c)
		}
		exprs[i] = expr
	}
	return exprs, nil
}

// conjoinID prepends an identity equality predicate to the caller's
// selection for item-scoped routes. idColumn is empty for collection routes.
func conjoinID(idColumn string, id int64, selection string, args []any) (string, []any) {
	if idColumn == "" {
		return selection, args
	}
	where := idColumn + " = ?"
	whereArgs := append([]any{id}, args...)
	if selection != "" {
		where += " AND (" + selection + ")"
	}
	return where, whereArgs
}

// columnsForInsert validates value-map keys against the resource whitelist
// and returns them in stable order so generated SQL is deterministic.
func columnsForInsert(values Values, projMap map[string]string, ordered []string) ([]string, error) {
	for k := range values {
		if _, ok := projMap[k]; !ok {
			return nil, unknownColumn(k)
		}
	}
	cols := make([]string, 0, len(values))
	for _, c := range ordered {
		if _, ok := values[c]; ok {
			cols = append(cols, c)
		}
	}
	return cols, nil
}
