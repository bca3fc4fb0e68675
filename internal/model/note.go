package model

// Note is a row in the notes table. Created and Modified are epoch
// milliseconds; the data layer never stamps Modified on update.
type Note struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	Created  int64   `json:"created"`
	Modified int64   `json:"modified"`
	Category *string `json:"category"`
}

// NoteFromRow builds a Note from a projected result row. Columns absent
// from the projection are left zero.
func NoteFromRow(row map[string]any) Note {
	n := Note{
		ID:       asInt64(row["_id"]),
		Title:    asString(row["title"]),
		Body:     asString(row["note"]),
		Created:  asInt64(row["created"]),
		Modified: asInt64(row["modified"]),
	}
	if v, ok := row["category"]; ok && v != nil {
		s := asString(v)
		n.Category = &s
	}
	return n
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}
