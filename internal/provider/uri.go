package provider

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceKind is the closed set of resource shapes a URI can address.
type ResourceKind int

const (
	KindNotes ResourceKind = iota + 1
	KindNoteID
	KindLiveFolderNotes
	KindAttachments
	KindAttachmentID
	KindNoteAttachments
)

// Content types reported by type negotiation: collections report the
// "multiple items" form, single items the "single item" form.
const (
	ContentTypeNotes      = "vnd.notepad.cursor.dir/vnd.notepad.note"
	ContentTypeNote       = "vnd.notepad.cursor.item/vnd.notepad.note"
	ContentTypeAttachDir  = "vnd.notepad.cursor.dir/vnd.notepad.attachment"
	ContentTypeAttachItem = "vnd.notepad.cursor.item/vnd.notepad.attachment"
)

// MIMETypeTextPlain is the only supported stream export type.
const MIMETypeTextPlain = "text/plain"

// Route is the result of matching a resource address. ID carries the note
// or attachment identity for item-scoped kinds, and the owning note
// identity for KindNoteAttachments.
type Route struct {
	Kind ResourceKind
	ID   int64
	URI  string
}

// Match classifies a resource address by its path segments. The pattern
// table is fixed: notes, notes/{id}, live_folders/notes, attachments,
// attachments/{id}, notes/{id}/attachments. Anything else is ErrUnknownRoute.
func Match(uri string) (Route, error) {
	segs := splitPath(uri)

	switch len(segs) {
	case 1:
		switch segs[0] {
		case "notes":
			return Route{Kind: KindNotes, URI: "notes"}, nil
		case "attachments":
			return Route{Kind: KindAttachments, URI: "attachments"}, nil
		}
	case 2:
		if segs[0] == "live_folders" && segs[1] == "notes" {
			return Route{Kind: KindLiveFolderNotes, URI: "live_folders/notes"}, nil
		}
		if id, ok := parseID(segs[1]); ok {
			switch segs[0] {
			case "notes":
				return Route{Kind: KindNoteID, ID: id, URI: "notes/" + segs[1]}, nil
			case "attachments":
				return Route{Kind: KindAttachmentID, ID: id, URI: "attachments/" + segs[1]}, nil
			}
		}
	case 3:
		if segs[0] == "notes" && segs[2] == "attachments" {
			if id, ok := parseID(segs[1]); ok {
				return Route{Kind: KindNoteAttachments, ID: id, URI: "notes/" + segs[1] + "/attachments"}, nil
			}
		}
	}

	return Route{}, fmt.Errorf("%w: %q", ErrUnknownRoute, uri)
}

// ContentType returns the negotiated content type for the route. The live
// folder view is a read-only alias over notes and reports the notes
// collection type.
func (r Route) ContentType() string {
	switch r.Kind {
	case KindNotes, KindLiveFolderNotes:
		return ContentTypeNotes
	case KindNoteID:
		return ContentTypeNote
	case KindAttachments, KindNoteAttachments:
		return ContentTypeAttachDir
	case KindAttachmentID:
		return ContentTypeAttachItem
	}
	return ""
}

// StreamTypes returns the stream representations available for the route
// under the given MIME filter. Only single-note routes can stream, and only
// as text/plain.
func (r Route) StreamTypes(mimeFilter string) []string {
	if r.Kind != KindNoteID {
		return nil
	}
	if mimeMatches(mimeFilter, MIMETypeTextPlain) {
		return []string{MIMETypeTextPlain}
	}
	return nil
}

func splitPath(uri string) []string {
	trimmed := strings.Trim(uri, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseID(seg string) (int64, bool) {
	if seg == "" {
		return 0, false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// mimeMatches applies filter semantics: "*/*" and "" match everything,
// "type/*" matches the major type, anything else must match exactly.
func mimeMatches(filter, mime string) bool {
	if filter == "" || filter == "*/*" {
		return true
	}
	if major, ok := strings.CutSuffix(filter, "/*"); ok {
		return strings.HasPrefix(mime, major+"/")
	}
	return filter == mime
}
