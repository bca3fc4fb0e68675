package provider

import (
	"errors"
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		uri      string
		wantKind ResourceKind
		wantID   int64
	}{
		{"notes", KindNotes, 0},
		{"/notes/", KindNotes, 0},
		{"notes/42", KindNoteID, 42},
		{"live_folders/notes", KindLiveFolderNotes, 0},
		{"attachments", KindAttachments, 0},
		{"attachments/7", KindAttachmentID, 7},
		{"notes/5/attachments", KindNoteAttachments, 5},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			rt, err := Match(tt.uri)
			if err != nil {
				t.Fatalf("Match(%q): %v", tt.uri, err)
			}
			if rt.Kind != tt.wantKind {
				t.Errorf("kind = %d, want %d", rt.Kind, tt.wantKind)
			}
			if rt.ID != tt.wantID {
				t.Errorf("id = %d, want %d", rt.ID, tt.wantID)
			}
		})
	}
}

func TestMatchUnknown(t *testing.T) {
	bad := []string{
		"",
		"/",
		"bogus",
		"notes/abc",
		"notes/-1",
		"notes/1/bogus",
		"notes/1/attachments/2",
		"live_folders",
		"live_folders/attachments",
		"attachments/1/file",
	}

	for _, uri := range bad {
		if _, err := Match(uri); !errors.Is(err, ErrUnknownRoute) {
			t.Errorf("Match(%q): got %v, want ErrUnknownRoute", uri, err)
		}
	}
}

func TestContentTypes(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"notes", ContentTypeNotes},
		{"live_folders/notes", ContentTypeNotes},
		{"notes/3", ContentTypeNote},
		{"attachments", ContentTypeAttachDir},
		{"notes/3/attachments", ContentTypeAttachDir},
		{"attachments/3", ContentTypeAttachItem},
	}

	for _, tt := range tests {
		rt, err := Match(tt.uri)
		if err != nil {
			t.Fatalf("Match(%q): %v", tt.uri, err)
		}
		if got := rt.ContentType(); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestStreamTypes(t *testing.T) {
	note, _ := Match("notes/2")

	for _, filter := range []string{"", "*/*", "text/*", "text/plain"} {
		if got := note.StreamTypes(filter); len(got) != 1 || got[0] != MIMETypeTextPlain {
			t.Errorf("StreamTypes(%q) = %v, want [text/plain]", filter, got)
		}
	}

	if got := note.StreamTypes("image/png"); got != nil {
		t.Errorf("StreamTypes(image/png) = %v, want nil", got)
	}
	if got := note.StreamTypes("image/*"); got != nil {
		t.Errorf("StreamTypes(image/*) = %v, want nil", got)
	}

	for _, uri := range []string{"notes", "live_folders/notes", "attachments", "attachments/2", "notes/2/attachments"} {
		rt, _ := Match(uri)
		if got := rt.StreamTypes("text/plain"); got != nil {
			t.Errorf("StreamTypes for %q = %v, want nil", uri, got)
		}
	}
}
