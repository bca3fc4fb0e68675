package provider

import (
	"errors"
	"io"
	"testing"
)

func TestExportPlainText(t *testing.T) {
	p, _, _ := setupProvider(t)
	uri := insertNote(t, p, Values{"title": "Groceries", "note": "Milk\nEggs"})

	stream, err := p.OpenTypedStream(uri, MIMETypeTextPlain)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}

	want := "Groceries\n\nMilk\nEggs\n"
	if string(data) != want {
		t.Errorf("stream = %q, want %q", data, want)
	}
}

func TestExportMissingNote(t *testing.T) {
	p, _, _ := setupProvider(t)

	_, err := p.OpenTypedStream("notes/999", MIMETypeTextPlain)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestExportUnsupportedCombinations(t *testing.T) {
	p, _, _ := setupProvider(t)
	uri := insertNote(t, p, Values{})

	if _, err := p.OpenTypedStream("notes", MIMETypeTextPlain); !errors.Is(err, ErrStreamUnsupported) {
		t.Errorf("collection stream: got %v, want ErrStreamUnsupported", err)
	}
	if _, err := p.OpenTypedStream(uri, "image/png"); !errors.Is(err, ErrStreamUnsupported) {
		t.Errorf("image/png stream: got %v, want ErrStreamUnsupported", err)
	}
	if _, err := p.OpenTypedStream("bogus", MIMETypeTextPlain); !errors.Is(err, ErrUnknownRoute) {
		t.Errorf("bogus stream: got %v, want ErrUnknownRoute", err)
	}
}

func TestExportReaderClosesEarly(t *testing.T) {
	p, _, _ := setupProvider(t)
	uri := insertNote(t, p, Values{"title": "T", "note": "body"})

	stream, err := p.OpenTypedStream(uri, MIMETypeTextPlain)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	// Closing the read end early must not panic or wedge the producer.
	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
