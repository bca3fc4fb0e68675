package provider

import (
	"bufio"
	"fmt"
	"io"
)

// Projection used when rendering a note as a text stream.
var exportProjection = []string{"_id", "note", "title"}

// OpenTypedStream renders the addressed note as a byte stream of the given
// MIME type. Only single-note addresses support it, and only as text/plain.
//
// The read end is handed to the caller immediately; a producer goroutine
// writes the title line, a blank line, then the body, and closes the write
// end when done. A write failure is logged and truncates the stream at
// whatever was already flushed; the reader sees a clean EOF, not an error.
// If the reader closes its end early, the producer's next write fails and
// it winds down the same way.
func (p *Provider) OpenTypedStream(uri, mimeFilter string) (io.ReadCloser, error) {
	types, err := p.StreamTypes(uri, mimeFilter)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("open stream %s as %q: %w", uri, mimeFilter, ErrStreamUnsupported)
	}

	rs, err := p.Query(uri, exportProjection, "", nil, "")
	if err != nil {
		return nil, err
	}
	if len(rs.Rows) == 0 {
		return nil, fmt.Errorf("open stream %s: %w", uri, ErrNotFound)
	}

	row := rs.Rows[0]
	title, _ := row["title"].(string)
	body, _ := row["note"].(string)

	pr, pw := io.Pipe()
	go p.writeNoteStream(pw, uri, title, body)
	return pr, nil
}

func (p *Provider) writeNoteStream(pw *io.PipeWriter, uri, title, body string) {
	defer pw.Close()

	w := bufio.NewWriter(pw)
	_, err := fmt.Fprintf(w, "%s\n\n%s\n", title, body)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		p.logger.Warn("note export aborted", "uri", uri, "error", err)
	}
}
