package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/notepad/internal/model"
	"github.com/dukerupert/notepad/internal/provider"
)

type NoteHandler struct {
	provider *provider.Provider
	logger   *slog.Logger
}

func NewNoteHandler(p *provider.Provider, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{provider: p, logger: logger}
}

// noteRequest uses pointers so absent fields stay absent: the data layer
// applies creation defaults only to fields the caller never supplied.
type noteRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Category *string `json:"category"`
	Created  *int64  `json:"created"`
	Modified *int64  `json:"modified"`
}

func (req *noteRequest) values() provider.Values {
	v := provider.Values{}
	if req.Title != nil {
		v["title"] = *req.Title
	}
	if req.Body != nil {
		v["note"] = *req.Body
	}
	if req.Category != nil {
		v["category"] = *req.Category
	}
	if req.Created != nil {
		v["created"] = *req.Created
	}
	if req.Modified != nil {
		v["modified"] = *req.Modified
	}
	return v
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	uri, err := h.provider.Insert("notes", req.values())
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}

	note, err := h.fetchNote(uri)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		selection string
		args      []any
	)
	if category := r.URL.Query().Get("category"); category != "" {
		selection = "category = ?"
		args = []any{category}
	}

	rs, err := h.provider.Query("notes", nil, selection, args, "")
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}

	notes := make([]model.Note, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		notes = append(notes, model.NoteFromRow(row))
	}
	h.setResourceType(w, rs.URI)
	writeJSON(w, http.StatusOK, notes)
}

// LiveFolder serves the read-only alias view over notes: id and title only,
// with title exposed under the name column.
func (h *NoteHandler) LiveFolder(w http.ResponseWriter, r *http.Request) {
	rs, err := h.provider.Query("live_folders/notes", nil, "", nil, "")
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	if rs.Rows == nil {
		rs.Rows = []provider.Row{}
	}
	h.setResourceType(w, rs.URI)
	writeJSON(w, http.StatusOK, rs.Rows)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	uri := fmt.Sprintf("notes/%d", id)
	note, err := h.fetchNote(uri)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	h.setResourceType(w, uri)
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	values := req.values()
	if len(values) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no fields to update"})
		return
	}
	// The data layer never auto-stamps modified; the editor does.
	if req.Modified == nil {
		values["modified"] = time.Now().UnixMilli()
	}

	uri := fmt.Sprintf("notes/%d", id)
	count, err := h.provider.Update(uri, values, "", nil)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	if count == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}

	note, err := h.fetchNote(uri)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Delete removes the note row only. The cascade removes its attachment rows
// but leaves their files; clients that want files gone use Purge.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	count, err := h.provider.Delete(fmt.Sprintf("notes/%d", id), "", nil)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

// Purge removes the note, its attachment rows, and their backing files.
func (h *NoteHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	count, err := h.provider.DeleteNoteWithAttachments(id)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

// Export streams the note as text/plain: title line, blank line, body.
func (h *NoteHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	stream, err := h.provider.OpenTypedStream(fmt.Sprintf("notes/%d", id), provider.MIMETypeTextPlain)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.Copy(w, stream); err != nil {
		h.logger.Warn("export copy", "note_id", id, "error", err)
	}
}

func (h *NoteHandler) fetchNote(uri string) (model.Note, error) {
	rs, err := h.provider.Query(uri, nil, "", nil, "")
	if err != nil {
		return model.Note{}, err
	}
	if len(rs.Rows) == 0 {
		return model.Note{}, provider.ErrNotFound
	}
	return model.NoteFromRow(rs.Rows[0]), nil
}

func (h *NoteHandler) setResourceType(w http.ResponseWriter, uri string) {
	if t, err := h.provider.GetType(uri); err == nil {
		w.Header().Set("X-Resource-Type", t)
	}
}
