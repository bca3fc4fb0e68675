package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/notepad/internal/filestore"
	"github.com/dukerupert/notepad/internal/model"
	"github.com/dukerupert/notepad/internal/provider"
)

const maxUploadMemory = 32 << 20 // 32 MiB before multipart spills to disk

type AttachmentHandler struct {
	provider *provider.Provider
	files    *filestore.Store
	logger   *slog.Logger
}

func NewAttachmentHandler(p *provider.Provider, files *filestore.Store, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{provider: p, files: files, logger: logger}
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, "attachments")
}

func (h *AttachmentHandler) ListForNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	h.list(w, fmt.Sprintf("notes/%d/attachments", id))
}

func (h *AttachmentHandler) list(w http.ResponseWriter, uri string) {
	rs, err := h.provider.Query(uri, nil, "", nil, "")
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}

	attachments := make([]model.Attachment, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		attachments = append(attachments, model.AttachmentFromRow(row))
	}
	if t, err := h.provider.GetType(uri); err == nil {
		w.Header().Set("X-Resource-Type", t)
	}
	writeJSON(w, http.StatusOK, attachments)
}

// Upload imports the multipart file into private storage and records the
// attachment row. The recorded size is the size the upload declared, not
// the bytes written; the two can diverge for misreporting sources.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	noteID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	fileType := r.FormValue("file_type")
	if fileType == "" {
		fileType = header.Header.Get("Content-Type")
	}

	res, err := h.files.Import(file, header.Filename, header.Size)
	if err != nil {
		h.logger.Error("attachment import", "note_id", noteID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "import failed"})
		return
	}

	uri, err := h.provider.Insert("attachments", provider.Values{
		"note_id":   noteID,
		"file_type": fileType,
		"file_path": res.StoredName,
		"file_name": header.Filename,
		"file_size": res.DeclaredSize,
	})
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}

	attachment, err := h.fetchAttachment(uri)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachment)
}

func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	uri := fmt.Sprintf("attachments/%d", id)
	attachment, err := h.fetchAttachment(uri)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	if t, err := h.provider.GetType(uri); err == nil {
		w.Header().Set("X-Resource-Type", t)
	}
	writeJSON(w, http.StatusOK, attachment)
}

// Delete removes the attachment row and then its backing file. The row
// delete is authoritative; a file that cannot be removed is logged by the
// data layer and does not fail the request.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	count, err := h.provider.Delete(fmt.Sprintf("attachments/%d", id), "", nil)
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

// ServeFile streams the stored bytes of an attachment with its recorded
// file type.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	attachment, err := h.fetchAttachment(fmt.Sprintf("attachments/%d", id))
	if err != nil {
		writeProviderError(w, h.logger, err)
		return
	}

	if attachment.FileType != "" {
		w.Header().Set("Content-Type", attachment.FileType)
	}
	http.ServeFile(w, r, h.files.Path(attachment.FilePath))
}

func (h *AttachmentHandler) fetchAttachment(uri string) (model.Attachment, error) {
	rs, err := h.provider.Query(uri, nil, "", nil, "")
	if err != nil {
		return model.Attachment{}, err
	}
	if len(rs.Rows) == 0 {
		return model.Attachment{}, provider.ErrNotFound
	}
	return model.AttachmentFromRow(rs.Rows[0]), nil
}
