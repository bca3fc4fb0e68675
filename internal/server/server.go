package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/notepad/internal/filestore"
	"github.com/dukerupert/notepad/internal/handler"
	"github.com/dukerupert/notepad/internal/middleware"
	"github.com/dukerupert/notepad/internal/provider"
	ws "github.com/dukerupert/notepad/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	noteH       *handler.NoteHandler
	attachmentH *handler.AttachmentHandler
	logger      *slog.Logger
}

func New(db *sql.DB, files *filestore.Store, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	prov := provider.New(db, files, hub, logger.With("component", "provider"))

	return &Server{
		db:          db,
		hub:         hub,
		noteH:       handler.NewNoteHandler(prov, logger.With("component", "note")),
		attachmentH: handler.NewAttachmentHandler(prov, files, logger.With("component", "attachment")),
		logger:      logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /notes", s.noteH.List)
	mux.HandleFunc("POST /notes", s.noteH.Create)
	mux.HandleFunc("GET /notes/{id}", s.noteH.Get)
	mux.HandleFunc("PUT /notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /notes/{id}", s.noteH.Delete)
	mux.HandleFunc("DELETE /notes/{id}/purge", s.noteH.Purge)
	mux.HandleFunc("GET /notes/{id}/export", s.noteH.Export)
	mux.HandleFunc("GET /live_folders/notes", s.noteH.LiveFolder)

	mux.HandleFunc("GET /notes/{id}/attachments", s.attachmentH.ListForNote)
	mux.HandleFunc("POST /notes/{id}/attachments", s.attachmentH.Upload)
	mux.HandleFunc("GET /attachments", s.attachmentH.List)
	mux.HandleFunc("GET /attachments/{id}", s.attachmentH.Get)
	mux.HandleFunc("DELETE /attachments/{id}", s.attachmentH.Delete)
	mux.HandleFunc("GET /attachments/{id}/file", s.attachmentH.ServeFile)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
	mux.HandleFunc("GET /health", s.healthHandler)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
