package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/notepad/internal/database"
	"github.com/dukerupert/notepad/internal/filestore"
	"github.com/dukerupert/notepad/internal/logging"
	"github.com/dukerupert/notepad/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("NOTEPAD_LOG_LEVEL"))

	port := os.Getenv("NOTEPAD_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("NOTEPAD_DB_PATH")
	if dbPath == "" {
		dbPath = "note_pad.db"
	}

	dataDir := os.Getenv("NOTEPAD_DATA_DIR")
	if dataDir == "" {
		dataDir = "attachments"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	files, err := filestore.New(dataDir, logger.With("component", "filestore"))
	if err != nil {
		logger.Error("open filestore", "dir", dataDir, "error", err)
		os.Exit(1)
	}

	srv := server.New(db, files, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("notepad listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
