package handlers

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"os"

	"imagestudio/internal/infra"
	"imagestudio/internal/upload"
)

// ImageService is the generate/edit core the handlers delegate to.
type ImageService interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Edit(ctx context.Context, prompt string, source *upload.TempFile) (string, error)
}

// FileOpener resolves stored images for download.
type FileOpener interface {
	Open(name string) (*os.File, fs.FileInfo, error)
}

type App struct {
	Config *infra.Config
	Images ImageService
	Files  FileOpener
	Logger *infra.Logger
}

func NewApp(cfg *infra.Config, images ImageService, files FileOpener, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &App{Config: cfg, Images: images, Files: files, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) maxUploadBytes() int64 {
	if a.Config == nil || a.Config.MaxUploadBytes <= 0 {
		return infra.DefaultMaxUploadBytes
	}
	return a.Config.MaxUploadBytes
}

func (a *App) uploadDir() string {
	if a.Config == nil {
		return ""
	}
	return a.Config.UploadDir
}
