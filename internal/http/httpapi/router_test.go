package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/imagegen"
	"imagestudio/internal/infra"
	"imagestudio/internal/middleware"
	"imagestudio/internal/providers/gemini"
	"imagestudio/internal/storage"
)

type oneImage struct{ data []byte }

func (o oneImage) Generate(context.Context, string, []gemini.Part) ([]gemini.ResponsePart, error) {
	return []gemini.ResponsePart{{InlineData: &gemini.InlineData{
		MIMEType: "image/png",
		Data:     base64.StdEncoding.EncodeToString(o.data),
	}}}, nil
}

func newTestRouter(t *testing.T, data []byte) http.Handler {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFileStore(filepath.Join(root, "out"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	cfg := &infra.Config{
		UploadDir:          filepath.Join(root, "uploads"),
		IndexPath:          filepath.Join(root, "index.html"),
		MaxUploadBytes:     1 << 20,
		CORSAllowedOrigins: []string{"http://app.example"},
	}
	svc := imagegen.NewService(oneImage{data: data}, store, "", nil)
	app := handlers.NewApp(cfg, svc, store, nil)
	return NewRouter(app, *infra.DiscardLogger())
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRouterGenerateThenDownload(t *testing.T) {
	payload := []byte("\x89PNG\r\n\x1a\nrouted")
	router := newTestRouter(t, payload)

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(`{"prompt":"a red circle"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		ImagePath string `json:"imagePath"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+body.ImagePath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Fatalf("downloaded bytes differ")
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://app.example" {
		t.Fatalf("missing allow origin header")
	}
}
