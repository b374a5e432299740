package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"imagestudio/internal/domain"
	"imagestudio/internal/imagegen"
	"imagestudio/internal/storage"
	"imagestudio/internal/upload"
)

// multipartMemory is how much of a multipart body is kept in memory before
// net/http spills file parts to disk.
const multipartMemory = 8 << 20

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Message   string `json:"message"`
	ImagePath string `json:"imagePath"`
}

type editResponse struct {
	Message    string `json:"message"`
	EditedPath string `json:"editedPath"`
}

// Generate handles POST /generate with a JSON or form encoded prompt.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes())
	prompt := readPrompt(r)

	filename, err := a.Images.Generate(r.Context(), prompt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, generateResponse{
		Message:   "Image generated successfully",
		ImagePath: filename,
	})
}

// readPrompt extracts the prompt field. Malformed bodies yield an empty
// prompt, which the service rejects.
func readPrompt(r *http.Request) string {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return r.FormValue("prompt")
	default:
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return ""
		}
		return req.Prompt
	}
}

// Edit handles POST /edit with a multipart "image" file and "prompt" field.
func (a *App) Edit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		a.fail(w, r, domain.Validation(imagegen.MsgImageAndPrompt))
		return
	}
	defer r.MultipartForm.RemoveAll()

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	file, header, err := r.FormFile("image")
	if err != nil || prompt == "" {
		if file != nil {
			file.Close()
		}
		a.fail(w, r, domain.Validation(imagegen.MsgImageAndPrompt))
		return
	}
	defer file.Close()

	source, err := upload.Spool(a.uploadDir(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		a.fail(w, r, domain.IO(err))
		return
	}
	defer source.Release()

	filename, err := a.Images.Edit(r.Context(), prompt, source)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, editResponse{
		Message:    "Image edited successfully",
		EditedPath: filename,
	})
}

// Download streams a stored image as an attachment.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	f, info, err := a.Files.Open(name)
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "File not found", http.StatusNotFound)
		return
	case err != nil:
		a.Logger.Error().Err(err).Str("filename", name).Msg("download failed")
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name()}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Home serves the static landing page.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	path := ""
	if a.Config != nil {
		path = a.Config.IndexPath
	}
	if path == "" {
		http.NotFound(w, r)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
