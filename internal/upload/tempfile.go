package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// TempFile is an uploaded file spooled to the upload directory. It is owned
// by whoever called Spool and must be released once its bytes are consumed.
type TempFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64

	once    sync.Once
	release error
}

// Spool copies src into a new temporary file under dir, creating dir when
// needed. On failure nothing is left behind.
func Spool(dir string, src io.Reader, filename, contentType string) (*TempFile, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: ensure dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("upload: create temp file: %w", err)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(f.Name())
		if copyErr != nil {
			return nil, fmt.Errorf("upload: write temp file: %w", copyErr)
		}
		return nil, fmt.Errorf("upload: close temp file: %w", closeErr)
	}
	return &TempFile{
		Path:        f.Name(),
		Filename:    filename,
		ContentType: contentType,
		Size:        n,
	}, nil
}

// ReadAll returns the spooled bytes.
func (t *TempFile) ReadAll() ([]byte, error) {
	if t == nil {
		return nil, errors.New("upload: no file")
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, fmt.Errorf("upload: read temp file: %w", err)
	}
	return data, nil
}

// Release deletes the temporary file. It is safe to call more than once and
// on a nil receiver; only the first call touches the filesystem.
func (t *TempFile) Release() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.release = fmt.Errorf("upload: remove temp file: %w", err)
		}
	})
	return t.release
}
