package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"imagestudio/internal/domain"
)

// ErrInvalidName is returned when a requested filename could escape the
// storage root.
var ErrInvalidName = errors.New("storage: invalid filename")

// FileStore persists generated images as flat PNG files inside a single
// directory. Filenames are derived from a prefix and the current Unix
// millisecond timestamp.
type FileStore struct {
	basePath string
	now      func() time.Time
}

// NewFileStore initializes a FileStore rooted at basePath. An empty basePath
// means the process working directory.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		basePath = "."
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, now: time.Now}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// SaveBase64 decodes data and writes it to "{prefix}-{unixMillis}.png",
// overwriting any file of the same name. The returned filename is relative
// to the store root and the file is fully written when it returns.
func (s *FileStore) SaveBase64(ctx context.Context, data, prefix string) (string, error) {
	if s == nil {
		return "", domain.IO(errors.New("storage: no store configured"))
	}
	if err := ctx.Err(); err != nil {
		return "", domain.IO(err)
	}
	raw, err := decodeBase64(data)
	if err != nil {
		return "", domain.Remote(err, "")
	}
	filename := prefix + "-" + strconv.FormatInt(s.now().UnixMilli(), 10) + ".png"
	if err := os.WriteFile(filepath.Join(s.basePath, filename), raw, 0o644); err != nil {
		return "", domain.IO(fmt.Errorf("storage: write file: %w", err))
	}
	return filename, nil
}

// Open returns the named file for reading. Names must be bare filenames;
// anything containing a path separator is refused with ErrInvalidName.
func (s *FileStore) Open(name string) (*os.File, fs.FileInfo, error) {
	if s == nil {
		return nil, nil, errors.New("storage: no store configured")
	}
	if err := validateName(name); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.basePath, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("storage: open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("storage: stat file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, domain.ErrNotFound
	}
	return f, info, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	if filepath.Base(name) != name || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return ErrInvalidName
	}
	return nil
}

// decodeBase64 accepts padded and unpadded standard encodings.
func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	raw, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return raw, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(data); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("decode image data: %w", err)
}
