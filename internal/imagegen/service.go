package imagegen

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"imagestudio/internal/domain"
	"imagestudio/internal/infra"
	"imagestudio/internal/providers/gemini"
	"imagestudio/internal/upload"
)

const (
	GeneratedPrefix = "generated"
	EditedPrefix    = "edited"

	MsgPromptRequired      = "Prompt required"
	MsgImageAndPrompt      = "Image and prompt required"
	MsgNoImageReturned     = "No image returned"
	MsgNoEditedImage       = "No edited image returned"
	defaultSourceImageMIME = "image/png"
)

// Store persists base64 image payloads and returns the stored filename.
type Store interface {
	SaveBase64(ctx context.Context, data, prefix string) (string, error)
}

// Service runs the generate and edit request lifecycles: validate, call the
// model once, persist the first returned image.
type Service struct {
	generator gemini.Generator
	store     Store
	model     string
	logger    *infra.Logger
}

func NewService(generator gemini.Generator, store Store, model string, logger *infra.Logger) *Service {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	if strings.TrimSpace(model) == "" {
		model = infra.DefaultGeminiModel
	}
	return &Service{generator: generator, store: store, model: model, logger: logger}
}

// Model returns the configured model identifier.
func (s *Service) Model() string {
	return s.model
}

// Generate turns a text prompt into a stored PNG and returns its filename.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.Validation(MsgPromptRequired)
	}

	parts, err := s.generator.Generate(ctx, s.model, []gemini.Part{{Text: prompt}})
	if err != nil {
		return "", asRemote(err)
	}
	return s.persistFirstImage(ctx, parts, GeneratedPrefix, MsgNoImageReturned)
}

// Edit sends prompt and the uploaded source image to the model and stores
// the result. The upload is released on every return path.
func (s *Service) Edit(ctx context.Context, prompt string, source *upload.TempFile) (string, error) {
	defer s.release(source)

	prompt = strings.TrimSpace(prompt)
	if source == nil || prompt == "" {
		return "", domain.Validation(MsgImageAndPrompt)
	}

	data, err := source.ReadAll()
	if err != nil {
		return "", domain.IO(err)
	}

	parts, err := s.generator.Generate(ctx, s.model, []gemini.Part{
		{Text: prompt},
		{InlineImage: &gemini.Blob{MIMEType: SourceMIMEType(data), Data: data}},
	})
	if err != nil {
		return "", asRemote(err)
	}
	return s.persistFirstImage(ctx, parts, EditedPrefix, MsgNoEditedImage)
}

// persistFirstImage stores the first inline image in parts. Later image parts
// are ignored.
func (s *Service) persistFirstImage(ctx context.Context, parts []gemini.ResponsePart, prefix, missing string) (string, error) {
	for i, part := range parts {
		if !part.HasImage() {
			continue
		}
		if extra := countImages(parts[i+1:]); extra > 0 {
			s.logger.Debug().Int("ignored", extra).Str("prefix", prefix).Msg("imagegen: additional image parts ignored")
		}
		filename, err := s.store.SaveBase64(ctx, part.InlineData.Data, prefix)
		if err != nil {
			return "", err
		}
		s.logger.Info().Str("filename", filename).Str("model", s.model).Msg("imagegen: image stored")
		return filename, nil
	}
	return "", domain.Remote(errors.New("imagegen: response contained no inline image"), missing)
}

func (s *Service) release(source *upload.TempFile) {
	if err := source.Release(); err != nil {
		s.logger.Warn().Err(err).Msg("imagegen: failed to remove upload")
	}
}

// SourceMIMEType sniffs an uploaded image. Anything not recognised as an
// image is sent as image/png.
func SourceMIMEType(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return defaultSourceImageMIME
}

func countImages(parts []gemini.ResponsePart) int {
	n := 0
	for _, p := range parts {
		if p.HasImage() {
			n++
		}
	}
	return n
}

func asRemote(err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	return domain.Remote(err, "")
}
