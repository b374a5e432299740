package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"imagestudio/internal/domain"
	"imagestudio/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Blob is raw media sent to the model.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one unit of a generation request: text or inline media.
type Part struct {
	Text        string
	InlineImage *Blob
}

// InlineData is media returned by the model, base64 encoded with the
// standard alphabet.
type InlineData struct {
	MIMEType string
	Data     string
}

// ResponsePart is one unit of a generation response. Exactly one of Text
// or InlineData is meaningful.
type ResponsePart struct {
	Text       string
	InlineData *InlineData
}

// HasImage reports whether the part carries inline image bytes.
func (p ResponsePart) HasImage() bool {
	return p.InlineData != nil && p.InlineData.Data != ""
}

// Generator submits content parts to a named model.
type Generator interface {
	Generate(ctx context.Context, model string, parts []Part) ([]ResponsePart, error)
}

// Client is a thin facade over the genai SDK. The SDK client is created on
// first use, so a missing API key is reported by the first Generate call
// rather than at startup.
type Client struct {
	opts   Options
	logger *infra.Logger

	mu  sync.Mutex
	sdk *genai.Client
}

// NewClient constructs a Gemini client. It never contacts the remote service.
func NewClient(opts Options) *Client {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{opts: opts, logger: logger}
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk != nil {
		return c.sdk, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:     c.opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.opts.BaseURL,
			APIVersion: c.opts.APIVersion,
		},
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.sdk = sdk
	return sdk, nil
}

// Generate performs a single generateContent call. Response parts of every
// candidate are returned in order. Failures are not retried.
func (c *Client) Generate(ctx context.Context, model string, parts []Part) ([]ResponsePart, error) {
	if len(parts) == 0 {
		return nil, domain.Remote(errors.New("gemini: no content parts"), "")
	}
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, domain.Remote(err, "")
	}

	contents := []*genai.Content{genai.NewContentFromParts(toSDKParts(parts), genai.RoleUser)}
	resp, err := sdk.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("model", model).Msg("gemini: generate content failed")
		return nil, domain.Remote(err, "")
	}
	if resp == nil {
		return nil, domain.Remote(errors.New("gemini: empty response"), "")
	}

	out := fromSDKResponse(resp)
	c.logger.Debug().
		Str("model", model).
		Int("candidates", len(resp.Candidates)).
		Int("parts", len(out)).
		Msg("gemini: generate content completed")
	return out, nil
}

func toSDKParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineImage != nil {
			out = append(out, genai.NewPartFromBytes(p.InlineImage.Data, p.InlineImage.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

func fromSDKResponse(resp *genai.GenerateContentResponse) []ResponsePart {
	var out []ResponsePart
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out = append(out, ResponsePart{InlineData: &InlineData{
					MIMEType: part.InlineData.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
				}})
				continue
			}
			if part.Text != "" {
				out = append(out, ResponsePart{Text: part.Text})
			}
		}
	}
	return out
}

var _ Generator = (*Client)(nil)
