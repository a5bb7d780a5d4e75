// Package generation renders hairstyles onto portraits with a hosted Gemini image model.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/domain"
)

// Image is raw image bytes with their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// ContentGenerator is the model call the client depends on; *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client issues one generation call per hairstyle descriptor.
type Client struct {
	models      ContentGenerator
	model       string
	maxAttempts int
	retryDelay  time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewClient builds a Gemini API backed client.
func NewClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return New(gc.Models, cfg, logger), nil
}

// New wraps an existing ContentGenerator.
func New(models ContentGenerator, cfg config.GeminiConfig, logger *zap.Logger) *Client {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Client{
		models:      models,
		model:       cfg.ImageModel,
		maxAttempts: attempts,
		retryDelay:  cfg.RetryDelay(),
		callTimeout: cfg.CallTimeout(),
		logger:      logger,
	}
}

// Generate sends the portrait and the descriptor prompt and returns every image
// part of the response. An empty slice with a nil error means the model answered
// without an image.
func (c *Client) Generate(ctx context.Context, portrait Image, descriptor domain.Hairstyle) ([]Image, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(portrait.Data, portrait.MIMEType),
			genai.NewPartFromText(BuildPrompt(descriptor)),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.call(ctx, contents, cfg)
		if err == nil {
			return collectImages(resp), nil
		}
		lastErr = err
		if !IsRateLimited(err) || attempt == c.maxAttempts {
			break
		}

		c.logger.Warn("generation rate limited, retrying",
			zap.String("hairstyle", descriptor.Name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", c.retryDelay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return nil, fmt.Errorf("generate %q: %w", descriptor.Name, lastErr)
}

func (c *Client) call(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return c.models.GenerateContent(ctx, c.model, contents, cfg)
}

func collectImages(resp *genai.GenerateContentResponse) []Image {
	if resp == nil {
		return nil
	}
	var images []Image
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			images = append(images, Image{Data: part.InlineData.Data, MIMEType: mime})
		}
	}
	return images
}

// IsRateLimited reports whether err is a 429 or quota exhaustion from the model API.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}
