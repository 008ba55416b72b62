// Package gemini provides image description and text generation through
// the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/metrics"
)

const describePrompt = `Analyze this image and provide:
1. Number of people in the image
2. Any hand signs visible (V-sign, thumbs-up, peace sign, etc.) or 'none'
3. Landscape/setting description (indoor/outdoor, beach, mountains, city, etc.)
4. Weather condition if visible (sunny, cloudy, rainy, etc.) or 'unknown'
5. Overall mood/atmosphere of the image

Be concise and factual.`

// Client wraps a Gemini generative model as both describer and generator.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// New creates a Gemini client for the given model name.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{
		client: c,
		model:  c.GenerativeModel(model),
		logger: logger,
	}, nil
}

// Name implements domain.Describer.
func (c *Client) Name() string { return "gemini" }

// Describe implements domain.Describer using inline image data.
func (c *Client) Describe(ctx context.Context, img domain.Image) (string, error) {
	format := strings.TrimPrefix(img.MIME, "image/")
	if format == "" {
		format = "jpeg"
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx,
		genai.Text(describePrompt),
		genai.ImageData(format, img.Data))
	metrics.VisionRequestDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrVisionProviderError, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: gemini: empty response", domain.ErrVisionProviderError)
	}
	return text, nil
}

// Generate implements domain.Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}

// HealthCheck verifies the API is reachable with a minimal generation.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.model.GenerateContent(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
