package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

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

// Vision describes images through the OpenAI-compatible chat API with
// multimodal content.
type Vision struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// NewVision creates a vision describer.
func NewVision(cfg *Config) *Vision {
	return &Vision{
		client:   newClient(cfg),
		model:    cfg.VisionModel,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Name implements domain.Describer.
func (v *Vision) Name() string { return v.provider }

// Describe implements domain.Describer.
func (v *Vision) Describe(ctx context.Context, img domain.Image) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		img.MIME, base64.StdEncoding.EncodeToString(img.Data))

	req := openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: describePrompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
				},
			},
		}},
	}

	start := time.Now()
	resp, err := v.client.CreateChatCompletion(ctx, req)
	metrics.VisionRequestDuration.WithLabelValues(v.provider).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrVisionProviderError, v.provider, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: %s: empty completion", domain.ErrVisionProviderError, v.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
