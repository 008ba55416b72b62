// Package extract turns free-text image descriptions into structured records.
//
// The happy path asks a text-generation service for JSON and parses it after
// cleanup. Every failure mode along that path degrades to a deterministic
// keyword heuristic over the raw description, so extraction never errors.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/metrics"
)

const extractionPrompt = `Based on this image description, extract information as JSON:

Description: %s

Return ONLY valid JSON in this exact format (no other text):
{
    "sign_used": "describe any hand signs or 'none'",
    "number_of_people": 0,
    "landscape_description": "brief setting description",
    "weather": "weather condition or 'unknown'",
    "mood": "overall mood/atmosphere"
}`

// Extractor derives structured records from descriptions via a Generator,
// falling back to the keyword heuristic when generation or parsing fails.
type Extractor struct {
	gen    domain.Generator
	logger *zap.Logger
}

// New creates an Extractor. gen may be nil, in which case every extraction
// uses the fallback heuristic.
func New(gen domain.Generator, logger *zap.Logger) *Extractor {
	return &Extractor{gen: gen, logger: logger}
}

// Extract produces a record for one image. It never returns an error: any
// generation or parse failure yields the heuristic record instead.
func (e *Extractor) Extract(ctx context.Context, description, imageName string) domain.ImageRecord {
	if e.gen == nil {
		metrics.ExtractionFallbackTotal.Inc()
		return FallbackRecord(description, imageName)
	}

	raw, err := e.gen.Generate(ctx, fmt.Sprintf(extractionPrompt, description))
	if err != nil {
		metrics.ExtractionFallbackTotal.Inc()
		e.logger.Warn("structured extraction call failed, using heuristic",
			zap.String("image", imageName), zap.Error(err))
		return FallbackRecord(description, imageName)
	}

	rec, err := ParseStructured(raw, imageName)
	if err != nil {
		metrics.ExtractionFallbackTotal.Inc()
		e.logger.Warn("structured extraction output unusable, using heuristic",
			zap.String("image", imageName), zap.Error(err))
		return FallbackRecord(description, imageName)
	}
	return rec
}

// ParseStructured parses intended-JSON generator output into a record.
// It strips surrounding code fences, locates the outermost {...} span, and
// fills missing fields with defaults.
func ParseStructured(raw, imageName string) (domain.ImageRecord, error) {
	cleaned := stripCodeFences(strings.TrimSpace(raw))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return domain.ImageRecord{}, errors.New("no JSON object found in output")
	}
	cleaned = cleaned[start : end+1]

	var rec domain.ImageRecord
	if err := json.Unmarshal([]byte(cleaned), &rec); err != nil {
		return domain.ImageRecord{}, fmt.Errorf("decode metadata JSON: %w", err)
	}

	rec.ImageName = imageName
	rec.Normalize()
	return rec, nil
}

// stripCodeFences removes ```json ... ``` or ``` ... ``` markup if present.
func stripCodeFences(s string) string {
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+len("```"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	return s
}
