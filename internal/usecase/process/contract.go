package process

import (
	"context"

	"github.com/snapquery/snapquery/internal/domain"
)

// ImageStore persists uploaded image bytes under collision-avoiding names
// and resolves stored names into public references.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Ref(name string) string
}

// Describer produces a free-text description of an image. The processing
// service consumes the provider chain through this narrow contract.
type Describer interface {
	Describe(ctx context.Context, img domain.Image) (string, error)
}

// Extractor derives a structured record from a description. Implementations
// never fail; they degrade to heuristics instead.
type Extractor interface {
	Extract(ctx context.Context, description, imageName string) domain.ImageRecord
}
