package domain

import "context"

// Image is one uploaded image handed to description providers.
type Image struct {
	Name string
	MIME string
	Data []byte
}

// Describer produces a free-text description of an image. Providers are
// attempted in a configured order; any single failure is non-fatal.
type Describer interface {
	Name() string
	Describe(ctx context.Context, img Image) (string, error)
}

// Generator turns a prompt into generated text. It is the contract of the
// structured-extraction service; output is intended JSON but may need cleanup.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
