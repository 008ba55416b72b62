// Package storage persists uploaded images and produces the public
// references embedded in search results.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores images on the local filesystem under a public directory
// served by the HTTP layer.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the directory if needed and returns a Local store.
// baseURL is the public URL prefix, e.g. "http://localhost:8080".
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &Local{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory images are written to.
func (l *Local) Dir() string { return l.dir }

// Save writes data under name, appending a numeric suffix on collision
// so repeated uploads never overwrite each other. Returns the stored name.
func (l *Local) Save(_ context.Context, name string, data []byte) (string, error) {
	stored := sanitizeName(name)
	ext := filepath.Ext(stored)
	base := strings.TrimSuffix(stored, ext)

	for i := 0; ; i++ {
		candidate := stored
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(l.dir, candidate)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", candidate, err)
		}
		return candidate, nil
	}
}

// Ref returns the public URL for a stored image name.
func (l *Local) Ref(name string) string {
	return l.baseURL + "/public/" + name
}

// sanitizeName strips any path components from an uploaded filename.
func sanitizeName(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "image"
	}
	return name
}
