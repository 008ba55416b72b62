package db

import (
	"fmt"
	"strings"
)

// FieldType enumerates the FT field types this service indexes.
type FieldType string

const (
	FieldTypeText   FieldType = "TEXT"
	FieldTypeTag    FieldType = "TAG"
	FieldTypeVector FieldType = "VECTOR"
)

// IndexField describes one field in an FT index schema.
type IndexField struct {
	Name string
	Type FieldType

	// Vector options, used when Type is FieldTypeVector.
	VectorDim    int
	VectorMetric string
}

// IndexDefinition describes an FT index over hash documents.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// Validate checks the definition before it is sent to the store.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if d.Prefix == "" {
		return fmt.Errorf("index %q: prefix is required", d.Name)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("index %q: at least one field is required", d.Name)
	}
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("index %q: field name is required", d.Name)
		}
		switch f.Type {
		case FieldTypeText, FieldTypeTag:
		case FieldTypeVector:
			if f.VectorDim <= 0 {
				return fmt.Errorf("index %q: field %q: vector dim must be positive", d.Name, f.Name)
			}
			if f.VectorMetric == "" {
				return fmt.Errorf("index %q: field %q: vector metric is required", d.Name, f.Name)
			}
		default:
			return fmt.Errorf("index %q: field %q: unsupported type %q", d.Name, f.Name, f.Type)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s is safe to embed in an FT command.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == ':' || r == '.':
		default:
			return false
		}
	}
	return !strings.HasPrefix(s, "-")
}
