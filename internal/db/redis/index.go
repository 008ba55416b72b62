package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/snapquery/snapquery/internal/db"
)

// CreateIndex issues FT.CREATE for the definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return db.NewError(db.OpCreateIndex, def.Name, err)
	}
	args := []string{
		"ON", "HASH",
		"PREFIX", "1", def.Prefix,
		"SCHEMA",
	}
	for _, f := range def.Fields {
		switch f.Type {
		case db.FieldTypeVector:
			args = append(args, f.Name, "VECTOR", "FLAT", "6",
				"TYPE", "FLOAT32",
				"DIM", strconv.Itoa(f.VectorDim),
				"DISTANCE_METRIC", f.VectorMetric,
			)
		default:
			args = append(args, f.Name, string(f.Type))
		}
	}
	cmd := s.client.B().Arbitrary("FT.CREATE").Args(def.Name).Args(args...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return db.NewError(db.OpCreateIndex, def.Name, db.ErrIndexExists)
		}
		return db.NewError(db.OpCreateIndex, def.Name, err)
	}
	return nil
}

// DropIndex issues FT.DROPINDEX. The underlying documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.client.B().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return db.NewError(db.OpDropIndex, name, db.ErrIndexNotFound)
		}
		return db.NewError(db.OpDropIndex, name, err)
	}
	return nil
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.client.B().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, db.NewError(db.OpIndexInfo, name, err)
	}
	return true, nil
}

func isUnknownIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index") || strings.Contains(msg, "no such index")
}
