package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/snapquery/snapquery/internal/db"
)

const scoreField = "__vector_score"

// SearchKNN runs a K-nearest-neighbors query against an FT index and
// returns hits ordered by similarity, best first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.K <= 0 {
		return nil, db.NewError(db.OpSearch, q.IndexName, fmt.Errorf("k must be positive, got %d", q.K))
	}
	query := fmt.Sprintf("*=>[KNN %d @vector $BLOB AS %s]", q.K, scoreField)

	args := []string{q.IndexName, query}
	if len(q.ReturnFields) > 0 {
		ret := append([]string{scoreField}, q.ReturnFields...)
		args = append(args, "RETURN", strconv.Itoa(len(ret)))
		args = append(args, ret...)
	}
	args = append(args,
		"SORTBY", scoreField, "ASC",
		"PARAMS", "2", "BLOB", rueidis.BinaryString(vectorToBytes(q.Vector)),
		"DIALECT", "2",
	)

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	resp, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.NewError(db.OpSearch, q.IndexName, db.ErrIndexNotFound)
		}
		return nil, db.NewError(db.OpSearch, q.IndexName, err)
	}
	return parseKNNResult(q.IndexName, resp)
}

// vectorToBytes encodes a float32 vector as little-endian bytes, the
// layout RediSearch expects for FLOAT32 vector fields.
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// parseKNNResult decodes the RESP2 FT.SEARCH reply shape:
// [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(index string, resp []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(resp) == 0 {
		return nil, db.NewError(db.OpSearch, index, fmt.Errorf("empty search reply"))
	}
	total, err := resp[0].AsInt64()
	if err != nil {
		return nil, db.NewError(db.OpSearch, index, fmt.Errorf("parse total: %w", err))
	}

	result := &db.SearchResult{Total: int(total)}
	for i := 1; i+1 < len(resp); i += 2 {
		key, err := resp[i].ToString()
		if err != nil {
			return nil, db.NewError(db.OpSearch, index, fmt.Errorf("parse key at %d: %w", i, err))
		}
		fieldList, err := resp[i+1].ToArray()
		if err != nil {
			return nil, db.NewError(db.OpSearch, index, fmt.Errorf("parse fields for %q: %w", key, err))
		}
		fields, err := parseFieldPairs(fieldList)
		if err != nil {
			return nil, db.NewError(db.OpSearch, index, fmt.Errorf("parse fields for %q: %w", key, err))
		}

		entry := db.SearchEntry{Key: key, Fields: fields}
		if raw, ok := fields[scoreField]; ok {
			dist, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, db.NewError(db.OpSearch, index, fmt.Errorf("parse score for %q: %w", key, err))
			}
			// COSINE returns a distance in [0,2]; convert to similarity
			// and clamp so callers can treat the score as [0,1].
			entry.Score = math.Max(0, 1.0-dist)
			delete(fields, scoreField)
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

func parseFieldPairs(list []rueidis.RedisMessage) (map[string]string, error) {
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("odd field pair count %d", len(list))
	}
	fields := make(map[string]string, len(list)/2)
	for i := 0; i < len(list); i += 2 {
		name, err := list[i].ToString()
		if err != nil {
			return nil, fmt.Errorf("field name at %d: %w", i, err)
		}
		value, err := list[i+1].ToString()
		if err != nil {
			return nil, fmt.Errorf("field value for %q: %w", name, err)
		}
		fields[strings.TrimPrefix(name, "$.")] = value
	}
	return fields, nil
}
