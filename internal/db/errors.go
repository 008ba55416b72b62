package db

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrIndexNotFound is returned when an FT index does not exist.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexExists is returned when creating an index that already exists.
	ErrIndexExists = errors.New("index already exists")
	// ErrConnFailed is returned when the store is unreachable.
	ErrConnFailed = errors.New("connection failed")
)

// Op identifies the store operation that produced an error.
type Op string

const (
	OpPing        Op = "ping"
	OpHSet        Op = "hset"
	OpDel         Op = "del"
	OpScan        Op = "scan"
	OpGet         Op = "get"
	OpSet         Op = "set"
	OpCreateIndex Op = "create_index"
	OpDropIndex   Op = "drop_index"
	OpIndexInfo   Op = "index_info"
	OpSearch      Op = "search"
)

// Error wraps a store error with the operation and key that caused it.
type Error struct {
	Op  Op
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("db: %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("db: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error, preserving sentinel errors for errors.Is.
func NewError(op Op, key string, err error) *Error {
	return &Error{Op: op, Key: key, Err: err}
}
