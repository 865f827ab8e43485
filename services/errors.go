package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/dabhanushali/enacton-training/database"
)

var (
	ErrNotFound          = database.ErrNotFound
	ErrDuplicate         = database.ErrDuplicate
	ErrForbidden         = errors.New("not allowed for this role")
	ErrConflict          = errors.New("conflicting state")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBadReference      = errors.New("referenced record does not exist")
)

// ValidationError is a rejected input with one message per field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldMessages returns the per-field messages
func (e *ValidationError) FieldMessages() map[string]string {
	return e.Fields
}

// invalid builds a single-field validation error
func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
