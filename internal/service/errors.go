package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when a transaction does not exist for the calling
// owner. A record belonging to someone else yields the same error so that
// existence never leaks across owners.
var ErrNotFound = errors.New("transaction not found")

// ValidationError reports every violated input field, not just the first.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k + ": " + e.Fields[k])
	}
	return b.String()
}

// fieldErrors accumulates violations during input validation.
type fieldErrors map[string]string

func (f fieldErrors) add(field, reason string) {
	f[field] = reason
}

// err returns a *ValidationError when any violation was recorded, nil
// otherwise. Returned as error so callers get a true nil on success.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
