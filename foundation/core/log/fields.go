// File: fields.go
// Title: Structured Log Fields
// Description: Key/value fields attached to log entries and their
//              conversion into zap fields.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation (entry.go)
// - 2026-10-14 v0.2.0: Converted to zap fields, entry type removed

package log

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Fields represents custom key-value pairs for structured logging
type Fields map[string]interface{}

// Field creates a single field for logging
func Field(key string, value interface{}) Fields {
	return Fields{key: value}
}

// Err creates an error field
func Err(err error) Fields {
	if err == nil {
		return Fields{}
	}
	return Fields{"error": err.Error()}
}

// Duration creates a duration field
func Duration(key string, d time.Duration) Fields {
	return Fields{key: d}
}

// Merge returns a new Fields with other layered over f
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// zapFields flattens fields into zap fields in stable key order
func (f Fields) zapFields() []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		switch v := f[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		case time.Duration:
			out = append(out, zap.Duration(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
