// Package fields decodes partial updates submitted as JSON objects. Each
// resource declares the keys it accepts; anything else is rejected before
// the entity is touched.
package fields

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/curaious/devboard/internal/perrors"
	"github.com/google/uuid"
)

// Set is a decoded JSON object of field name to value.
type Set map[string]any

// Keys returns the field names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every field in key order and stops at the first error.
// An empty set is rejected.
func (s Set) Each(fn func(key string, v any) error) error {
	if len(s) == 0 {
		return perrors.NewErrInvalidInput("No fields to update", errors.New("update body is empty"))
	}
	for _, k := range s.Keys() {
		if err := fn(k, s[k]); err != nil {
			return err
		}
	}
	return nil
}

// Only reports whether s holds exactly key with the given string value.
func (s Set) Only(key, value string) bool {
	if len(s) != 1 {
		return false
	}
	v, ok := s[key].(string)
	return ok && v == value
}

// Invalid builds the error reported for a field that failed validation.
func Invalid(key, reason string) error {
	return perrors.NewErrInvalidInput(fmt.Sprintf("Invalid value for %q: %s", key, reason), fmt.Errorf("%s: %s", key, reason), map[string]any{"field": key})
}

// NotUpdatable is returned for keys outside a resource's allow-list.
func NotUpdatable(key string) error {
	return perrors.NewErrInvalidInput(fmt.Sprintf("Field %q cannot be updated", key), fmt.Errorf("field %s is not updatable", key), map[string]any{"field": key})
}

func String(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Invalid(key, "must be a string")
	}
	return strings.TrimSpace(s), nil
}

// RequiredString is String that rejects blank values.
func RequiredString(key string, v any) (string, error) {
	s, err := String(key, v)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", Invalid(key, "cannot be empty")
	}
	return s, nil
}

func Strings(key string, v any) ([]string, error) {
	switch vals := v.(type) {
	case []string:
		return vals, nil
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, Invalid(key, "must be a list of strings")
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	default:
		return nil, Invalid(key, "must be a list of strings")
	}
}

// Time accepts RFC 3339 timestamps and plain dates.
func Time(key string, v any) (time.Time, error) {
	s, err := RequiredString(key, v)
	if err != nil {
		return time.Time{}, err
	}
	return ParseTime(key, s)
}

func ParseTime(key, s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Invalid(key, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

func UUID(key string, v any) (uuid.UUID, error) {
	s, err := RequiredString(key, v)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, Invalid(key, "must be a valid id")
	}
	return id, nil
}

// OneOf checks that value is one of allowed.
func OneOf[T ~string](key string, value T, allowed ...T) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return Invalid(key, "must be one of "+strings.Join(names, ", "))
}

func Ptr[T any](v T) *T {
	return &v
}
