package validators

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
)

// QueryParams reads typed values from a request's query string. Every parse
// failure is a validation error naming the offending field.
type QueryParams struct {
	values url.Values
}

func Query(r *http.Request) QueryParams {
	return QueryParams{values: r.URL.Query()}
}

func (q QueryParams) raw(key string) (string, error) {
	vals := q.values[key]
	switch len(vals) {
	case 0:
		return "", nil
	case 1:
		return strings.TrimSpace(vals[0]), nil
	}
	return "", fieldError(key, "query parameter given more than once", nil)
}

// Int returns def when key is absent.
func (q QueryParams) Int(key string, def, min, max int) (int, error) {
	v, err := q.OptionalInt(key, min, max)
	if err != nil || v == nil {
		return def, err
	}
	return *v, nil
}

// OptionalInt returns nil when key is absent.
func (q QueryParams) OptionalInt(key string, min, max int) (*int, error) {
	raw, err := q.raw(key)
	if err != nil || raw == "" {
		return nil, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fieldError(key, "query parameter must be numeric", nil)
	}
	if value < min || value > max {
		return nil, fieldError(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return &value, nil
}

// String returns the sanitized value of key, or "" when absent or repeated.
func (q QueryParams) String(key string, maxLen int) string {
	raw, err := q.raw(key)
	if err != nil {
		return ""
	}
	return SanitizeString(raw, maxLen)
}

// First returns the first non-empty value among alias keys.
func (q QueryParams) First(maxLen int, keys ...string) string {
	for _, key := range keys {
		if v := q.String(key, maxLen); v != "" {
			return v
		}
	}
	return ""
}

func fieldError(field, message string, extra map[string]any) error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}
