package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// PaginatedResponse is the envelope for all paginated list endpoints.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ErrorResponse is the standard error envelope for API handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the standard envelope for operations with no payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// DateTime wraps time.Time with null-tolerant JSON and SQL handling: the
// zero value marshals to null and unmarshals from null or "".
type DateTime struct {
	time.Time
}

// Now returns the current moment as a DateTime.
func Now() DateTime { return DateTime{Time: time.Now()} }

// MarshalJSON renders RFC3339, or null for the zero value.
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.Format(time.RFC3339))), nil
}

// UnmarshalJSON accepts RFC3339 strings, null and "".
func (d *DateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// Value implements driver.Valuer.
func (d DateTime) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *DateTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = v
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("cannot scan %q into DateTime: %w", v, err)
		}
		d.Time = parsed
	default:
		return fmt.Errorf("cannot scan %T into DateTime", value)
	}
	return nil
}
