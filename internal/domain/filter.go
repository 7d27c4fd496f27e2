package domain

import (
	"strings"
	"time"
)

// Page size bounds.
const (
	DefaultPageSize = 50
	MinPageSize     = 1
	MaxPageSize     = 100
)

// FilterParams is the inbound filter request as received at the boundary.
// Dates are still strings here; Normalize turns them into a QueryFilter.
type FilterParams struct {
	From          string   `json:"from,omitempty"`
	To            string   `json:"to,omitempty"`
	Events        []string `json:"events,omitempty"`
	ExcludeEvents []string `json:"excludeEvents,omitempty"`
	Size          int      `json:"size,omitempty"`
	Cursor        string   `json:"cursor,omitempty"`
	Search        string   `json:"search,omitempty"`
}

// QueryFilter is a validated filter. From is inclusive, To is exclusive.
// Search is never forwarded to the remote source.
type QueryFilter struct {
	From          *time.Time
	To            *time.Time
	Events        []string
	ExcludeEvents []string
	Size          int
	Cursor        string
	Search        string
}

// Normalize validates the params and returns a fresh QueryFilter.
// A zero Size means the default page size.
func (p FilterParams) Normalize() (QueryFilter, error) {
	f := QueryFilter{
		Events:        compact(p.Events),
		ExcludeEvents: compact(p.ExcludeEvents),
		Size:          p.Size,
		Cursor:        strings.TrimSpace(p.Cursor),
		Search:        strings.TrimSpace(p.Search),
	}

	if f.Size == 0 {
		f.Size = DefaultPageSize
	}
	if f.Size < MinPageSize || f.Size > MaxPageSize {
		return QueryFilter{}, ErrValidation("size", "must be between %d and %d, got %d", MinPageSize, MaxPageSize, p.Size)
	}

	if p.From != "" {
		t, err := ParseTime(p.From)
		if err != nil {
			return QueryFilter{}, ErrValidation("from", "%q is not a valid date", p.From)
		}
		f.From = &t
	}
	if p.To != "" {
		t, err := ParseTime(p.To)
		if err != nil {
			return QueryFilter{}, ErrValidation("to", "%q is not a valid date", p.To)
		}
		f.To = &t
	}
	return f, nil
}

// WithSize returns a copy of the filter with a different page size.
func (f QueryFilter) WithSize(size int) QueryFilter {
	f.Size = size
	return f
}

// WithCursor returns a copy of the filter resuming after cursor.
func (f QueryFilter) WithCursor(cursor string) QueryFilter {
	f.Cursor = cursor
	return f
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ResultPage is one page of records, newest first. Total counts every record
// matching the filter before pagination.
type ResultPage struct {
	Items      []LogRecord `json:"items"`
	Total      int         `json:"total"`
	NextCursor string      `json:"nextCursor,omitempty"`
}
