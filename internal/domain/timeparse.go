package domain

import (
	"fmt"
	"strings"
	"time"
)

// WireTimeLayout is the absolute timestamp format sent to the remote source
// and written in flat exports (UTC, millisecond precision).
const WireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Accepted input layouts. Values without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the date-like strings accepted at the boundary and in
// remote payloads.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// FormatWireTime renders t in WireTimeLayout.
func FormatWireTime(t time.Time) string {
	return t.UTC().Format(WireTimeLayout)
}
