// Package export renders fetched audit-log result sets as downloadable
// documents.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
)

// Kind selects the export document format.
type Kind string

// Export kinds.
const (
	Structured Kind = "structured"
	Flat       Kind = "flat"
)

const flatHeader = "Timestamp,Event,Organization ID,Group ID,Project ID,Content"

// ParseKind maps a request value to a Kind. Empty means Structured.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json", "structured":
		return Structured, nil
	case "csv", "flat":
		return Flat, nil
	default:
		return "", domain.ErrValidation("format", "unsupported export format %q", s)
	}
}

// Format renders items in the given kind.
func Format(items []domain.LogRecord, kind Kind) ([]byte, error) {
	switch kind {
	case Structured:
		return formatStructured(items)
	case Flat:
		return formatFlat(items)
	default:
		return nil, domain.ErrValidation("format", "unsupported export format %q", kind)
	}
}

// ContentType returns the MIME type for kind.
func ContentType(kind Kind) string {
	if kind == Flat {
		return "text/csv"
	}
	return "application/json"
}

// Filename returns the attachment name, e.g. snyk-audit-logs-2024-05-01.csv.
func Filename(kind Kind, now time.Time) string {
	ext := "json"
	if kind == Flat {
		ext = "csv"
	}
	return fmt.Sprintf("snyk-audit-logs-%s.%s", now.UTC().Format(time.DateOnly), ext)
}

func formatStructured(items []domain.LogRecord) ([]byte, error) {
	if items == nil {
		items = []domain.LogRecord{}
	}
	out, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode structured export: %w", err)
	}
	return out, nil
}

// formatFlat writes one line per record. Only the content column is quoted;
// an event or id containing a comma produces a malformed line.
func formatFlat(items []domain.LogRecord) ([]byte, error) {
	lines := make([]string, 0, len(items))
	for _, rec := range items {
		content, err := contentJSON(rec.Content)
		if err != nil {
			return nil, fmt.Errorf("encode content of %q: %w", rec.ID, err)
		}
		lines = append(lines, strings.Join([]string{
			domain.FormatWireTime(rec.Created),
			rec.Event,
			domain.Deref(rec.OrgID),
			domain.Deref(rec.GroupID),
			domain.Deref(rec.ProjectID),
			`"` + strings.ReplaceAll(content, `"`, `""`) + `"`,
		}, ","))
	}
	return []byte(flatHeader + "\n" + strings.Join(lines, "\n")), nil
}

func contentJSON(content map[string]any) (string, error) {
	if content == nil {
		content = map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(content); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
