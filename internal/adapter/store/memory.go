package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// MemoryLogCache is the process-wide mirror of fetched audit records.
// Records live until the process exits unless maxRecords bounds the cache.
type MemoryLogCache struct {
	mu         sync.RWMutex
	records    map[string]domain.LogRecord
	order      []string // insertion order, used for eviction
	maxRecords int
}

// NewMemoryLogCache creates an empty cache. maxRecords <= 0 means unbounded.
func NewMemoryLogCache(maxRecords int) *MemoryLogCache {
	return &MemoryLogCache{
		records:    make(map[string]domain.LogRecord),
		maxRecords: maxRecords,
	}
}

var _ port.LogCache = (*MemoryLogCache)(nil)

// Insert stores rec under its ID. A colliding ID silently replaces the
// previous record; repeated fetches of the same page therefore do not grow
// the cache.
func (c *MemoryLogCache) Insert(_ context.Context, rec domain.LogRecord) (domain.LogRecord, error) {
	if rec.ID == "" {
		return domain.LogRecord{}, domain.ErrValidation("id", "record id is required")
	}
	if rec.Event == "" {
		return domain.LogRecord{}, domain.ErrValidation("event", "record event is required")
	}
	if rec.Content == nil {
		rec.Content = map[string]any{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[rec.ID]; !exists {
		c.order = append(c.order, rec.ID)
	}
	c.records[rec.ID] = rec

	if c.maxRecords > 0 && len(c.order) > c.maxRecords {
		evict := len(c.order) - c.maxRecords
		for _, id := range c.order[:evict] {
			delete(c.records, id)
		}
		c.order = slices.Clone(c.order[evict:])
		slog.Warn("audit log cache full, evicted oldest records", "evicted", evict, "max", c.maxRecords)
	}
	return rec, nil
}

// Query filters, sorts newest first and paginates the cached records.
func (c *MemoryLogCache) Query(_ context.Context, f domain.QueryFilter) (*domain.ResultPage, error) {
	size := f.Size
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	search := strings.ToLower(f.Search)

	c.mu.RLock()
	matched := make([]domain.LogRecord, 0, len(c.records))
	for _, rec := range c.records {
		if matches(rec, f, search) {
			matched = append(matched, rec)
		}
	}
	c.mu.RUnlock()

	// Ties on created are broken by id so cursors stay stable across calls.
	slices.SortFunc(matched, func(a, b domain.LogRecord) int {
		if c := b.Created.Compare(a.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	start := 0
	if f.Cursor != "" {
		if i := slices.IndexFunc(matched, func(r domain.LogRecord) bool { return r.ID == f.Cursor }); i >= 0 {
			start = i + 1
		}
	}
	end := min(start+size, len(matched))

	items := make([]domain.LogRecord, 0, end-start)
	items = append(items, matched[start:end]...)

	page := &domain.ResultPage{Items: items, Total: len(matched)}
	if len(items) == size && end < len(matched) {
		page.NextCursor = items[len(items)-1].ID
	}
	return page, nil
}

func matches(rec domain.LogRecord, f domain.QueryFilter, search string) bool {
	if f.From != nil && rec.Created.Before(*f.From) {
		return false
	}
	if f.To != nil && !rec.Created.Before(*f.To) {
		return false
	}
	if len(f.Events) > 0 && !slices.Contains(f.Events, rec.Event) {
		return false
	}
	if len(f.ExcludeEvents) > 0 && slices.Contains(f.ExcludeEvents, rec.Event) {
		return false
	}
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Event), search) {
		return true
	}
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(content)), search)
}

// Get returns the record with the given ID.
func (c *MemoryLogCache) Get(_ context.Context, id string) (domain.LogRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[id]
	if !ok {
		return domain.LogRecord{}, port.ErrRecordNotFound
	}
	return rec, nil
}

// All returns every cached record in no particular order.
func (c *MemoryLogCache) All(_ context.Context) ([]domain.LogRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.LogRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	return out, nil
}

// Len returns the number of cached records.
func (c *MemoryLogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
