package snyk

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
)

var parserPool fastjson.ParserPool

// normalizer turns Snyk search responses into canonical records. Items come
// either as JSON:API resources (attributes/relationships) or flat objects;
// nested locations are checked before flat ones.
type normalizer struct {
	now   func() time.Time
	newID func() string
}

func (n normalizer) page(body []byte) (*domain.ResultPage, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	root, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	items := itemList(root)
	records := make([]domain.LogRecord, 0, len(items))
	for _, item := range items {
		records = append(records, n.record(item))
	}

	total := len(records)
	if c := root.GetInt("meta", "count"); c > 0 {
		total = c
	} else if t := root.GetInt("total"); t > 0 {
		total = t
	}

	return &domain.ResultPage{
		Items:      records,
		Total:      total,
		NextCursor: nextCursor(root),
	}, nil
}

// itemList accepts `data: [...]`, a top-level array, or `{items: [...]}`
// under data or at the top level.
func itemList(root *fastjson.Value) []*fastjson.Value {
	data := root.Get("data")
	if data == nil || data.Type() == fastjson.TypeNull {
		data = root
	}
	if data.Type() == fastjson.TypeArray {
		items, _ := data.Array()
		return items
	}
	if items := data.Get("items"); items != nil && items.Type() == fastjson.TypeArray {
		arr, _ := items.Array()
		return arr
	}
	return nil
}

func (n normalizer) record(item *fastjson.Value) domain.LogRecord {
	orgID := lookupString(item, []string{"relationships", "org", "data", "id"}, []string{"orgId"}, []string{"org_id"})
	groupID := lookupString(item, []string{"relationships", "group", "data", "id"}, []string{"groupId"}, []string{"group_id"})
	projectID := lookupString(item, []string{"relationships", "project", "data", "id"}, []string{"projectId"}, []string{"project_id"})

	rec := domain.LogRecord{
		ID:        lookupString(item, []string{"id"}, []string{"uuid"}),
		Event:     lookupString(item, []string{"attributes", "event"}, []string{"event"}),
		Content:   lookupObject(item, []string{"attributes", "content"}, []string{"content"}, []string{"data"}),
		OrgID:     domain.StringPtr(orgID),
		GroupID:   domain.StringPtr(groupID),
		ProjectID: domain.StringPtr(projectID),
	}

	if rec.ID == "" {
		rec.ID = n.newID()
	}
	if rec.Event == "" {
		rec.Event = domain.DefaultEvent
	}

	rec.Created = n.now().UTC()
	if raw := lookupString(item, []string{"attributes", "created"}, []string{"created"}, []string{"timestamp"}); raw != "" {
		if t, err := domain.ParseTime(raw); err == nil {
			rec.Created = t
		}
	}
	return rec
}

// lookupString returns the first non-empty string (or number) found along paths.
func lookupString(item *fastjson.Value, paths ...[]string) string {
	for _, path := range paths {
		v := item.Get(path...)
		if v == nil {
			continue
		}
		switch v.Type() {
		case fastjson.TypeString:
			if b, _ := v.StringBytes(); len(b) > 0 {
				return string(b)
			}
		case fastjson.TypeNumber:
			return v.String()
		}
	}
	return ""
}

// lookupObject returns the first JSON object found along paths, or an empty map.
func lookupObject(item *fastjson.Value, paths ...[]string) map[string]any {
	for _, path := range paths {
		v := item.Get(path...)
		if v == nil || v.Type() != fastjson.TypeObject {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(v.MarshalTo(nil), &m); err == nil && m != nil {
			return m
		}
	}
	return map[string]any{}
}

// nextCursor extracts starting_after from links.next. Any failure means no
// further pages.
func nextCursor(root *fastjson.Value) string {
	next := root.Get("links", "next")
	if next == nil {
		return ""
	}

	var href string
	switch next.Type() {
	case fastjson.TypeString:
		b, _ := next.StringBytes()
		href = string(b)
	case fastjson.TypeObject:
		href = string(next.GetStringBytes("href"))
	}
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("starting_after")
}

// errorMessage prefers errors[0].detail, then message, then the raw body.
func errorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("Snyk API error: %d", status)

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		if raw := strings.TrimSpace(string(body)); raw != "" {
			return raw
		}
		return fallback
	}
	if detail := v.GetStringBytes("errors", "0", "detail"); len(detail) > 0 {
		return string(detail)
	}
	if msg := v.GetStringBytes("message"); len(msg) > 0 {
		return string(msg)
	}
	return fallback
}
