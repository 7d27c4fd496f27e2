package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/export"
	"github.com/iamsuganthi/log-sniffer/internal/service"
)

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	audit *service.AuditService
	now   func() time.Time
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit, now: time.Now}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	logs := router.Group("/audit-logs")
	logs.Get("/", h.List)
	logs.Get("/cached", h.Cached)
	logs.Get("/export", h.Export)
}

// List fetches one page from Snyk and mirrors it into the cache.
func (h *AuditHandler) List(c fiber.Ctx) error {
	params, err := filterParams(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.audit.FetchAuditLogs(c.Context(), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Cached queries the local cache, honoring search.
func (h *AuditHandler) Cached(c fiber.Ctx) error {
	params, err := filterParams(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.audit.QueryCache(c.Context(), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Export downloads up to service.MaxExportRecords records as JSON or CSV.
func (h *AuditHandler) Export(c fiber.Ctx) error {
	kind, err := export.ParseKind(c.Query("format", "json"))
	if err != nil {
		return respondError(c, err)
	}
	params, err := filterParams(c)
	if err != nil {
		return respondError(c, err)
	}

	items, err := h.audit.CollectForExport(c.Context(), params)
	if err != nil {
		return respondError(c, err)
	}
	body, err := export.Format(items, kind)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, export.ContentType(kind))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.Filename(kind, h.now())))
	return c.Send(body)
}

// filterParams reads the filter from the query string. Event lists may be
// repeated (events=a&events=b), bracketed (events[]=a) or comma separated.
func filterParams(c fiber.Ctx) (domain.FilterParams, error) {
	p := domain.FilterParams{
		From:          c.Query("from"),
		To:            c.Query("to"),
		Events:        queryList(c, "events"),
		ExcludeEvents: queryList(c, "excludeEvents"),
		Cursor:        c.Query("cursor"),
		Search:        c.Query("search"),
	}
	if raw := strings.TrimSpace(c.Query("size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.FilterParams{}, domain.ErrValidation("size", "%q is not an integer", raw)
		}
		p.Size = n
	}
	return p, nil
}

func queryList(c fiber.Ctx, key string) []string {
	args := c.RequestCtx().QueryArgs()
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range args.PeekMulti(k) {
			for _, part := range strings.Split(string(v), ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}
