package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/iamsuganthi/log-sniffer/internal/adapter/ai"
	"github.com/iamsuganthi/log-sniffer/internal/adapter/snyk"
	"github.com/iamsuganthi/log-sniffer/internal/adapter/store"
	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/handler"
	"github.com/iamsuganthi/log-sniffer/internal/mcp"
	"github.com/iamsuganthi/log-sniffer/internal/middleware"
	"github.com/iamsuganthi/log-sniffer/internal/port"
	"github.com/iamsuganthi/log-sniffer/internal/service"
	"github.com/iamsuganthi/log-sniffer/pkg/config"
)

const version = "1.0.0"

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	slog.Info("🚀 Starting Snyk audit dashboard",
		"port", cfg.Port,
		"snyk_base_url", cfg.SnykBaseURL,
		"ai_enabled", cfg.AIEnabled(),
		"mcp_enabled", cfg.MCPEnabled,
		"cache_max_records", cfg.CacheMaxRecords,
	)

	// ── Stores (in-memory, process lifetime) ─────────────────────────────
	logCache := store.NewMemoryLogCache(cfg.CacheMaxRecords)
	settingsStore := store.NewSettingsStore()
	chatStore := store.NewChatStore()

	// ── Adapters ─────────────────────────────────────────────────────────
	snykSources := snyk.NewFactory(cfg.SnykBaseURL, cfg.SnykHTTPTimeout, cfg.SnykRateLimitRPS, cfg.SnykRateLimitBurst)

	var textGen port.AIProvider
	if cfg.AIEnabled() {
		textGen = ai.NewOllamaProvider(ai.OllamaConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		})
		slog.Info("🤖 Text generation enabled", "url", cfg.OllamaChatURL, "model", textGen.ModelName())
	} else {
		slog.Warn("OLLAMA_CHAT_URL not set, AI features will return fallback messages")
	}

	// ── Services ─────────────────────────────────────────────────────────
	auditService := service.NewAuditService(settingsStore, snykSources, logCache)
	settingsService := service.NewSettingsService(settingsStore, snykSources)
	insightService := service.NewInsightService(auditService, settingsStore, logCache, chatStore, textGen)

	if err := settingsService.Seed(context.Background(), domain.ConfigurationInput{
		SnykAPIToken: cfg.SnykAPIToken,
		OrgID:        cfg.SnykOrgID,
		GroupID:      cfg.SnykGroupID,
		APIVersion:   cfg.SnykAPIVersion,
	}); err != nil {
		slog.Error("failed to seed Snyk configuration", "error", err)
		os.Exit(1)
	}

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(slog.Default()))
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	api := app.Group("/api")

	// Health check
	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "healthy",
			"app":           cfg.AppName,
			"version":       version,
			"cached_record": logCache.Len(),
		})
	})

	handler.NewConfigHandler(settingsService).Register(api)
	handler.NewAuditHandler(auditService).Register(api)
	handler.NewInsightHandler(insightService).Register(api)
	handler.NewStreamHandler(auditService).Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(auditService, insightService, cfg.AppName, version, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
