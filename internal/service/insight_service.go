package service

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// Limits on how much audit data goes into a prompt.
const (
	summaryFetchLimit  = 500
	summaryPromptLimit = 200
	insightPromptLimit = 100
	chatContextLimit   = 50
	summaryTopEvents   = 5
	summaryWindow      = 24 * time.Hour
)

// Fixed replies shown instead of model output.
const (
	unknownUser          = "Unknown"
	summaryDateLayout    = "January 2, 2006"
	fallbackNoAI         = "AI analysis unavailable - no text generation endpoint configured"
	fallbackNoAIChat     = "AI chat unavailable - no text generation endpoint configured. Please contact your administrator."
	fallbackNoConfig     = "No API configuration found. Please configure your Snyk API settings."
	fallbackNoScope      = "No organization or group ID configured for analysis."
	fallbackNoLogs       = "No audit logs found in the last 24 hours for analysis."
	fallbackNoInsights   = "No insights generated"
	fallbackEmptyChat    = "I apologize, but I couldn't process your request at this time."
	fallbackEmptySummary = "Unable to generate summary. The AI service returned no content."
)

// InsightService produces AI summaries, insights and chat answers over the
// audit logs. A nil AI provider is a normal state: every operation then
// returns a fixed fallback message.
type InsightService struct {
	audit    *AuditService
	settings port.SettingsStore
	cache    port.LogCache
	chats    port.ChatStore
	ai       port.AIProvider
	now      func() time.Time
}

// NewInsightService creates a new insight service. ai may be nil.
func NewInsightService(audit *AuditService, settings port.SettingsStore, cache port.LogCache, chats port.ChatStore, ai port.AIProvider) *InsightService {
	return &InsightService{
		audit:    audit,
		settings: settings,
		cache:    cache,
		chats:    chats,
		ai:       ai,
		now:      time.Now,
	}
}

// promptRecord is the slice of a LogRecord shown to the model.
type promptRecord struct {
	Event   string         `json:"event"`
	Created time.Time      `json:"created"`
	Content map[string]any `json:"content"`
}

func toPrompt(records []domain.LogRecord, limit int) []promptRecord {
	n := min(len(records), limit)
	out := make([]promptRecord, n)
	for i := range n {
		out[i] = promptRecord{Event: records[i].Event, Created: records[i].Created, Content: records[i].Content}
	}
	return out
}

// ExecutiveSummary fetches the last 24 hours from the remote source and asks
// the model for an executive report.
func (s *InsightService) ExecutiveSummary(ctx context.Context) (string, error) {
	cfg, err := s.settings.GetConfiguration(ctx)
	if err != nil || cfg.SnykAPIToken == "" {
		return fallbackNoConfig, nil
	}
	if _, err := cfg.Scope(); err != nil {
		return fallbackNoScope, nil
	}

	now := s.now().UTC()
	records, err := s.audit.Collect(ctx, domain.FilterParams{
		From: domain.FormatWireTime(now.Add(-summaryWindow)),
		To:   domain.FormatWireTime(now),
	}, summaryFetchLimit)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return fallbackNoLogs, nil
	}
	stats := summarize(records[:min(len(records), summaryPromptLimit)])
	slog.Info("generating executive summary", "records", len(records), "events", stats.events, "users", stats.users)

	reply, err := s.generate(ctx, summarySystemPrompt, summaryPrompt(stats, now), nil)
	if errors.Is(err, port.ErrTextGenerationUnavailable) {
		return fallbackNoAI, nil
	}
	if err != nil {
		slog.Warn("executive summary generation failed", "error", err)
		return fmt.Sprintf("Summary generation error: %v", err), nil
	}
	if strings.TrimSpace(reply) == "" {
		return fallbackEmptySummary, nil
	}
	return reply, nil
}

type eventCount struct {
	Event string
	Count int
}

type summaryStats struct {
	events int
	users  int
	top    []eventCount
}

func summarize(records []domain.LogRecord) summaryStats {
	counts := make(map[string]int)
	users := make(map[string]struct{})
	for _, rec := range records {
		counts[rec.Event]++
		users[userOf(rec)] = struct{}{}
	}

	top := make([]eventCount, 0, len(counts))
	for ev, n := range counts {
		top = append(top, eventCount{Event: ev, Count: n})
	}
	slices.SortFunc(top, func(a, b eventCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Event, b.Event)
	})
	if len(top) > summaryTopEvents {
		top = top[:summaryTopEvents]
	}
	return summaryStats{events: len(records), users: len(users), top: top}
}

// userOf reads the acting user from content: user_email, then user_id.
func userOf(rec domain.LogRecord) string {
	for _, key := range []string{"user_email", "user_id"} {
		if v, ok := rec.Content[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return unknownUser
}

const summarySystemPrompt = `You are a security analyst writing executive reports about Snyk audit events.
Use proper Markdown formatting with headers, bullet points and bold text.`

func summaryPrompt(stats summaryStats, now time.Time) string {
	parts := make([]string, len(stats.top))
	for i, ec := range stats.top {
		parts[i] = fmt.Sprintf("%s: %d", ec.Event, ec.Count)
	}
	date := now.Format(summaryDateLayout)

	return fmt.Sprintf(`Create a comprehensive executive security summary for Snyk audit events from the last 24 hours.

IMPORTANT: Today's date is %s. Use this as the report date and reference timeframe.

Event Data: %d events, %d users
Top Events: %s

Generate a detailed executive report with these sections:

## Executive Security Summary
### Activity Overview
### Critical Events
### Risk Analysis
### User Activity Insights
### Recommendations (High/Medium/Low priority)
### Key Metrics & Trends`, date, stats.events, stats.users, strings.Join(parts, ", "))
}

// Insights asks the model for security insights over the cached records.
func (s *InsightService) Insights(ctx context.Context) ([]string, error) {
	records, err := s.cache.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cached logs: %w", err)
	}
	if len(records) == 0 {
		return []string{}, nil
	}
	sortNewestFirst(records)
	payload, err := json.MarshalIndent(toPrompt(records, insightPromptLimit), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	prompt := fmt.Sprintf(`Analyze these Snyk audit logs and provide security insights:

%s

Please provide:
1. Key security events summary
2. Risk patterns or anomalies
3. Recommendations for improvement
4. Overall security posture assessment

Format as a JSON array of string insights.`, payload)

	reply, err := s.generate(ctx, "You are a security analyst for Snyk audit logs.", prompt, nil)
	if errors.Is(err, port.ErrTextGenerationUnavailable) {
		return []string{fallbackNoAI}, nil
	}
	if err != nil {
		slog.Warn("insight generation failed", "error", err)
		return []string{fmt.Sprintf("Analysis error: %v", err)}, nil
	}
	return parseInsights(reply), nil
}

// parseInsights accepts a JSON string array, optionally inside a Markdown
// code fence. Anything else becomes a single insight.
func parseInsights(reply string) []string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return []string{fallbackNoInsights}
	}

	body := reply
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var insights []string
	if err := json.Unmarshal([]byte(body), &insights); err == nil {
		return insights
	}
	return []string{reply}
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	SessionID string               `json:"sessionId"`
	Response  string               `json:"response"`
	Messages  []domain.ChatMessage `json:"messages"`
}

// Chat answers a question about the cached logs inside a session. An unknown
// or empty session ID starts a new session.
func (s *InsightService) Chat(ctx context.Context, message, sessionID string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrValidation("message", "message is required")
	}

	records, err := s.cache.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cached logs: %w", err)
	}
	sortNewestFirst(records)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := domain.ChatMessage{Role: domain.RoleUser, Content: message, Timestamp: s.now().UTC()}
	reply := s.answer(ctx, message, records, session.Messages)
	assistantMsg := domain.ChatMessage{Role: domain.RoleAssistant, Content: reply, Timestamp: s.now().UTC()}

	messages := append(slices.Clone(session.Messages), userMsg, assistantMsg)
	updated, err := s.chats.UpdateSessionMessages(ctx, session.ID, messages)
	if err != nil {
		return nil, fmt.Errorf("update chat session: %w", err)
	}

	return &ChatResult{SessionID: updated.ID, Response: reply, Messages: updated.Messages}, nil
}

func (s *InsightService) session(ctx context.Context, id string) (*domain.ChatSession, error) {
	if id != "" {
		sess, err := s.chats.GetSession(ctx, id)
		if err == nil {
			return sess, nil
		}
		slog.Debug("chat session not found, starting a new one", "session_id", id)
	}
	sess, err := s.chats.CreateSession(ctx, domain.DefaultUserID)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return sess, nil
}

func (s *InsightService) answer(ctx context.Context, message string, records []domain.LogRecord, history []domain.ChatMessage) string {
	chunks := make([]string, 0, 2)
	if logs, err := json.MarshalIndent(toPrompt(records, chatContextLimit), "", "  "); err == nil {
		chunks = append(chunks, "Recent audit logs:\n"+string(logs))
	}
	if len(history) > 0 {
		lines := make([]string, len(history))
		for i, m := range history {
			lines[i] = m.Role + ": " + m.Content
		}
		chunks = append(chunks, "Previous conversation:\n"+strings.Join(lines, "\n"))
	}

	reply, err := s.generate(ctx, chatSystemPrompt, message, chunks)
	if errors.Is(err, port.ErrTextGenerationUnavailable) {
		return fallbackNoAIChat
	}
	if err != nil {
		slog.Warn("chat generation failed", "error", err)
		return fmt.Sprintf("I encountered an error: %v. Please try again.", err)
	}
	if strings.TrimSpace(reply) == "" {
		return fallbackEmptyChat
	}
	return reply
}

// generate calls the model, or fails with port.ErrTextGenerationUnavailable
// when none is configured.
func (s *InsightService) generate(ctx context.Context, system, prompt string, chunks []string) (string, error) {
	if s.ai == nil {
		return "", port.ErrTextGenerationUnavailable
	}
	return s.ai.Chat(ctx, system, prompt, chunks)
}

const chatSystemPrompt = `You are a security analyst assistant for Snyk audit logs.
You have access to recent audit log data and can help users understand security events,
identify patterns, and provide recommendations.

Respond in PLAIN TEXT only. Do not use Markdown formatting.`

func sortNewestFirst(records []domain.LogRecord) {
	slices.SortFunc(records, func(a, b domain.LogRecord) int {
		return b.Created.Compare(a.Created)
	})
}
