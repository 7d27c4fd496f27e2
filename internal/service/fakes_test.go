package service

import (
	"context"
	"sync"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   []domain.QueryFilter
	scopes  []domain.Scope
	fetchFn func(call int, scope domain.Scope, f domain.QueryFilter) (*domain.ResultPage, error)
	testFn  func() port.ConnectivityResult
}

func (f *fakeSource) FetchPage(_ context.Context, scope domain.Scope, filter domain.QueryFilter) (*domain.ResultPage, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, filter)
	f.scopes = append(f.scopes, scope)
	f.mu.Unlock()

	if f.fetchFn == nil {
		return &domain.ResultPage{Items: []domain.LogRecord{}}, nil
	}
	return f.fetchFn(call, scope, filter)
}

func (f *fakeSource) TestConnectivity(context.Context) port.ConnectivityResult {
	if f.testFn == nil {
		return port.ConnectivityResult{Success: true, Message: "Connection successful"}
	}
	return f.testFn()
}

type fakeFactory struct {
	src     *fakeSource
	token   string
	version string
}

func (f *fakeFactory) NewSource(token, apiVersion string) port.LogSource {
	f.token = token
	f.version = apiVersion
	return f.src
}

type fakeCache struct {
	port.LogCache
	insertFn func(rec domain.LogRecord) error
}

func (c *fakeCache) Insert(ctx context.Context, rec domain.LogRecord) (domain.LogRecord, error) {
	if c.insertFn != nil {
		if err := c.insertFn(rec); err != nil {
			return domain.LogRecord{}, err
		}
	}
	return c.LogCache.Insert(ctx, rec)
}

type fakeAI struct {
	mu     sync.Mutex
	system []string
	prompt []string
	chunks [][]string
	chatFn func(prompt string) (string, error)
}

func (a *fakeAI) ModelName() string { return "fake" }

func (a *fakeAI) Chat(_ context.Context, systemPrompt, userPrompt string, contextChunks []string) (string, error) {
	a.mu.Lock()
	a.system = append(a.system, systemPrompt)
	a.prompt = append(a.prompt, userPrompt)
	a.chunks = append(a.chunks, contextChunks)
	a.mu.Unlock()
	if a.chatFn == nil {
		return "ok", nil
	}
	return a.chatFn(userPrompt)
}
