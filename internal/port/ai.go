package port

import "context"

// AIProvider generates the text behind executive summaries, insights and
// chat replies. A nil provider means text generation is not configured.
type AIProvider interface {
	ModelName() string

	// Chat answers userPrompt under systemPrompt. contextChunks carry audit
	// log excerpts and prior conversation turns.
	Chat(ctx context.Context, systemPrompt, userPrompt string, contextChunks []string) (string, error)
}
