package pool

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// probePrompt is the minimal chat-send body used to verify a credential is
// still accepted by the upstream, per §4.3 Mode B. It asks nothing of the
// model beyond a response — the manager discards the completion content.
const probePrompt = "Hi"

// payloadShape builds one candidate request body for a Mode B probe. Some
// families accept more than one shape depending on backend version; the
// probe tries each in order until one succeeds.
type payloadShape func(model string) any

// chatMessagesShape is the {model, messages: [...]} shape shared by every
// OpenAI-compatible and Claude-compatible family, built with go-openai's
// wire type rather than an ad-hoc struct.
func chatMessagesShape(model string) any {
	return struct {
		Model    string                         `json:"model"`
		Messages []openai.ChatCompletionMessage `json:"messages"`
	}{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: probePrompt},
		},
	}
}

// geminiContentsShape is Gemini's native {contents: [...]} request body.
func geminiContentsShape(model string) any {
	return struct {
		Model    string `json:"model"`
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}{
		Model: model,
		Contents: []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		}{
			{Role: "user", Parts: []struct {
				Text string `json:"text"`
			}{{Text: probePrompt}}},
		},
	}
}

// responsesInputShape is the {model, input} shape used by the Responses
// API family: input is an array of role/content objects, not a bare
// string.
func responsesInputShape(model string) any {
	return struct {
		Model string `json:"model"`
		Input []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"input"`
	}{
		Model: model,
		Input: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{{Role: "user", Content: probePrompt}},
	}
}

// kiroChatShape is Kiro's primary Mode B shape: chat messages capped to a
// single output token, since the probe only cares whether the call is
// accepted.
func kiroChatShape(model string) any {
	return struct {
		Model     string                         `json:"model"`
		Messages  []openai.ChatCompletionMessage `json:"messages"`
		MaxTokens int                             `json:"max_tokens"`
	}{
		Model:     model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: probePrompt}},
		MaxTokens: 1,
	}
}

// kiroContentsShape is Kiro's Mode B fallback shape when the chat-messages
// shape is rejected: Gemini-style contents, also capped to one output
// token.
func kiroContentsShape(model string) any {
	return struct {
		Model    string `json:"model"`
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		MaxTokens int `json:"max_tokens"`
	}{
		Model: model,
		Contents: []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		}{
			{Role: "user", Parts: []struct {
				Text string `json:"text"`
			}{{Text: probePrompt}}},
		},
		MaxTokens: 1,
	}
}

// probeShapes lists, in fallback order, the payload shapes a Mode B probe
// tries for each family. A family with more than one entry here means the
// upstream has historically accepted more than one request shape.
var probeShapes = map[Family][]payloadShape{
	FamilyGeminiCLIOAuth:    {geminiContentsShape},
	FamilyGeminiAntigravity: {geminiContentsShape},
	FamilyOpenAICustom:      {chatMessagesShape},
	FamilyClaudeCustom:      {chatMessagesShape},
	FamilyClaudeKiroOAuth:   {kiroChatShape, kiroContentsShape},
	FamilyOpenAIQwenOAuth:   {chatMessagesShape},
	FamilyOpenAIResponses:   {responsesInputShape, chatMessagesShape},
}

// probeEntry runs one health probe against an entry and returns the
// verdict plus, for an unhealthy verdict, a human-readable reason, per
// §4.3. It does not itself mutate the entry's health state — callers apply
// the verdict through MarkHealthy/MarkUnhealthy so event logging and
// persistence stay centralized.
func (m *Manager) probeEntry(ctx context.Context, family Family, e *Entry) (healthy bool, message string, err error) {
	if m.adapters == nil {
		return false, "", ErrNoAdapterFactory
	}

	adapter, err := m.adapterFor(family, e)
	if err != nil {
		return false, "", fmt.Errorf("pool: build adapter: %w", err)
	}

	if usageBasedFamilies[family] {
		healthy, message, err := m.probeModeA(ctx, family, adapter, e)
		if err == nil {
			return healthy, message, nil
		}
		// Fall through to Mode B on Mode A failure (§4.3: "falls back to
		// chat-send if quota-query is unavailable").
	}

	healthy, err = m.probeModeB(ctx, family, adapter, e.resolveCheckModel(family))
	return healthy, "", err
}

// probeModeA is the quota-query path: refresh (if supported), query usage
// limits, aggregate, and verdict on remaining balance. The returned
// message is only meaningful when healthy is false.
func (m *Manager) probeModeA(ctx context.Context, family Family, adapter Adapter, e *Entry) (bool, string, error) {
	if fr, ok := adapter.(ForceRefresher); ok {
		if err := fr.ForceRefreshToken(ctx); err != nil {
			// §4.3 step 1: a refresh failure is logged but does not abort
			// the probe — the usage query below still gets a chance to
			// succeed against the token as it stood.
			m.logger.Warnf("刷新令牌失败 %s/%s: %v", family, e.UUID, err)
		}
	} else if r, ok := adapter.(Refresher); ok {
		if err := r.RefreshToken(ctx); err != nil {
			m.logger.Warnf("刷新令牌失败 %s/%s: %v", family, e.UUID, err)
		}
	}

	querier, ok := adapter.(UsageQuerier)
	if !ok {
		return false, "", errors.New("pool: adapter does not support usage query")
	}

	raw, err := querier.GetUsageLimits(ctx)
	if err != nil {
		return false, "", fmt.Errorf("pool: usage query: %w", err)
	}

	info := FormatKiroUsage(raw)
	m.store.withEntry(family, e.UUID, func(entry *Entry) {
		entry.UsageInfo = info
	})
	if info.Healthy() {
		return true, "", nil
	}
	return false, info.VerdictMessage(), nil
}

// probeModeB is the chat-send path: try each payload shape in order until
// one round-trips successfully.
func (m *Manager) probeModeB(ctx context.Context, family Family, adapter Adapter, model string) (bool, error) {
	shapes := probeShapes[family]
	if len(shapes) == 0 {
		shapes = []payloadShape{chatMessagesShape}
	}

	var lastErr error
	for _, shape := range shapes {
		_, err := adapter.GenerateContent(ctx, model, shape(model))
		if err == nil {
			return true, nil
		}
		lastErr = err
	}
	return false, fmt.Errorf("pool: chat-send probe: %w", lastErr)
}

// adapterFor returns a cached adapter for the entry, constructing and
// caching a fresh one on miss.
func (m *Manager) adapterFor(family Family, e *Entry) (Adapter, error) {
	return m.adapterCache.getOrCreate(family, e.UUID, func() (Adapter, error) {
		return m.adapters.NewAdapter(family, e.UUID, e.Credentials, m.proxy)
	})
}
