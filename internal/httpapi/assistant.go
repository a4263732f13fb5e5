package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"stocklens/internal/chat"
)

const systemContext = `You are Sentio, an expert AI trading assistant for the StockLens platform.
You help users with:
- Stock market analysis and sentiment
- Technical indicators and chart patterns
- Price predictions and trends
- Portfolio recommendations
- Market news interpretation

Always provide helpful, accurate information and remind users that this is for educational purposes.
Keep responses concise and actionable. Use bullet points when listing multiple items.`

// maxHistoryMessages bounds the server-side conversation history; the
// oldest user/assistant pair is dropped once it is exceeded.
const maxHistoryMessages = 10

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant proxies chat messages to an OpenAI-compatible completion
// endpoint, holding one global conversation history. With no API key it
// answers from the local canned table, so the server works offline.
type Assistant struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *slog.Logger

	mu      sync.Mutex
	history []chatMessage
}

// NewAssistant creates an assistant against the given completion endpoint.
func NewAssistant(apiURL, apiKey, model string, log *slog.Logger) *Assistant {
	return &Assistant{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		log:        log.With("component", "assistant"),
	}
}

// Ask answers one user message and records the exchange in the history.
// Upstream failures are absorbed: the caller always gets a displayable
// reply, falling back to the canned table when the completion call fails.
func (a *Assistant) Ask(ctx context.Context, message string) string {
	if a.apiKey == "" || a.apiURL == "" {
		reply := chat.CannedResponse(message)
		a.record(message, reply)
		return reply
	}

	a.mu.Lock()
	messages := make([]chatMessage, 0, len(a.history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemContext})
	messages = append(messages, a.history...)
	messages = append(messages, chatMessage{Role: "user", Content: message})
	a.mu.Unlock()

	reply, err := a.complete(ctx, messages)
	if err != nil {
		a.log.Warn("completion failed, answering from canned table", "error", err)
		reply = chat.CannedResponse(message)
	}
	a.record(message, reply)
	return reply
}

// Clear resets the conversation history.
func (a *Assistant) Clear() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}

func (a *Assistant) record(question, answer string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history,
		chatMessage{Role: "user", Content: question},
		chatMessage{Role: "assistant", Content: answer},
	)
	if len(a.history) > maxHistoryMessages {
		a.history = a.history[2:]
	}
}

func (a *Assistant) complete(ctx context.Context, messages []chatMessage) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":    a.model,
		"messages": messages,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("assistant read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant: status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("assistant decode: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("assistant: empty completion")
	}
	return out.Choices[0].Message.Content, nil
}
