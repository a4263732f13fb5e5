package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"stocklens/internal/chat"
)

func TestAssistantUpstreamCompletion(t *testing.T) {
	var gotAuth string
	var gotMessages []chatMessage
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Model    string        `json:"model"`
			Messages []chatMessage `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotMessages = req.Messages
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": chatMessage{Role: "assistant", Content: "AAPL looks steady."}},
			},
		})
	}))
	defer upstream.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewAssistant(upstream.URL, "test-key", "test-model", log)

	reply := a.Ask(context.Background(), "how is aapl?")
	if reply != "AAPL looks steady." {
		t.Errorf("reply = %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotMessages) < 2 || gotMessages[0].Role != "system" {
		t.Errorf("messages missing system prompt: %+v", gotMessages)
	}

	// The follow-up carries the previous exchange.
	a.Ask(context.Background(), "and tsla?")
	// system + user + assistant + new user
	if len(gotMessages) != 4 {
		t.Errorf("follow-up carried %d messages, want 4", len(gotMessages))
	}
}

func TestAssistantHistoryTrim(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewAssistant("", "", "", log) // canned path still records history

	for i := 0; i < 9; i++ {
		a.Ask(context.Background(), fmt.Sprintf("question %d", i))
	}

	a.mu.Lock()
	n := len(a.history)
	first := a.history[0]
	a.mu.Unlock()

	if n != maxHistoryMessages {
		t.Errorf("history length = %d, want %d", n, maxHistoryMessages)
	}
	if first.Content == "question 0" {
		t.Error("oldest exchange was not trimmed")
	}

	a.Clear()
	a.mu.Lock()
	n = len(a.history)
	a.mu.Unlock()
	if n != 0 {
		t.Errorf("history after Clear = %d entries", n)
	}
}

func TestAssistantUpstreamFailureFallsBack(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	want := chat.CannedResponse("should I buy?")

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"empty completion", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			defer upstream.Close()

			a := NewAssistant(upstream.URL, "k", "m", log)
			if got := a.Ask(context.Background(), "should I buy?"); got != want {
				t.Errorf("reply = %q, want canned fallback", got)
			}

			// The fallback exchange still lands in the history.
			a.mu.Lock()
			n := len(a.history)
			a.mu.Unlock()
			if n != 2 {
				t.Errorf("history length = %d, want 2", n)
			}
		})
	}
}
