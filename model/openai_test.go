package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func openAICompletionBody(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func newOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %s", err)
	}
	return provider
}

func TestOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider("")
	if err == nil {
		t.Fatal("NewOpenAIProvider(\"\") error = nil, want client error")
	}
	if kind := KindOf(err); kind != KindClient {
		t.Errorf("KindOf(err) = %s, want %s", kind, KindClient)
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var body map[string]any
	provider := newOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %s", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAICompletionBody(`{"ok": true}`)))
	})

	response, err := provider.Complete(context.Background(), Request{
		Model: "gpt-4o",
		Messages: []Message{
			{Role: RoleSystem, Content: "you are a helper"},
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "earlier answer"},
		},
		Temperature: Temperature,
		JSONOnly:    true,
	})
	if err != nil {
		t.Fatalf("Complete() error = %s", err)
	}
	if response.Content != `{"ok": true}` {
		t.Errorf("Content = %q", response.Content)
	}
	if response.Usage.InputTokens != 12 || response.Usage.OutputTokens != 34 {
		t.Errorf("Usage = %+v", response.Usage)
	}

	if body["model"] != "gpt-4o" {
		t.Errorf("request model = %v", body["model"])
	}
	if body["temperature"] != Temperature {
		t.Errorf("request temperature = %v", body["temperature"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("request response_format = %v", body["response_format"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 3 {
		t.Fatalf("request has %d messages, want 3", len(messages))
	}
	for i, role := range []string{"system", "user", "assistant"} {
		m, _ := messages[i].(map[string]any)
		if m["role"] != role {
			t.Errorf("message %d role = %v, want %s", i, m["role"], role)
		}
	}
}

func TestOpenAIProvider_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		wantKind   ErrorKind
		wantDelay  time.Duration
	}{
		{"rate limit with retry-after", http.StatusTooManyRequests, "7", KindRateLimit, 7 * time.Second},
		{"rate limit without retry-after", http.StatusTooManyRequests, "", KindRateLimit, 0},
		{"server error", http.StatusInternalServerError, "", KindServer, 0},
		{"bad gateway", http.StatusBadGateway, "", KindServer, 0},
		{"auth failure", http.StatusUnauthorized, "", KindClient, 0},
		{"bad request", http.StatusBadRequest, "", KindClient, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": {"message": "nope", "type": "test"}}`))
			})

			_, err := provider.Complete(context.Background(), Request{
				Model:    "gpt-4o",
				Messages: []Message{{Role: RoleUser, Content: "hello"}},
			})
			if err == nil {
				t.Fatal("Complete() error = nil, want failure")
			}

			if kind := KindOf(err); kind != tt.wantKind {
				t.Errorf("KindOf(err) = %s, want %s", kind, tt.wantKind)
			}
			var tagged *Error
			if !errors.As(err, &tagged) {
				t.Fatalf("error %v is not a tagged *Error", err)
			}
			if tagged.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", tagged.StatusCode, tt.status)
			}
			if tagged.RetryAfter != tt.wantDelay {
				t.Errorf("RetryAfter = %s, want %s", tagged.RetryAfter, tt.wantDelay)
			}
		})
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	provider := newOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`))
	})

	_, err := provider.Complete(context.Background(), Request{
		Model:    "gpt-4o",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() error = nil, want parse error")
	}
	if kind := KindOf(err); kind != KindParse {
		t.Errorf("KindOf(err) = %s, want %s", kind, KindParse)
	}
}

func TestOpenAIProvider_ValidatesRequest(t *testing.T) {
	provider := newOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})

	if _, err := provider.Complete(context.Background(), Request{Model: "", Messages: []Message{{Role: RoleUser, Content: "x"}}}); err == nil {
		t.Error("Complete() with empty model succeeded, want client error")
	}
	if _, err := provider.Complete(context.Background(), Request{Model: "gpt-4o"}); err == nil {
		t.Error("Complete() with no messages succeeded, want client error")
	}
}
