package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const openaiOK = `{
  "choices": [{"message": {"content": "EXAM_TYPE: YKS-TYT"}}],
  "model": "gpt-4o-mini-2024-07-18",
  "usage": {"prompt_tokens": 90, "completion_tokens": 7}
}`

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("text-only content should be a plain string: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want default %q", req.Model, "gpt-4o-mini")
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Write([]byte(openaiOK))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{UserMessage("hello")},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "EXAM_TYPE: YKS-TYT" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.InputTokens != 90 || resp.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d, want 90/7", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOpenAIProvider_Complete_ImageParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content []openaiPart `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		parts := req.Messages[0].Content
		if len(parts) != 2 {
			t.Errorf("got %d parts, want 2", len(parts))
			return
		}
		if parts[0].Type != "text" || parts[0].Text != "classify" {
			t.Errorf("first part = %+v", parts[0])
		}
		if parts[1].Type != "image_url" || parts[1].ImageURL.URL != "data:image/png;base64,YWJj" {
			t.Errorf("image part = %+v", parts[1])
		}
		w.Write([]byte(openaiOK))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL), WithOpenAIModel("gpt-4o"))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{UserMessage("classify", Image{MIMEType: "image/png", Data: []byte("abc")})},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestOpenAIProvider_Complete_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		noContent bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error": "rate limited"}`},
		{name: "malformed", status: http.StatusOK, body: `not json`},
		{name: "no choices", status: http.StatusOK, body: `{"choices": []}`, noContent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
			_, err := provider.Complete(context.Background(), CompletionRequest{
				Messages: []Message{UserMessage("hello")},
			})
			if err == nil {
				t.Fatal("Complete() should return error")
			}
			if tt.noContent && !errors.Is(err, ErrNoContent) {
				t.Errorf("error = %v, want ErrNoContent", err)
			}
		})
	}
}

func TestOpenAIProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unauthorized", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
			if err := provider.HealthCheck(context.Background()); (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
