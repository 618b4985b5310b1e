package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIEnricher_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEnricher("", "gpt-4o-mini", "")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAIEnricher_Defaults(t *testing.T) {
	svc, err := NewOpenAIEnricher("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enr := svc.(*OpenAIEnricher)
	if enr.model != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %s", enr.model)
	}
	if enr.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %s", enr.baseURL)
	}
}

func newChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", got)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestEnrich_ParsesModelOutput(t *testing.T) {
	server := newChatServer(t, `{"summary": "Explains the sync pipeline.", "tags": ["sync", "indexing"]}`)
	defer server.Close()

	svc, err := NewOpenAIEnricher("sk-test", "gpt-4o-mini", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Enrich(context.Background(), "Sync Guide", "# Sync Guide\n\nHow syncing works.\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "Explains the sync pipeline." {
		t.Errorf("unexpected summary %q", result.Summary)
	}
	if len(result.Tags) != 2 || result.Tags[0] != "sync" {
		t.Errorf("unexpected tags %v", result.Tags)
	}
}

func TestEnrich_ToleratesFencedJSON(t *testing.T) {
	server := newChatServer(t, "```json\n{\"summary\": \"S.\", \"tags\": [\"a\"]}\n```")
	defer server.Close()

	svc, err := NewOpenAIEnricher("sk-test", "gpt-4o-mini", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Enrich(context.Background(), "T", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "S." {
		t.Errorf("unexpected summary %q", result.Summary)
	}
}

func TestEnrich_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit", "code": "429"}}`))
	}))
	defer server.Close()

	svc, err := NewOpenAIEnricher("sk-test", "gpt-4o-mini", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Enrich(context.Background(), "T", "content"); err == nil {
		t.Error("expected error from API failure")
	}
}

func TestEnrich_RejectsEmptySummary(t *testing.T) {
	server := newChatServer(t, `{"summary": "", "tags": []}`)
	defer server.Close()

	svc, err := NewOpenAIEnricher("sk-test", "gpt-4o-mini", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Enrich(context.Background(), "T", "content"); err == nil {
		t.Error("expected error for empty summary")
	}
}
