package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/models"
)

func completionHandler(t *testing.T, reply func(prompt string) string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req models.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		resp := models.ChatCompletionResponse{
			Model: req.Model,
			Choices: []models.Choice{{
				Message:      models.ChatMessage{Role: "assistant", Content: reply(req.Messages[0].Content)},
				FinishReason: "stop",
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestSummarizeTwoStepChain(t *testing.T) {
	var prompts []string
	upstream := httptest.NewServer(completionHandler(t, func(prompt string) string {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return "- alienation\n- self-doubt"
		}
		return "An interpretation."
	}))
	defer upstream.Close()

	s, err := New([]config.ProviderConfig{
		{Name: "test", URL: upstream.URL, APIKey: "sk-1", Model: "gpt-4o-mini"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	summary, err := s.Summarize(context.Background(), "Creep", "Radiohead", "the lyrics")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "An interpretation." {
		t.Errorf("unexpected summary: %q", summary)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "Radiohead") {
		t.Error("first call should ask about the artist")
	}
	if !strings.Contains(prompts[1], "the lyrics") {
		t.Error("second call should include the lyrics")
	}
	if !strings.Contains(prompts[1], "alienation") {
		t.Error("second call should include the artist notes")
	}
}

func TestSummarizeProviderFallback(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	good := httptest.NewServer(completionHandler(t, func(string) string { return "ok" }))
	defer good.Close()

	s, err := New([]config.ProviderConfig{
		{Name: "primary", URL: bad.URL, Model: "m1"},
		{Name: "fallback", URL: good.URL, Model: "m2"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	summary, err := s.Summarize(context.Background(), "T", "A", "L")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "ok" {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestSummarizeFallbackOnClientError(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer bad.Close()

	good := httptest.NewServer(completionHandler(t, func(string) string { return "ok" }))
	defer good.Close()

	s, err := New([]config.ProviderConfig{
		{Name: "primary", URL: bad.URL, Model: "m1"},
		{Name: "fallback", URL: good.URL, Model: "m2"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	summary, err := s.Summarize(context.Background(), "T", "A", "L")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "ok" {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestSummarizeAllProvidersFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer bad.Close()

	s, err := New([]config.ProviderConfig{{Name: "only", URL: bad.URL, Model: "m"}}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Summarize(context.Background(), "T", "A", "L"); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestNewRequiresProviders(t *testing.T) {
	if _, err := New(nil, zerolog.Nop()); err == nil {
		t.Error("expected error for empty provider list")
	}
}
