// Package llm produces song interpretation summaries via OpenAI-compatible
// chat completion providers. Providers are tried in their configured order;
// any failure, transport or HTTP, moves on to the next one.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/models"
)

// Summarizer generates interpretation summaries from lyrics.
type Summarizer struct {
	providers []config.ProviderConfig
	http      *http.Client
	log       zerolog.Logger
}

// New creates a Summarizer over the given provider chain.
func New(providers []config.ProviderConfig, log zerolog.Logger) (*Summarizer, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no llm providers configured")
	}
	return &Summarizer{
		providers: providers,
		http:      &http.Client{Timeout: 2 * time.Minute},
		log:       log,
	}, nil
}

// Summarize runs the two-step interpretation chain: gather the artist's
// recurring themes, then summarize the lyrics with that context.
func (s *Summarizer) Summarize(ctx context.Context, title, artist, lyrics string) (string, error) {
	artistInfo, err := s.complete(ctx, artistInfoPrompt(artist))
	if err != nil {
		return "", fmt.Errorf("collect artist info: %w", err)
	}

	summary, err := s.complete(ctx, summaryPrompt(lyrics, artistInfo))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return summary, nil
}

// complete sends a single-message chat completion, falling back through the
// provider chain.
func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, p := range s.providers {
		out, err := s.completeWith(ctx, p, prompt)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", p.Name).Msg("provider failed, trying next")
			lastErr = err
			continue
		}
		return out, nil
	}
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

func (s *Summarizer) completeWith(ctx context.Context, p config.ProviderConfig, prompt string) (string, error) {
	body, err := json.Marshal(models.ChatCompletionRequest{
		Model:    p.Model,
		Messages: []models.ChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.URL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("provider %s returned %d: %s", p.Name, resp.StatusCode, respBody)
	}

	var completion models.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices", p.Name)
	}
	return completion.Choices[0].Message.Content, nil
}
