package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOpenAIScorerRequiresKey(t *testing.T) {
	_, err := NewOpenAIScorer(OpenAIConfig{})
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewOpenAIScorer(OpenAIConfig{APIKey: "   "})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewOpenAIScorerDefaults(t *testing.T) {
	scorer, err := NewOpenAIScorer(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", scorer.cfg.Model)
	require.Equal(t, 300, scorer.cfg.MaxTokens)
	require.Equal(t, 30*time.Second, scorer.cfg.Timeout)
}

func TestBuildScoringPromptEmbedsAnswerAndRubric(t *testing.T) {
	prompt := buildScoringPrompt("I would shard the database.")
	require.Contains(t, prompt, `"""I would shard the database."""`)
	require.Contains(t, prompt, "score: integer 1-5")
	require.Contains(t, prompt, "5: Correct, complete, concise, shows depth or example.")
	require.Contains(t, prompt, "1: Incorrect/irrelevant.")
	require.Contains(t, prompt, "Return JSON only.")
}

func TestOpenAIScorerComplete(t *testing.T) {
	var authHeader string
	var requestBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		requestBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"score\":4,\"summary\":\"ok\",\"improvement\":\"ok\"}"}}]}`))
	}))
	defer server.Close()

	scorer, err := NewOpenAIScorer(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	raw, err := scorer.Complete(context.Background(), "answer")
	require.NoError(t, err)
	require.Equal(t, `{"score":4,"summary":"ok","improvement":"ok"}`, raw)
	require.Equal(t, "Bearer sk-test", authHeader)

	var sent struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(requestBody, &sent))
	require.Equal(t, "gpt-4o-mini", sent.Model)
	require.Equal(t, 300, sent.MaxTokens)
	require.Len(t, sent.Messages, 1)
	require.Equal(t, "user", sent.Messages[0].Role)
	require.Contains(t, sent.Messages[0].Content, `"""answer"""`)
}

func TestOpenAIScorerCompleteLegacyTextField(t *testing.T) {
	// Legacy-shaped responses carry the completion under choices[0].text.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"text":"{\"score\":5,\"summary\":\"Excellent.\",\"improvement\":\"None.\"}"}]}`))
	}))
	defer server.Close()

	scorer, err := NewOpenAIScorer(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	raw, err := scorer.Complete(context.Background(), "answer")
	require.NoError(t, err)

	result, err := ParseResult(raw)
	require.NoError(t, err)
	require.Equal(t, Result{Score: 5, Summary: "Excellent.", Improvement: "None."}, result)
}

func TestOpenAIScorerCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scorer, err := NewOpenAIScorer(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = scorer.Complete(context.Background(), "answer")
	require.Error(t, err)
}

func TestOpenAIScorerCompleteMissingContent(t *testing.T) {
	responseBody := `{"id":"cmpl-1","choices":[{"message":{"role":"assistant","content":""}}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}))
	defer server.Close()

	scorer, err := NewOpenAIScorer(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	raw, err := scorer.Complete(context.Background(), "answer")
	require.NoError(t, err)
	// The raw response body is handed back verbatim for the parser to attempt.
	require.Equal(t, responseBody, raw)
}
