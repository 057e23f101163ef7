package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotConfigured indicates the remote scorer cannot be built because no API
// credential is present.
var ErrNotConfigured = errors.New("openai api key is not configured")

// ErrUpstream indicates the remote endpoint answered with a non-success status.
var ErrUpstream = errors.New("upstream returned non-success status")

var (
	remoteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "screener",
		Subsystem: "ai",
		Name:      "remote_call_duration_seconds",
		Help:      "Duration of remote scoring requests",
	}, []string{"model"})

	remoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "screener",
		Subsystem: "ai",
		Name:      "remote_call_failures_total",
		Help:      "Number of failed remote scoring requests",
	}, []string{"model"})
)

// scoringPromptTemplate instructs the model to answer with strict JSON only.
const scoringPromptTemplate = `You are an expert hiring screener. Evaluate the candidate's short answer and RETURN STRICT JSON (no extra commentary).
Output EXACTLY three fields:
- score: integer 1-5 (5 best)
- summary: one-line concise summary (<= 20 words)
- improvement: one short suggestion (<= 25 words)

Candidate says:
"""%s"""

Use these heuristics:
5: Correct, complete, concise, shows depth or example.
4: Mostly correct, minor missing detail.
3: Partially correct or incomplete.
2: Poor, big gaps.
1: Incorrect/irrelevant.

Return JSON only.`

// OpenAIConfig defines configuration options for the OpenAI remote scorer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIScorer implements RemoteScorer against an OpenAI-compatible chat
// completion endpoint. The call is made over plain HTTP rather than through a
// typed client so the raw response body stays available: degraded responses
// are handed to the parser verbatim instead of a lossy struct round-trip.
type OpenAIScorer struct {
	httpClient *http.Client
	baseURL    string
	cfg        OpenAIConfig
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewOpenAIScorer builds a remote scorer using the provided configuration.
func NewOpenAIScorer(cfg OpenAIConfig) (*OpenAIScorer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 300
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	tracer := otel.Tracer("github.com/hirelens-labs/screener-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIScorer{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cfg:        cfg,
		tracer:     tracer,
		logger:     logger,
	}, nil
}

// Complete sends the scoring prompt for the given answer and returns the raw
// completion text from the first choice, accepting both the chat shape
// (message.content) and the legacy shape (text). When neither field is
// present, the raw response body is returned so the parser can still attempt
// extraction.
func (s *OpenAIScorer) Complete(parent context.Context, answer string) (string, error) {
	ctx, span := s.tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	request := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildScoringPrompt(answer),
			},
		},
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	remoteDuration.WithLabelValues(s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(span, err)
		return "", fmt.Errorf("openai completion: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.fail(span, err)
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("%w: %d", ErrUpstream, resp.StatusCode)
		s.fail(span, err)
		return "", err
	}

	completion, found := extractCompletion(body)
	if !found {
		s.logger.Warn().Str("model", s.cfg.Model).Msg("completion content missing, returning raw response body")
	}
	return completion, nil
}

func (s *OpenAIScorer) fail(span trace.Span, err error) {
	remoteFailures.WithLabelValues(s.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// extractCompletion pulls the completion text from the first choice. The
// second return reports whether a completion field was present; when it is
// false the raw body is returned as degraded text.
func extractCompletion(body []byte) (string, bool) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Choices) > 0 {
		choice := parsed.Choices[0]
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, true
		}
		if text := strings.TrimSpace(choice.Text); text != "" {
			return text, true
		}
	}

	return string(body), false
}

func buildScoringPrompt(answer string) string {
	return fmt.Sprintf(scoringPromptTemplate, answer)
}
