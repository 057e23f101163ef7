package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hirelens-labs/screener-api/internal/dto"
	"github.com/hirelens-labs/screener-api/pkg/ai"
)

// ErrEmptyBatch indicates a ranking request carried zero candidates. It is the
// only evaluation-path error surfaced to callers.
var ErrEmptyBatch = errors.New("no candidates provided")

const (
	answerPrefix = "candidate says:"

	providerRemote   = "remote"
	providerFallback = "fallback"
	providerCache    = "cache"
)

var evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "screener",
	Subsystem: "evaluation",
	Name:      "results_total",
	Help:      "Evaluations completed, labelled by the path that produced the result",
}, []string{"provider"})

// EvaluationService grades candidate answers and ranks batches of them.
type EvaluationService interface {
	Evaluate(ctx context.Context, text string) dto.EvaluationResponse
	Rank(ctx context.Context, payload dto.RankRequest) (dto.RankResponse, error)
}

type evaluationService struct {
	remote      ai.RemoteScorer
	cache       ResultCache
	events      EvaluationPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	concurrency int
}

// NewEvaluationService constructs the evaluation engine. A nil remote scorer
// forces the heuristic path; cache and events are optional and may be nil.
func NewEvaluationService(remote ai.RemoteScorer, cache ResultCache, events EvaluationPublisher, validate *validator.Validate, concurrency int, logger zerolog.Logger) EvaluationService {
	if concurrency <= 0 {
		concurrency = 4
	}

	return &evaluationService{
		remote:      remote,
		cache:       cache,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/hirelens-labs/screener-api/internal/service/evaluation"),
		concurrency: concurrency,
	}
}

// Evaluate grades a single answer. It never fails: every fault on the remote
// path is absorbed by falling open to the deterministic heuristic.
func (s *evaluationService) Evaluate(ctx context.Context, text string) dto.EvaluationResponse {
	ctx, span := s.tracer.Start(ctx, "screening.evaluate")
	defer span.End()

	result, provider := s.evaluateText(ctx, text)
	span.SetAttributes(
		attribute.Int("screening.score", result.Score),
		attribute.String("screening.provider", provider),
	)

	s.publish(ctx, EvaluationEvent{Operation: "evaluate", Provider: provider, Candidates: 1, TopScore: result.Score})

	return dto.EvaluationResponse{
		Score:       result.Score,
		Summary:     result.Summary,
		Improvement: result.Improvement,
	}
}

// Rank evaluates all candidates concurrently, then orders them by descending
// score with ties broken by descending summary length. Relative input order is
// preserved for exact (score, summary-length) ties.
func (s *evaluationService) Rank(ctx context.Context, payload dto.RankRequest) (dto.RankResponse, error) {
	if len(payload.Candidates) == 0 {
		return dto.RankResponse{}, ErrEmptyBatch
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RankResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "screening.rank", trace.WithAttributes(
		attribute.Int("screening.batch_size", len(payload.Candidates)),
	))
	defer span.End()

	ranked := make([]dto.RankedCandidate, len(payload.Candidates))
	group := &errgroup.Group{}
	group.SetLimit(s.concurrency)
	for i, candidate := range payload.Candidates {
		group.Go(func() error {
			result, _ := s.evaluateText(ctx, candidate.Text)
			ranked[i] = dto.RankedCandidate{
				ID:          candidate.ID,
				Text:        candidate.Text,
				Score:       result.Score,
				Summary:     result.Summary,
				Improvement: result.Improvement,
			}
			return nil
		})
	}
	// Per-candidate evaluations cannot fail, so the join only waits for all
	// of them to finish. A slow or degraded remote call affects only its own
	// candidate.
	_ = group.Wait()

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		// Summary length is measured in characters, not bytes.
		return utf8.RuneCountInString(ranked[i].Summary) > utf8.RuneCountInString(ranked[j].Summary)
	})

	span.SetAttributes(attribute.Int("screening.top_score", ranked[0].Score))
	s.publish(ctx, EvaluationEvent{Operation: "rank", Provider: s.providerName(), Candidates: len(ranked), TopScore: ranked[0].Score})

	return dto.RankResponse{Ranked: ranked}, nil
}

// evaluateText normalizes the answer and routes it to the remote scorer or the
// heuristic, reporting which path produced the result.
func (s *evaluationService) evaluateText(ctx context.Context, raw string) (ai.Result, string) {
	answer := normalizeAnswer(raw)

	if s.remote == nil {
		evaluationsTotal.WithLabelValues(providerFallback).Inc()
		return ai.HeuristicScore(answer), providerFallback
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, answer); ok {
			evaluationsTotal.WithLabelValues(providerCache).Inc()
			return cached, providerCache
		}
	}

	result, provider := s.scoreRemote(ctx, answer)
	evaluationsTotal.WithLabelValues(provider).Inc()

	if s.cache != nil {
		s.cache.Set(ctx, answer, result)
	}

	return result, provider
}

func (s *evaluationService) scoreRemote(ctx context.Context, answer string) (ai.Result, string) {
	raw, err := s.remote.Complete(ctx, answer)
	if err != nil {
		s.logger.Warn().Err(err).Msg("remote scoring failed, using heuristic fallback")
		return ai.HeuristicScore(answer), providerFallback
	}

	result, err := ai.ParseResult(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("model output unparseable, using heuristic fallback")
		return ai.HeuristicScore(answer), providerFallback
	}

	// Model text is untrusted; strip any markup before it reaches clients.
	result.Summary = strings.TrimSpace(s.sanitizer.Sanitize(result.Summary))
	result.Improvement = strings.TrimSpace(s.sanitizer.Sanitize(result.Improvement))

	return result, providerRemote
}

func (s *evaluationService) providerName() string {
	if s.remote == nil {
		return providerFallback
	}
	return providerRemote
}

func (s *evaluationService) publish(ctx context.Context, event EvaluationEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, event)
}

// normalizeAnswer trims the input and strips a leading "Candidate says:"
// annotation so callers can pass either a bare answer or a transcript line.
func normalizeAnswer(raw string) string {
	text := strings.TrimSpace(raw)
	if len(text) >= len(answerPrefix) && strings.EqualFold(text[:len(answerPrefix)], answerPrefix) {
		if _, rest, found := strings.Cut(text, ":"); found {
			text = strings.TrimSpace(rest)
		}
	}
	return text
}
