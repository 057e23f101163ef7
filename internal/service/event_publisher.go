package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// EvaluationEvent describes a completed screening operation for downstream
// consumers (analytics, audit trails).
type EvaluationEvent struct {
	Operation  string    `json:"operation"`
	Provider   string    `json:"provider"`
	Candidates int       `json:"candidates"`
	TopScore   int       `json:"top_score"`
	EmittedAt  time.Time `json:"emitted_at"`
}

// EvaluationPublisher fans evaluation events out to interested consumers.
// Publishing is best-effort: failures are logged, never propagated.
type EvaluationPublisher interface {
	Publish(ctx context.Context, event EvaluationEvent)
}

type natsEvaluationPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSEvaluationPublisher builds a publisher emitting JSON events on
// "<subjectBase>.evaluations".
func NewNATSEvaluationPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EvaluationPublisher {
	subject := "screener.evaluations"
	if subjectBase != "" {
		subject = strings.ReplaceAll(subjectBase, ":", ".") + ".evaluations"
	}

	return &natsEvaluationPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "evaluation_publisher").Logger(),
	}
}

func (p *natsEvaluationPublisher) Publish(_ context.Context, event EvaluationEvent) {
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode evaluation event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish evaluation event")
	}
}
