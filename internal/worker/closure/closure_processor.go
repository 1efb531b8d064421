package closure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"ponto.service/internal/core/model"
	"ponto.service/internal/ports/messaging"
	"ponto.service/internal/ports/repository"
	"ponto.service/internal/worker/legacyapi"
)

// ClosureProcessor handles jobs from the closure queue, forwarding closed
// punch pairs to the legacy payroll system. It uses a circuit breaker to
// avoid hammering the legacy system if it's having issues.
type ClosureProcessor struct {
	jobs    repository.ClosureJobStore
	payroll legacyapi.PayrollClient
	cb      *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the closure queue. It sets up a
// circuit breaker to protect the legacy API from being overwhelmed.
func NewProcessor(jobs repository.ClosureJobStore, payroll legacyapi.PayrollClient) *ClosureProcessor {
	settings := gobreaker.Settings{
		Name:        "Legacy-Payroll",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &ClosureProcessor{
		jobs:    jobs,
		payroll: payroll,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// Process handles one message from the closure queue. The job row keyed by
// the entrada punch ID makes redeliveries idempotent: a pair already marked
// completed is skipped.
func (p *ClosureProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.PairClosedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal pair closed event")
		return false, 0, err // Do not retry on malformed message
	}

	job, err := p.jobs.Get(ctx, event.EntradaID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get closure job: %w", err)
	}
	if job == nil {
		// The API creates the job before publishing; a missing row means the
		// create lost a race with delivery. Retry shortly.
		return true, 10, fmt.Errorf("no closure job for entrada %s yet", event.EntradaID)
	}

	if job.ClosureStatus == model.StatusClosureCompleted {
		log.Ctx(ctx).Info().Str("entrada_id", event.EntradaID).Msg("Pair already forwarded. Skipping.")
		return false, 0, nil
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.payroll.RecordClosure(ctx, event)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; skipping legacy payroll call")
		}
		newCount := job.ClosureRetryCount + 1
		p.jobs.UpdateClosureStatus(ctx, event.EntradaID, model.StatusClosurePending, newCount)

		delay := calculateBackoff(newCount)
		return true, delay, err
	}

	err = p.jobs.UpdateClosureStatus(ctx, event.EntradaID, model.StatusClosureCompleted, 0)
	return false, 0, err
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return backoff
}
