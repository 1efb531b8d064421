package email

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"ponto.service/internal/core"
	"ponto.service/internal/core/model"
	"ponto.service/internal/ports/messaging"
	"ponto.service/internal/ports/repository"
)

// EmailProcessor turns admin exit events into notification emails. Normal
// saidas never reach this queue.
type EmailProcessor struct {
	emailService  core.EmailService
	jobs          repository.ClosureJobStore
	notifyAddress string
}

// NewProcessor sets up a new processor for handling email jobs. It needs an
// email service to send emails and the job store to keep redeliveries from
// sending twice.
func NewProcessor(emailService core.EmailService, jobs repository.ClosureJobStore, notifyAddress string) *EmailProcessor {
	return &EmailProcessor{
		emailService:  emailService,
		jobs:          jobs,
		notifyAddress: notifyAddress,
	}
}

// Process is the main entry point for handling a message from the email queue.
// It tries to send an email and will tell the worker to retry if something goes wrong.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.AdminExitEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal admin exit event")
		return false, 0, err // Do not retry on malformed message
	}

	job, err := p.jobs.Get(ctx, event.EntradaID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get closure job for email processing: %w", err)
	}
	if job == nil {
		return true, 10, fmt.Errorf("no closure job for entrada %s yet", event.EntradaID)
	}

	if job.EmailStatus == model.StatusEmailCompleted {
		log.Ctx(ctx).Info().Str("entrada_id", event.EntradaID).Msg("Email already sent. Skipping.")
		return false, 0, nil
	}

	err = p.emailService.SendAdminExitNotice(ctx, p.notifyAddress, event)
	if err != nil {
		newCount := job.EmailRetryCount + 1
		p.jobs.UpdateEmailStatus(ctx, event.EntradaID, model.StatusEmailPending, newCount)

		delay := calculateBackoff(newCount)
		return true, delay, err
	}

	err = p.jobs.UpdateEmailStatus(ctx, event.EntradaID, model.StatusEmailCompleted, 0)
	return false, 0, err
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry to avoid overwhelming a struggling service.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 { // Cap at 1 hour
		return 3600
	}
	return backoff
}
