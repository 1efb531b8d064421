package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ponto.service/internal/ports/messaging"
	"ponto.service/pkg/telemetry"
)

type EmailService interface {
	SendAdminExitNotice(ctx context.Context, to string, event messaging.AdminExitEvent) error
}

type SESEmailService struct {
	client *ses.Client
	sender string
}

func NewSESEmailService(client *ses.Client, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

// SendAdminExitNotice mails the audit notice for an administrative exit, so
// the override never happens silently.
func (s *SESEmailService) SendAdminExitNotice(ctx context.Context, to string, event messaging.AdminExitEvent) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	// Enrich span with employeeId if available in context
	if empID := telemetry.GetEmployeeIDFromContext(ctx); empID != "" {
		span.SetAttributes(attribute.String("app.employeeId", empID))
	}

	body := fmt.Sprintf(
		"An administrative exit was registered.\n\nEmployee: %s\nEffective at: %s\nResponsible: %s\n",
		event.EmployeeID,
		event.EffectiveAt.Format("2006-01-02 15:04"),
		event.ResponsibleAdmin,
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Administrative exit registered"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
