package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes domain events to the closure and admin-exit queues
// through a MessageSender.
type Producer struct {
	sender          MessageSender
	closureQueueURL string
	emailQueueURL   string
}

func NewProducer(sender MessageSender, closureQueueURL, emailQueueURL string) *Producer {
	return &Producer{
		sender:          sender,
		closureQueueURL: closureQueueURL,
		emailQueueURL:   emailQueueURL,
	}
}

// NewSQSProducer wires a Producer to AWS SQS.
func NewSQSProducer(client SQSClient, closureQueueURL, emailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, closureQueueURL, emailQueueURL)
}

func (p *Producer) PublishClosure(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.closureQueueURL, body)
}

func (p *Producer) PublishAdminExit(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.emailQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with employee_id if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			EmployeeID string `json:"employeeId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.EmployeeID != "" {
			span.SetAttributes(attribute.String("app.employeeId", payload.EmployeeID))
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
