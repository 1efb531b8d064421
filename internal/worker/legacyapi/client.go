package legacyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"ponto.service/internal/ports/messaging"
)

// PayrollClient is the contract for the legacy payroll system that still owns
// wage calculation. Every closed pair must eventually be recorded there.
type PayrollClient interface {
	RecordClosure(ctx context.Context, event messaging.PairClosedEvent) error
}

// HTTPClient talks to the legacy payroll API over HTTP.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient new HTTPClient
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// RecordClosure sends the closed pair to the legacy payroll API.
func (c *HTTPClient) RecordClosure(ctx context.Context, event messaging.PairClosedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payroll payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create payroll request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call payroll api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("payroll api returned non-successful status code: %d", resp.StatusCode)
	}

	log.Ctx(ctx).Info().Str("employee_id", event.EmployeeID).Msg("Recorded pair closure in legacy payroll")
	return nil
}
