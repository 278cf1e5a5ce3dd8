package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fleet-service/internal/config"
	"fleet-service/internal/model"
)

type bookingCreatedEvent struct {
	BookingID   string    `json:"booking_id"`
	VehicleID   string    `json:"vehicle_id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone,omitempty"`
	ClientEmail string    `json:"client_email,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      string    `json:"status"`
}

type NotifierClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
	log           zerolog.Logger
}

func NewNotifierClient(cfg *config.Config, log zerolog.Logger) *NotifierClient {
	return &NotifierClient{
		baseURL:       cfg.ExternalServices.NotifierServiceURL,
		internalToken: cfg.ExternalServices.NotifierInternalToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// BookingCreated posts a booking-created event to the notification service.
// Failures are logged and returned, but callers treat delivery as best
// effort.
func (c *NotifierClient) BookingCreated(ctx context.Context, booking *model.Booking) error {
	if c.baseURL == "" {
		return nil
	}

	event := bookingCreatedEvent{
		BookingID:   booking.ID.String(),
		VehicleID:   booking.VehicleID.String(),
		ClientName:  booking.ClientName,
		ClientPhone: booking.ClientPhone,
		ClientEmail: booking.ClientEmail,
		StartAt:     booking.StartAt,
		EndAt:       booking.EndAt,
		Status:      string(booking.Status),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	endpoint := c.baseURL + "/internal/notifications/booking-created"

	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("notifier returned status %d: %s", resp.StatusCode, string(body))
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}

	c.log.Warn().Err(lastErr).Str("booking_id", booking.ID.String()).Msg("booking notification not delivered")
	return fmt.Errorf("notify after %d attempts: %w", maxRetries, lastErr)
}
