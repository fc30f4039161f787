package notifier

import (
	"context"
	"fmt"
	"net/http"

	"stablebook/pkg/client"
	"stablebook/pkg/kafka"
	"stablebook/pkg/logger"
	"stablebook/pkg/model"
)

// Webhook is satisfied by *client.HttpClient.
type Webhook interface {
	POST(ctx context.Context, path string, body any, headers map[string]string) (*client.Response, error)
}

// Delivery hands reservation notifications to the outbound webhook, or only
// logs them when no webhook is configured.
type Delivery struct {
	webhook Webhook
	log     *logger.Logger
}

func NewDelivery(webhook Webhook, log *logger.Logger) *Delivery {
	return &Delivery{webhook: webhook, log: log}
}

// Handle is a kafka.MessageHandler. Undecodable payloads and 4xx answers are
// permanent and go to the dead letter topic; 5xx and network errors retry.
func (d *Delivery) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != model.EventReservationCreated {
		d.log.Warn("Skipping unknown event type", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var notification model.ReservationNotification
	if err := msg.DecodeValue(&notification); err != nil {
		return err
	}
	if notification.RecipientID == "" || notification.Reservation.ID == "" {
		return kafka.NewPermanentError("notification without recipient or reservation", kafka.ErrInvalidMessage)
	}

	if d.webhook == nil {
		d.log.Info("Reservation notification",
			"recipient_id", notification.RecipientID,
			"reservation_id", notification.Reservation.ID,
			"batch_id", notification.BatchID,
			"correlation_id", msg.GetCorrelationID(),
		)
		return nil
	}

	resp, err := d.webhook.POST(ctx, "", notification, map[string]string{
		"X-Event-ID":       msg.GetEventID(),
		"X-Correlation-ID": msg.GetCorrelationID(),
	})
	if err != nil {
		return kafka.NewTransientError("webhook request failed", err)
	}
	if resp.IsSuccess() {
		d.log.Debug("Notification delivered",
			"recipient_id", notification.RecipientID,
			"reservation_id", notification.Reservation.ID,
		)
		return nil
	}

	statusErr := fmt.Errorf("webhook answered %d", resp.StatusCode)
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return kafka.NewTransientError("webhook unavailable", statusErr)
	}
	return kafka.NewPermanentError("webhook rejected notification", statusErr)
}
