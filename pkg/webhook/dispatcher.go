package webhook

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/crashlog/pkg/config"
	"github.com/ccollicutt/crashlog/pkg/output"
)

// Delivery outcomes.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Delivery records one attempt to notify a webhook.
type Delivery struct {
	Webhook    string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Outcome returns OutcomeSent or OutcomeFailed.
func (d Delivery) Outcome() string {
	if d.Err != nil {
		return OutcomeFailed
	}
	return OutcomeSent
}

// Dispatcher fans a crash report out to every configured webhook.
type Dispatcher struct {
	client   *Client
	webhooks []config.WebhookConfig
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil client or logger gets a default.
func NewDispatcher(client *Client, webhooks []config.WebhookConfig, logger *zap.Logger) *Dispatcher {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		client:   client,
		webhooks: webhooks,
		logger:   logger,
	}
}

// Webhooks returns the number of configured webhooks.
func (d *Dispatcher) Webhooks() int {
	return len(d.webhooks)
}

// Deliver sends the report to each webhook whose trigger matches. Failures
// are logged and returned; they never stop the remaining deliveries. An
// invalid report is only ever forwarded as its log file, so webhooks that
// cannot take the file are skipped and get no Delivery.
func (d *Dispatcher) Deliver(ctx context.Context, report *output.Report, log *Attachment) []Delivery {
	var deliveries []Delivery

	for _, wh := range d.webhooks {
		// Check trigger condition
		if !ShouldFire(wh.Trigger, report.Valid()) {
			continue
		}

		msg, multipart, ok := buildMessage(wh, report, log)
		if !ok {
			d.logger.Debug("webhook skipped",
				zap.String("webhook", wh.DisplayName()),
				zap.String("source", report.Metadata.Source),
				zap.Bool("valid", report.Valid()))
			continue
		}

		resp := d.client.Send(ctx, msg, SendOptions{
			URL:       wh.URL,
			Token:     wh.Token,
			Timeout:   wh.Timeout,
			Multipart: multipart,
		})

		delivery := Delivery{
			Webhook:    wh.DisplayName(),
			StatusCode: resp.StatusCode,
			Duration:   resp.Duration,
			Err:        resp.Error,
		}
		deliveries = append(deliveries, delivery)

		fields := []zap.Field{
			zap.String("webhook", delivery.Webhook),
			zap.String("source", report.Metadata.Source),
			zap.Bool("valid", report.Valid()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", resp.Duration),
		}
		if resp.Success() {
			d.logger.Info("webhook delivered", fields...)
		} else {
			d.logger.Warn("webhook delivery failed", append(fields, zap.Error(resp.Error))...)
		}
	}

	return deliveries
}

// buildMessage shapes the request for a webhook's format and reports whether
// it is multipart. ok is false when there is nothing to send: an invalid
// report never carries a payload, so it is forwarded as the bare log file on
// discord webhooks and not at all otherwise.
func buildMessage(wh config.WebhookConfig, report *output.Report, log *Attachment) (msg Message, multipart, ok bool) {
	var attachment *Attachment
	if wh.Format != config.WebhookFormatJSON && wh.ShouldAttachLog() {
		attachment = log
	}

	if !report.Valid() {
		if attachment == nil {
			return Message{}, false, false
		}
		return Message{Attachment: attachment}, true, true
	}

	if wh.Format == config.WebhookFormatJSON {
		return Message{Payload: report}, false, true
	}

	return Message{Payload: output.BuildPayload(report), Attachment: attachment}, true, true
}

// ShouldFire determines if a webhook should fire for a report.
func ShouldFire(trigger config.WebhookTrigger, valid bool) bool {
	switch trigger {
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnValid:
		return valid
	default:
		// Default to always
		return true
	}
}
