package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/service/reporting"
	client "github.com/mamadbah2/dairyfarm/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// SummaryNotifier pushes every closed day to the farm manager's WhatsApp.
type SummaryNotifier struct {
	client    client.Client
	recipient string
	logger    *zap.Logger
}

// NewSummaryNotifier wires a new notifier instance.
func NewSummaryNotifier(c client.Client, recipient string, logger *zap.Logger) *SummaryNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryNotifier{client: c, recipient: recipient, logger: logger}
}

// Name identifies the sink in logs.
func (n *SummaryNotifier) Name() string { return "whatsapp" }

// Publish sends the formatted summary.
func (n *SummaryNotifier) Publish(ctx context.Context, summary models.ProductionSummary) error {
	if n.recipient == "" {
		return errors.New("whatsapp recipient is not configured")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   n.recipient,
		Body: reporting.FormatDaySummary(summary),
	})
	if err != nil {
		return fmt.Errorf("notify summary %s: %w", models.FormatDay(summary.Date), err)
	}

	fields := []zap.Field{zap.String("date", models.FormatDay(summary.Date))}
	if len(resp.Messages) > 0 {
		fields = append(fields, zap.String("message_id", resp.Messages[0].ID))
	}
	n.logger.Info("day summary sent", fields...)
	return nil
}
