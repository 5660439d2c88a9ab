package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// SummaryLister reads closed summaries.
type SummaryLister interface {
	ListSummaries(ctx context.Context, from, to time.Time) ([]models.ProductionSummary, error)
}

// Service exposes lightweight roll-ups over closed days.
type Service struct {
	summaries SummaryLister
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(summaries SummaryLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{summaries: summaries, logger: logger}
}

// PeriodReport aggregates the summaries closed between from and to inclusive.
// Days that were never closed are simply absent from the roll-up.
func (s *Service) PeriodReport(ctx context.Context, from, to time.Time) (models.PeriodReport, error) {
	from, to = models.Normalize(from), models.Normalize(to)
	if from.After(to) {
		return models.PeriodReport{}, models.Validationf("from must not be after to")
	}

	rows, err := s.summaries.ListSummaries(ctx, from, to)
	if err != nil {
		return models.PeriodReport{}, fmt.Errorf("load summaries: %w", err)
	}

	var produced, calf, posho, net, sold decimal.Decimal
	for _, row := range rows {
		produced = produced.Add(models.Liters(row.TotalProduction))
		calf = calf.Add(models.Liters(row.TotalCalfFeeding))
		posho = posho.Add(models.Liters(row.TotalPosho))
		net = net.Add(models.Liters(row.NetProduction))
		sold = sold.Add(models.Liters(row.TotalSold))
	}

	report := models.PeriodReport{
		From:             from,
		To:               to,
		Days:             len(rows),
		TotalProduction:  models.ToLiters(produced),
		TotalCalfFeeding: models.ToLiters(calf),
		TotalPosho:       models.ToLiters(posho),
		NetProduction:    models.ToLiters(net),
		TotalSold:        models.ToLiters(sold),
		Summaries:        rows,
	}
	if len(rows) > 0 {
		report.AverageNet = models.ToLiters(net.Div(decimal.NewFromInt(int64(len(rows)))))
		report.ClosingBalance = rows[len(rows)-1].FinalBalance
	}

	s.logger.Debug("period report built",
		zap.String("from", models.FormatDay(from)),
		zap.String("to", models.FormatDay(to)),
		zap.Int("days", report.Days))
	return report, nil
}

// FormatDaySummary renders a closed day as a short text message.
func FormatDaySummary(summary models.ProductionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Milk summary %s\n", models.FormatDay(summary.Date))
	fmt.Fprintf(&b, "Produced: %s L\n", liters(summary.TotalProduction))
	fmt.Fprintf(&b, "Calf feeding: %s L, posho: %s L\n", liters(summary.TotalCalfFeeding), liters(summary.TotalPosho))
	fmt.Fprintf(&b, "Net: %s L (carried in %s L)\n", liters(summary.NetProduction), liters(summary.CarryOver))
	fmt.Fprintf(&b, "Sold: %s L\n", liters(summary.TotalSold))
	fmt.Fprintf(&b, "Balance carried forward: %s L", liters(summary.FinalBalance))
	if summary.Trigger == models.TriggerManual && summary.ClosedBy != "" {
		fmt.Fprintf(&b, "\nClosed manually by %s", summary.ClosedBy)
	}
	return b.String()
}

func liters(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
