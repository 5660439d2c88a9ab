package sheets

import (
	"context"
	"time"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// SummaryRange is where closed days are appended, one row per day.
const SummaryRange = "DaySummaries!A:L"

// SummaryExporter mirrors every closed day into a spreadsheet.
type SummaryExporter struct {
	repo Repository
}

// NewSummaryExporter wraps a sheet repository.
func NewSummaryExporter(repo Repository) *SummaryExporter {
	return &SummaryExporter{repo: repo}
}

// Name identifies the sink in logs.
func (e *SummaryExporter) Name() string { return "google_sheets" }

// Publish appends the summary row.
func (e *SummaryExporter) Publish(ctx context.Context, summary models.ProductionSummary) error {
	return e.repo.WriteRow(ctx, SummaryRange, SummaryRow(summary))
}

// SummaryRow lays out a summary in column order.
func SummaryRow(s models.ProductionSummary) []interface{} {
	return []interface{}{
		models.FormatDay(s.Date),
		s.TotalProduction,
		s.TotalCalfFeeding,
		s.TotalPosho,
		s.NetProduction,
		s.CarryOver,
		s.TotalSold,
		s.FinalBalance,
		string(s.Trigger),
		s.ClosedBy,
		s.ClosedAt.UTC().Format(time.RFC3339),
		s.ID,
	}
}
