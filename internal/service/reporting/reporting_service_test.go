package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/repository/memory"
)

var start = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func TestPeriodReportRollsUpClosedDays(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateSummary(ctx, models.ProductionSummary{Date: start, TotalProduction: 20, TotalCalfFeeding: 2, NetProduction: 18, TotalSold: 15, FinalBalance: 3}))
	require.NoError(t, store.CreateSummary(ctx, models.ProductionSummary{Date: start.AddDate(0, 0, 1), TotalProduction: 22, TotalPosho: 1, NetProduction: 21, CarryOver: 3, TotalSold: 20, FinalBalance: 4}))
	require.NoError(t, store.CreateSummary(ctx, models.ProductionSummary{Date: start.AddDate(0, 0, 5), NetProduction: 100}))

	report, err := NewService(store, nil).PeriodReport(ctx, start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Equal(t, 2, report.Days)
	require.InDelta(t, 42, report.TotalProduction, 1e-9)
	require.InDelta(t, 39, report.NetProduction, 1e-9)
	require.InDelta(t, 35, report.TotalSold, 1e-9)
	require.InDelta(t, 19.5, report.AverageNet, 1e-9)
	require.InDelta(t, 4, report.ClosingBalance, 1e-9)
	require.Len(t, report.Summaries, 2)
}

func TestPeriodReportEmptyAndInvalid(t *testing.T) {
	svc := NewService(memory.New(), nil)
	ctx := context.Background()

	report, err := svc.PeriodReport(ctx, start, start)
	require.NoError(t, err)
	require.Zero(t, report.Days)
	require.Zero(t, report.AverageNet)

	_, err = svc.PeriodReport(ctx, start, start.AddDate(0, 0, -1))
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestFormatDaySummary(t *testing.T) {
	msg := FormatDaySummary(models.ProductionSummary{
		Date:             start,
		TotalProduction:  18,
		TotalCalfFeeding: 2,
		TotalPosho:       1,
		NetProduction:    15,
		TotalSold:        10,
		FinalBalance:     5,
		Trigger:          models.TriggerManual,
		ClosedBy:         "mgr-7",
	})

	require.Contains(t, msg, "Milk summary 2026-04-01")
	require.Contains(t, msg, "Produced: 18.0 L")
	require.Contains(t, msg, "Calf feeding: 2.0 L, posho: 1.0 L")
	require.Contains(t, msg, "Balance carried forward: 5.0 L")
	require.Contains(t, msg, "Closed manually by mgr-7")
}
