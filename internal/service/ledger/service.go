package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// Store is the read surface the ledger aggregates over.
type Store interface {
	ProductionByDay(ctx context.Context, day time.Time) ([]models.ProductionRecord, error)
	SalesByDay(ctx context.Context, day time.Time) ([]models.SalesRecord, error)
	GetSummary(ctx context.Context, day time.Time) (models.ProductionSummary, error)
	LatestSummary(ctx context.Context) (models.ProductionSummary, error)
}

// Service derives daily balances. It never stores a running balance: every
// call recomputes from production rows, sales rows and the prior day's
// summary.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a ledger over store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// AvailableMilk returns the live position of day.
func (s *Service) AvailableMilk(ctx context.Context, day time.Time) (models.DailyBalance, error) {
	day = models.Normalize(day)

	carry, err := s.CarryOver(ctx, day)
	if err != nil {
		return models.DailyBalance{}, err
	}
	totals, err := s.Totals(ctx, day)
	if err != nil {
		return models.DailyBalance{}, err
	}
	sold, err := s.totalSold(ctx, day)
	if err != nil {
		return models.DailyBalance{}, err
	}
	closed, err := s.IsClosed(ctx, day)
	if err != nil {
		return models.DailyBalance{}, err
	}

	current := models.FloorZero(models.Liters(carry).Add(models.Liters(totals.NetProduction)).Sub(sold))

	balance := models.DailyBalance{
		Date:            day,
		CarryOver:       carry,
		TodayProduction: totals.NetProduction,
		TotalSold:       models.ToLiters(sold),
		CurrentBalance:  models.ToLiters(current),
		Closed:          closed,
		Totals:          totals,
	}

	s.logger.Debug("balance derived",
		zap.String("date", models.FormatDay(day)),
		zap.Float64("carry_over", balance.CarryOver),
		zap.Float64("net_production", balance.TodayProduction),
		zap.Float64("total_sold", balance.TotalSold),
		zap.Float64("current_balance", balance.CurrentBalance))

	return balance, nil
}

// CarryOver returns the final balance of the previous day's summary, or zero
// when that day was never closed.
func (s *Service) CarryOver(ctx context.Context, day time.Time) (float64, error) {
	prev, err := s.store.GetSummary(ctx, models.PrevDay(day))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load previous summary: %w", err)
	}
	return prev.FinalBalance, nil
}

// Totals aggregates the production records of day, excluding calves.
// Calf and posho deductions are subtracted once from the farm-day total.
func (s *Service) Totals(ctx context.Context, day time.Time) (models.DayTotals, error) {
	records, err := s.store.ProductionByDay(ctx, models.Normalize(day))
	if err != nil {
		return models.DayTotals{}, fmt.Errorf("load production: %w", err)
	}
	return aggregate(records), nil
}

// RecordEdit rewrites the production records of a day as a pending change
// would leave them.
type RecordEdit func(records []models.ProductionRecord) []models.ProductionRecord

// EnsureCovered fails with models.ErrInsufficientBalance when applying edit to
// the records of day would leave its sales above carry-over plus net
// production. Callers hold the day lock.
func (s *Service) EnsureCovered(ctx context.Context, day time.Time, edit RecordEdit) error {
	day = models.Normalize(day)
	records, err := s.store.ProductionByDay(ctx, day)
	if err != nil {
		return fmt.Errorf("load production: %w", err)
	}
	sold, err := s.totalSold(ctx, day)
	if err != nil {
		return err
	}
	if sold.IsZero() {
		return nil
	}
	carry, err := s.CarryOver(ctx, day)
	if err != nil {
		return err
	}

	totals := aggregate(edit(records))
	available := models.Liters(carry).Add(models.Liters(totals.NetProduction))
	if sold.GreaterThan(available) {
		return fmt.Errorf("%w: %s already sold %s L, change leaves %s L",
			models.ErrInsufficientBalance, models.FormatDay(day), sold.StringFixed(3), available.StringFixed(3))
	}
	return nil
}

func aggregate(records []models.ProductionRecord) models.DayTotals {
	var produced, calf, posho decimal.Decimal
	counted := 0
	for _, rec := range records {
		if rec.AnimalType == models.AnimalCalf {
			continue
		}
		produced = produced.Add(models.Liters(rec.MorningQuantity)).Add(models.Liters(rec.EveningQuantity))
		calf = calf.Add(models.Liters(rec.CalfQuantity))
		posho = posho.Add(models.Liters(rec.PoshoQuantity))
		counted++
	}

	return models.DayTotals{
		TotalProduction:  models.ToLiters(produced),
		TotalCalfFeeding: models.ToLiters(calf),
		TotalPosho:       models.ToLiters(posho),
		NetProduction:    models.ToLiters(models.FloorZero(produced.Sub(calf).Sub(posho))),
		Records:          counted,
	}
}

// IsClosed reports whether day is read-only: it has a summary, or a later
// day does. Posting to a day before the latest close would change a
// carry-over that is already snapshotted.
func (s *Service) IsClosed(ctx context.Context, day time.Time) (bool, error) {
	_, err := s.store.GetSummary(ctx, day)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, models.ErrNotFound):
		return false, fmt.Errorf("load summary: %w", err)
	}

	latest, err := s.store.LatestSummary(ctx)
	switch {
	case err == nil:
		return latest.Date.After(models.Normalize(day)), nil
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("load latest summary: %w", err)
	}
}

func (s *Service) totalSold(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	sales, err := s.store.SalesByDay(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load sales: %w", err)
	}
	sold := decimal.Zero
	for _, sale := range sales {
		sold = sold.Add(models.Liters(sale.Quantity))
	}
	return sold, nil
}
