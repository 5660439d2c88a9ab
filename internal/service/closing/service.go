package closing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/lock"
)

// Store persists day-end summaries. CreateSummary must fail with
// models.ErrAlreadyClosed when a summary for the day already exists.
type Store interface {
	CreateSummary(ctx context.Context, summary models.ProductionSummary) error
	GetSummary(ctx context.Context, day time.Time) (models.ProductionSummary, error)
	LatestSummary(ctx context.Context) (models.ProductionSummary, error)
	ListSummaries(ctx context.Context, from, to time.Time) ([]models.ProductionSummary, error)
}

// Ledger derives the balance being snapshotted.
type Ledger interface {
	AvailableMilk(ctx context.Context, day time.Time) (models.DailyBalance, error)
}

// Sink receives every summary after it has been persisted.
type Sink interface {
	Name() string
	Publish(ctx context.Context, summary models.ProductionSummary) error
}

// Config holds the cutoff hours, both in the calendar location.
type Config struct {
	AutoHour      int
	ManualMinHour int
}

// DefaultConfig closes automatically at 23:00 and manually from 22:00.
var DefaultConfig = Config{AutoHour: 23, ManualMinHour: 22}

// Request describes one close attempt.
type Request struct {
	Date    time.Time
	Trigger models.CloseTrigger
	ActorID string
}

// Service finalises days into immutable summaries. A day moves Open ->
// Closing (under the day lock) -> Closed (summary persisted).
type Service struct {
	store  Store
	ledger Ledger
	locker lock.Locker
	cal    models.Calendar
	cfg    Config
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the day-end closer.
func NewService(store Store, ledger Ledger, locker lock.Locker, cal models.Calendar, cfg Config, logger *zap.Logger, sinks ...Sink) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Service{
		store:  store,
		ledger: ledger,
		locker: locker,
		cal:    cal,
		cfg:    cfg,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Close snapshots req.Date into a ProductionSummary. A second close of the
// same day fails with models.ErrAlreadyClosed and writes nothing. Closing a
// day older than the latest summary fails with models.ErrLaterDayClosed.
func (s *Service) Close(ctx context.Context, req Request) (models.ProductionSummary, error) {
	if req.Date.IsZero() {
		return models.ProductionSummary{}, models.Validationf("date is required")
	}
	if req.Trigger == "" {
		req.Trigger = models.TriggerManual
	}
	day := models.Normalize(req.Date)
	now := s.now()

	if err := s.checkCutoff(day, now, req.Trigger); err != nil {
		return models.ProductionSummary{}, err
	}

	summary, err := s.closeLocked(ctx, day, now, req)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyClosed) {
			s.logger.Info("close skipped: day already closed", zap.String("date", models.FormatDay(day)), zap.String("trigger", string(req.Trigger)))
		}
		return models.ProductionSummary{}, err
	}

	s.logger.Info("day closed",
		zap.String("date", models.FormatDay(day)),
		zap.String("trigger", string(summary.Trigger)),
		zap.Float64("carry_over", summary.CarryOver),
		zap.Float64("net_production", summary.NetProduction),
		zap.Float64("total_sold", summary.TotalSold),
		zap.Float64("final_balance", summary.FinalBalance))

	s.publish(ctx, summary)
	return summary, nil
}

// checkCutoff rejects future days and today before the trigger's hour.
func (s *Service) checkCutoff(day, now time.Time, trigger models.CloseTrigger) error {
	today := s.cal.Day(now)
	if day.After(today) {
		return fmt.Errorf("%w: %s has not started", models.ErrTooEarly, models.FormatDay(day))
	}
	if day.Before(today) {
		return nil
	}
	threshold := s.cfg.ManualMinHour
	if trigger == models.TriggerAutomatic {
		threshold = s.cfg.AutoHour
	}
	if s.cal.Hour(now) < threshold {
		return fmt.Errorf("%w: %s can be closed from %02d:00", models.ErrTooEarly, models.FormatDay(day), threshold)
	}
	return nil
}

func (s *Service) closeLocked(ctx context.Context, day, now time.Time, req Request) (models.ProductionSummary, error) {
	releaseClose, err := s.locker.Acquire(ctx, models.CloseKey)
	if err != nil {
		return models.ProductionSummary{}, models.Transient("acquire close lock", err)
	}
	defer releaseClose()

	release, err := s.locker.Acquire(ctx, models.DayKey(day))
	if err != nil {
		return models.ProductionSummary{}, models.Transient("acquire day lock", err)
	}
	defer release()

	if _, err := s.store.GetSummary(ctx, day); err == nil {
		return models.ProductionSummary{}, fmt.Errorf("%s: %w", models.FormatDay(day), models.ErrAlreadyClosed)
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.ProductionSummary{}, fmt.Errorf("check existing summary: %w", err)
	}

	latest, err := s.store.LatestSummary(ctx)
	switch {
	case err == nil && latest.Date.After(day):
		return models.ProductionSummary{}, fmt.Errorf("%s after %s: %w", models.FormatDay(latest.Date), models.FormatDay(day), models.ErrLaterDayClosed)
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return models.ProductionSummary{}, fmt.Errorf("check latest summary: %w", err)
	}

	balance, err := s.ledger.AvailableMilk(ctx, day)
	if err != nil {
		return models.ProductionSummary{}, err
	}

	summary := models.ProductionSummary{
		ID:               models.FormatDay(day),
		Date:             day,
		TotalProduction:  balance.Totals.TotalProduction,
		TotalCalfFeeding: balance.Totals.TotalCalfFeeding,
		TotalPosho:       balance.Totals.TotalPosho,
		NetProduction:    balance.TodayProduction,
		CarryOver:        balance.CarryOver,
		TotalSold:        balance.TotalSold,
		FinalBalance:     balance.CurrentBalance,
		ClosedAt:         now.UTC(),
		ClosedBy:         req.ActorID,
		Trigger:          req.Trigger,
	}
	if err := s.store.CreateSummary(ctx, summary); err != nil {
		if errors.Is(err, models.ErrAlreadyClosed) {
			return models.ProductionSummary{}, fmt.Errorf("%s: %w", models.FormatDay(day), models.ErrAlreadyClosed)
		}
		return models.ProductionSummary{}, err
	}
	return summary, nil
}

func (s *Service) publish(ctx context.Context, summary models.ProductionSummary) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, summary); err != nil {
			s.logger.Error("summary sink failed", zap.String("sink", sink.Name()), zap.String("date", models.FormatDay(summary.Date)), zap.Error(err))
		}
	}
}

// Get returns the summary of day.
func (s *Service) Get(ctx context.Context, day time.Time) (models.ProductionSummary, error) {
	return s.store.GetSummary(ctx, models.Normalize(day))
}

// Latest returns the most recently closed day's summary.
func (s *Service) Latest(ctx context.Context) (models.ProductionSummary, error) {
	return s.store.LatestSummary(ctx)
}

// List returns summaries between from and to inclusive, oldest first.
func (s *Service) List(ctx context.Context, from, to time.Time) ([]models.ProductionSummary, error) {
	if from.After(to) {
		return nil, models.Validationf("from must not be after to")
	}
	return s.store.ListSummaries(ctx, models.Normalize(from), models.Normalize(to))
}
