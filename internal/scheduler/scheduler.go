package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/config"
	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/service/closing"
)

const (
	schedulerActor = "scheduler"
	tickTimeout    = 30 * time.Second
)

// Closer is the closing surface the scheduler drives.
type Closer interface {
	Close(ctx context.Context, req closing.Request) (models.ProductionSummary, error)
	Latest(ctx context.Context) (models.ProductionSummary, error)
}

// Scheduler fires the automatic day-end close. Each tick compares the clock
// against the last date it saw closed, so retries and overlapping ticks
// never close a day twice.
type Scheduler struct {
	cron   *cron.Cron
	closer Closer
	cfg    config.ClosingConfig
	cal    models.Calendar
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	loaded     bool
	lastClosed time.Time
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.ClosingConfig, cal models.Calendar, closer Closer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cal.Location
	if loc == nil {
		loc = time.UTC
	}
	// Standard 5-field parser; the default schedule ticks every minute.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:   c,
		closer: closer,
		cfg:    cfg,
		cal:    cal,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the close tick and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.Int("auto_hour", s.cfg.AutoHour))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.tick); err != nil {
		s.logger.Error("failed to schedule day-end close", zap.Error(err))
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce performs one scheduling pass: it back-fills missed past days after
// the latest closed one, then closes today once the auto hour has passed. It
// returns the days it closed.
func (s *Scheduler) RunOnce(ctx context.Context) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded && !s.loadLastClosed(ctx) {
		return nil
	}

	now := s.now()
	today := s.cal.Day(now)
	var closed []time.Time

	if !s.lastClosed.IsZero() {
		start := models.NextDay(s.lastClosed)
		if floor := today.AddDate(0, 0, -s.cfg.CatchUpDays); start.Before(floor) {
			s.logger.Warn("catch-up window exceeded, older days stay open",
				zap.String("last_closed", models.FormatDay(s.lastClosed)),
				zap.String("resume_from", models.FormatDay(floor)))
			start = floor
		}
		for day := start; day.Before(today); day = models.NextDay(day) {
			ok, didClose := s.closeDay(ctx, day)
			if !ok {
				return closed
			}
			if didClose {
				closed = append(closed, day)
			}
		}
	}

	if !s.lastClosed.Before(today) {
		return closed
	}
	if s.cal.Hour(now) < s.cfg.AutoHour {
		return closed
	}
	if _, didClose := s.closeDay(ctx, today); didClose {
		closed = append(closed, today)
	}
	return closed
}

func (s *Scheduler) loadLastClosed(ctx context.Context) bool {
	latest, err := s.closer.Latest(ctx)
	switch {
	case err == nil:
		s.lastClosed = latest.Date
	case errors.Is(err, models.ErrNotFound):
		s.lastClosed = time.Time{}
	default:
		s.logger.Error("failed to load latest summary", zap.Error(err))
		return false
	}
	s.loaded = true
	return true
}

// closeDay reports whether the pass may continue and whether this call wrote
// the summary.
func (s *Scheduler) closeDay(ctx context.Context, day time.Time) (bool, bool) {
	_, err := s.closer.Close(ctx, closing.Request{Date: day, Trigger: models.TriggerAutomatic, ActorID: schedulerActor})
	switch {
	case err == nil:
		s.markClosed(day)
		return true, true
	case errors.Is(err, models.ErrAlreadyClosed):
		s.markClosed(day)
		return true, false
	case errors.Is(err, models.ErrLaterDayClosed):
		// A manual close moved the chain forward; the next pass reloads it.
		s.logger.Info("automatic close skipped: a later day is closed", zap.String("date", models.FormatDay(day)))
		s.loaded = false
		return false, false
	case errors.Is(err, models.ErrTooEarly):
		s.logger.Debug("automatic close not yet due", zap.String("date", models.FormatDay(day)))
		return false, false
	default:
		s.logger.Error("automatic close failed", zap.String("date", models.FormatDay(day)), zap.Error(err))
		return false, false
	}
}

func (s *Scheduler) markClosed(day time.Time) {
	if day.After(s.lastClosed) {
		s.lastClosed = day
	}
}
