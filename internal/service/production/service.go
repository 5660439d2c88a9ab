package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/lock"
	"github.com/mamadbah2/dairyfarm/internal/service/ledger"
)

// Store persists production records.
type Store interface {
	CreateProduction(ctx context.Context, rec models.ProductionRecord) error
	GetProduction(ctx context.Context, id string) (models.ProductionRecord, error)
	UpdateProduction(ctx context.Context, rec models.ProductionRecord) error
	DeleteProduction(ctx context.Context, id string) error
	ListProduction(ctx context.Context, filter models.ProductionFilter) (models.ProductionPage, error)
}

// AnimalDirectory resolves animals owned by the herd module.
type AnimalDirectory interface {
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
}

// DayStatus reports whether a day is still open and whether a change to its
// records keeps its sales covered.
type DayStatus interface {
	IsClosed(ctx context.Context, day time.Time) (bool, error)
	EnsureCovered(ctx context.Context, day time.Time, edit ledger.RecordEdit) error
}

// CreateInput carries a new production entry.
type CreateInput struct {
	AnimalID   string
	Date       time.Time
	Quantities models.ProductionQuantities
	Notes      string
	RecordedBy string
}

// UpdateInput carries a partial quantity/notes update. Nil fields keep their
// stored value.
type UpdateInput struct {
	ID      string
	Morning *float64
	Evening *float64
	Calf    *float64
	Posho   *float64
	Notes   *string
}

// Service implements the production record store operations.
type Service struct {
	store   Store
	animals AnimalDirectory
	days    DayStatus
	locker  lock.Locker
	cal     models.Calendar
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewService wires the production service.
func NewService(store Store, animals AnimalDirectory, days DayStatus, locker lock.Locker, cal models.Calendar, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Service{
		store:   store,
		animals: animals,
		days:    days,
		locker:  locker,
		cal:     cal,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create records one animal's production for one day.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.ProductionRecord, error) {
	in.AnimalID = strings.TrimSpace(in.AnimalID)
	if in.AnimalID == "" {
		return models.ProductionRecord{}, models.Validationf("animalId is required")
	}
	if in.Date.IsZero() {
		return models.ProductionRecord{}, models.Validationf("date is required")
	}
	if err := in.Quantities.Validate(); err != nil {
		return models.ProductionRecord{}, err
	}

	now := s.now()
	day := models.Normalize(in.Date)
	if day.After(s.cal.Day(now)) {
		return models.ProductionRecord{}, models.Validationf("date %s is in the future", models.FormatDay(day))
	}

	animal, err := s.animals.GetAnimal(ctx, in.AnimalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ProductionRecord{}, fmt.Errorf("animal %s: %w", in.AnimalID, models.ErrNotFound)
		}
		return models.ProductionRecord{}, fmt.Errorf("load animal: %w", err)
	}
	if !animal.IsReadyForProduction {
		return models.ProductionRecord{}, fmt.Errorf("animal %s: %w", in.AnimalID, models.ErrAnimalNotReady)
	}

	rec := models.ProductionRecord{
		ID:         s.newID(),
		AnimalID:   animal.ID,
		AnimalType: animal.Type,
		Date:       day,
		RecordedBy: in.RecordedBy,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	rec.Apply(in.Quantities)

	err = s.withOpenDay(ctx, day, func(ctx context.Context) error {
		return s.store.CreateProduction(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("duplicate production rejected", zap.String("animal_id", rec.AnimalID), zap.String("date", models.FormatDay(day)))
		}
		return models.ProductionRecord{}, err
	}

	s.logger.Info("production recorded",
		zap.String("id", rec.ID),
		zap.String("animal_id", rec.AnimalID),
		zap.String("date", models.FormatDay(day)),
		zap.Float64("total", rec.TotalQuantity),
		zap.Float64("available_for_sales", rec.AvailableForSales))
	return rec, nil
}

// Update recomputes a record from new quantities. Date and animal never change,
// and the day's sales must stay covered by what remains.
func (s *Service) Update(ctx context.Context, in UpdateInput) (models.ProductionRecord, error) {
	if strings.TrimSpace(in.ID) == "" {
		return models.ProductionRecord{}, models.Validationf("id is required")
	}
	existing, err := s.store.GetProduction(ctx, in.ID)
	if err != nil {
		return models.ProductionRecord{}, err
	}

	q := existing.Quantities()
	if in.Morning != nil {
		q.Morning = *in.Morning
	}
	if in.Evening != nil {
		q.Evening = *in.Evening
	}
	if in.Calf != nil {
		q.Calf = *in.Calf
	}
	if in.Posho != nil {
		q.Posho = *in.Posho
	}
	if err := q.Validate(); err != nil {
		return models.ProductionRecord{}, err
	}

	updated := existing
	updated.Apply(q)
	if in.Notes != nil {
		updated.Notes = strings.TrimSpace(*in.Notes)
	}
	updated.UpdatedAt = s.now().UTC()

	err = s.withOpenDay(ctx, existing.Date, func(ctx context.Context) error {
		if err := s.days.EnsureCovered(ctx, existing.Date, replaceRecord(updated)); err != nil {
			return err
		}
		return s.store.UpdateProduction(ctx, updated)
	})
	if err != nil {
		return models.ProductionRecord{}, err
	}

	s.logger.Info("production updated", zap.String("id", updated.ID), zap.Float64("total", updated.TotalQuantity))
	return updated, nil
}

// Delete removes a record. The ledger is derived, so the day's balance
// reflects the removal on its next read. A removal that would leave the day's
// sales uncovered fails with models.ErrInsufficientBalance.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return models.Validationf("id is required")
	}
	existing, err := s.store.GetProduction(ctx, id)
	if err != nil {
		return err
	}
	err = s.withOpenDay(ctx, existing.Date, func(ctx context.Context) error {
		if err := s.days.EnsureCovered(ctx, existing.Date, removeRecord(id)); err != nil {
			return err
		}
		return s.store.DeleteProduction(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("production deleted", zap.String("id", id), zap.String("date", models.FormatDay(existing.Date)))
	return nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (models.ProductionRecord, error) {
	if strings.TrimSpace(id) == "" {
		return models.ProductionRecord{}, models.Validationf("id is required")
	}
	return s.store.GetProduction(ctx, id)
}

// List pages records, newest day first.
func (s *Service) List(ctx context.Context, filter models.ProductionFilter) (models.ProductionPage, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return models.ProductionPage{}, models.Validationf("from must not be after to")
	}
	filter.Normalize()
	return s.store.ListProduction(ctx, filter)
}

// withOpenDay runs fn under the day lock after checking the day is still open.
func (s *Service) withOpenDay(ctx context.Context, day time.Time, fn func(context.Context) error) error {
	release, err := s.locker.Acquire(ctx, models.DayKey(day))
	if err != nil {
		return models.Transient("acquire day lock", err)
	}
	defer release()

	closed, err := s.days.IsClosed(ctx, day)
	if err != nil {
		return err
	}
	if closed {
		return fmt.Errorf("%s: %w", models.FormatDay(day), models.ErrDayClosed)
	}
	return fn(ctx)
}

func replaceRecord(updated models.ProductionRecord) ledger.RecordEdit {
	return func(records []models.ProductionRecord) []models.ProductionRecord {
		out := make([]models.ProductionRecord, 0, len(records))
		for _, rec := range records {
			if rec.ID == updated.ID {
				rec = updated
			}
			out = append(out, rec)
		}
		return out
	}
}

func removeRecord(id string) ledger.RecordEdit {
	return func(records []models.ProductionRecord) []models.ProductionRecord {
		out := make([]models.ProductionRecord, 0, len(records))
		for _, rec := range records {
			if rec.ID != id {
				out = append(out, rec)
			}
		}
		return out
	}
}
