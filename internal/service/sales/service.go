package sales

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/lock"
)

// Store persists sales.
type Store interface {
	CreateSale(ctx context.Context, sale models.SalesRecord) error
	SalesByDay(ctx context.Context, day time.Time) ([]models.SalesRecord, error)
}

// Ledger derives the live balance a sale is checked against.
type Ledger interface {
	AvailableMilk(ctx context.Context, day time.Time) (models.DailyBalance, error)
}

// CreateInput carries a sale request. A zero Date means today.
type CreateInput struct {
	Date          time.Time
	Quantity      float64
	PricePerLiter float64
	PaymentMethod models.PaymentMethod
	CustomerName  string
	SoldBy        string
}

// Service records sales against the derived day balance.
type Service struct {
	store  Store
	ledger Ledger
	locker lock.Locker
	cal    models.Calendar
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires the sales recorder.
func NewService(store Store, ledger Ledger, locker lock.Locker, cal models.Calendar, logger *zap.Logger) *Service {
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
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates a sale against the live balance and persists it. The
// balance is re-derived under the day lock on every attempt, so concurrent
// sales can never oversell.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.SalesRecord, error) {
	if err := validate(in); err != nil {
		return models.SalesRecord{}, err
	}

	now := s.now()
	today := s.cal.Day(now)
	day := today
	if !in.Date.IsZero() {
		day = models.Normalize(in.Date)
	}
	if day.After(today) {
		return models.SalesRecord{}, models.Validationf("date %s is in the future", models.FormatDay(day))
	}

	release, err := s.locker.Acquire(ctx, models.DayKey(day))
	if err != nil {
		return models.SalesRecord{}, models.Transient("acquire day lock", err)
	}
	defer release()

	balance, err := s.ledger.AvailableMilk(ctx, day)
	if err != nil {
		return models.SalesRecord{}, err
	}
	if balance.Closed {
		return models.SalesRecord{}, fmt.Errorf("%s: %w", models.FormatDay(day), models.ErrDayClosed)
	}
	if models.Liters(in.Quantity).GreaterThan(models.Liters(balance.CurrentBalance)) {
		s.logger.Warn("sale rejected: insufficient balance",
			zap.String("date", models.FormatDay(day)),
			zap.Float64("requested", in.Quantity),
			zap.Float64("available", balance.CurrentBalance))
		return models.SalesRecord{}, fmt.Errorf("%w: requested %.3f L, available %.3f L", models.ErrInsufficientBalance, in.Quantity, balance.CurrentBalance)
	}

	sale := models.SalesRecord{
		ID:            s.newID(),
		Date:          day,
		TimeRecorded:  now.UTC(),
		Quantity:      in.Quantity,
		PricePerLiter: in.PricePerLiter,
		TotalAmount:   models.Money(in.Quantity, in.PricePerLiter),
		PaymentMethod: in.PaymentMethod,
		SoldBy:        in.SoldBy,
		CustomerName:  strings.TrimSpace(in.CustomerName),
	}
	if err := s.store.CreateSale(ctx, sale); err != nil {
		return models.SalesRecord{}, err
	}

	s.logger.Info("sale recorded",
		zap.String("id", sale.ID),
		zap.String("date", models.FormatDay(day)),
		zap.Float64("quantity", sale.Quantity),
		zap.Float64("total_amount", sale.TotalAmount),
		zap.String("payment_method", string(sale.PaymentMethod)))
	return sale, nil
}

// ListByDay returns the sales of one day.
func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]models.SalesRecord, error) {
	return s.store.SalesByDay(ctx, models.Normalize(day))
}

func validate(in CreateInput) error {
	switch {
	case math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0:
		return models.Validationf("quantity must be greater than zero")
	case !models.ValidLiters(in.Quantity):
		return models.Validationf("quantity must have at most 3 decimal places")
	case math.IsNaN(in.PricePerLiter) || math.IsInf(in.PricePerLiter, 0) || in.PricePerLiter <= 0:
		return models.Validationf("pricePerLiter must be greater than zero")
	case !models.WithinPlaces(in.PricePerLiter, models.PricePrecision):
		return models.Validationf("pricePerLiter must have at most %d decimal places", models.PricePrecision)
	case !in.PaymentMethod.Valid():
		return models.Validationf("unsupported payment method %q", in.PaymentMethod)
	}
	return nil
}
