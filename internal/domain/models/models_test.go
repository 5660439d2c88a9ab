package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecalculateDerivesTotals(t *testing.T) {
	rec := ProductionRecord{}
	rec.Apply(ProductionQuantities{Morning: 10, Evening: 8, Calf: 2, Posho: 1})

	require.InDelta(t, 18.0, rec.TotalQuantity, 1e-9)
	require.InDelta(t, 15.0, rec.AvailableForSales, 1e-9)
}

func TestRecalculateFloorsAvailableAtZero(t *testing.T) {
	rec := ProductionRecord{}
	rec.Apply(ProductionQuantities{Morning: 1.5, Evening: 0.5, Calf: 3, Posho: 1})

	require.InDelta(t, 2.0, rec.TotalQuantity, 1e-9)
	require.Zero(t, rec.AvailableForSales)
}

func TestRecalculateAvoidsFloatDrift(t *testing.T) {
	rec := ProductionRecord{}
	rec.Apply(ProductionQuantities{Morning: 0.1, Evening: 0.2})

	require.Equal(t, 0.3, rec.TotalQuantity)
}

func TestQuantitiesValidate(t *testing.T) {
	require.NoError(t, ProductionQuantities{Morning: 1}.Validate())
	err := ProductionQuantities{Morning: 1, Posho: -0.5}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, ProductionQuantities{Morning: 10.125, Evening: 0.001}.Validate())
	err = ProductionQuantities{Morning: 1, Evening: 1.2345}.Validate()
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "eveningQuantity")
}

func TestWithinPlaces(t *testing.T) {
	require.True(t, WithinPlaces(60, PricePrecision))
	require.True(t, WithinPlaces(59.99, PricePrecision))
	require.False(t, WithinPlaces(59.999, PricePrecision))
	require.True(t, ValidLiters(0))
	require.False(t, ValidLiters(0.0005))
	require.False(t, ValidLiters(math.NaN()))
}

func TestSpecificErrorsWrapKinds(t *testing.T) {
	require.True(t, errors.Is(ErrAlreadyClosed, ErrConflict))
	require.True(t, errors.Is(ErrDuplicateProduction, ErrConflict))
	require.True(t, errors.Is(ErrAnimalNotReady, ErrInvalidState))
	require.Equal(t, "already_closed", Kind(ErrAlreadyClosed))
	require.Equal(t, "conflict", Kind(ErrDuplicateProduction))
	require.Equal(t, "transient", Kind(Transient("insert sale", errors.New("boom"))))
	require.Equal(t, "internal", Kind(errors.New("boom")))
}

func TestCalendarBucketsInLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	cal := Calendar{Location: nairobi}

	instant := time.Date(2026, 3, 9, 22, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), cal.Day(instant))
	require.Equal(t, 1, cal.Hour(instant))

	require.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), UTC.Day(instant))
	require.Equal(t, 22, UTC.Hour(instant))
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2026-02-28", UTC)
	require.NoError(t, err)
	require.Equal(t, "2026-03-01", FormatDay(NextDay(day)))
	require.Equal(t, "2026-02-27", FormatDay(PrevDay(day)))

	day, err = ParseDay("2026-02-28T23:15:00Z", UTC)
	require.NoError(t, err)
	require.Equal(t, "2026-02-28", FormatDay(day))

	_, err = ParseDay("28/02/2026", UTC)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPaymentMethodValid(t *testing.T) {
	require.True(t, PaymentMobileMoney.Valid())
	require.False(t, PaymentMethod("BARTER").Valid())
}

func TestMoneyRoundsToCents(t *testing.T) {
	require.Equal(t, 583.33, Money(10.5, 55.555))
}
