package models

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// litersPrecision keeps quantities at millilitre resolution.
	litersPrecision = 3
	// PricePrecision keeps prices and amounts at cent resolution.
	PricePrecision = 2
)

// Liters lifts a float quantity into exact arithmetic.
func Liters(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// ToLiters lowers an exact quantity back to a float rounded to millilitres.
func ToLiters(d decimal.Decimal) float64 {
	return d.Round(litersPrecision).InexactFloat64()
}

// FloorZero clips negative quantities to zero.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Money multiplies a quantity by a unit price and rounds to cents.
func Money(quantity, unitPrice float64) float64 {
	return Liters(quantity).Mul(decimal.NewFromFloat(unitPrice)).Round(PricePrecision).InexactFloat64()
}

// WithinPlaces reports whether a finite v has at most places decimal digits,
// so storing it in a fixed-scale column never rounds it.
func WithinPlaces(v float64, places int32) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return decimal.NewFromFloat(v).Exponent() >= -places
}

// ValidLiters reports whether v is a finite, non-negative quantity at
// millilitre resolution.
func ValidLiters(v float64) bool {
	return WithinPlaces(v, litersPrecision) && v >= 0
}
