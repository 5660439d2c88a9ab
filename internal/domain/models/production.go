package models

import "time"

// ProductionRecord captures one animal's milk output for one calendar day.
// CarryOverQuantity is kept for report compatibility only; the farm balance
// never reads it.
type ProductionRecord struct {
	ID                string     `bson:"_id" json:"id"`
	AnimalID          string     `bson:"animal_id" json:"animalId"`
	AnimalType        AnimalType `bson:"animal_type" json:"animalType"`
	Date              time.Time  `bson:"date" json:"date"`
	MorningQuantity   float64    `bson:"morning_quantity" json:"morningQuantity"`
	EveningQuantity   float64    `bson:"evening_quantity" json:"eveningQuantity"`
	CalfQuantity      float64    `bson:"calf_quantity" json:"calfQuantity"`
	PoshoQuantity     float64    `bson:"posho_quantity" json:"poshoQuantity"`
	TotalQuantity     float64    `bson:"total_quantity" json:"totalQuantity"`
	AvailableForSales float64    `bson:"available_for_sales" json:"availableForSales"`
	CarryOverQuantity float64    `bson:"carry_over_quantity" json:"carryOverQuantity"`
	RecordedBy        string     `bson:"recorded_by" json:"recordedBy"`
	Notes             string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updatedAt"`
}

// ProductionQuantities is the mutable part of a record.
type ProductionQuantities struct {
	Morning float64
	Evening float64
	Calf    float64
	Posho   float64
}

// Validate rejects negative, non-finite or sub-millilitre quantities.
func (q ProductionQuantities) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"morningQuantity", q.Morning},
		{"eveningQuantity", q.Evening},
		{"calfQuantity", q.Calf},
		{"poshoQuantity", q.Posho},
	} {
		if !ValidLiters(f.value) {
			return Validationf("%s must be a non-negative number with at most %d decimal places", f.name, litersPrecision)
		}
	}
	return nil
}

// Apply copies quantities into the record and recomputes derived totals.
func (r *ProductionRecord) Apply(q ProductionQuantities) {
	r.MorningQuantity = q.Morning
	r.EveningQuantity = q.Evening
	r.CalfQuantity = q.Calf
	r.PoshoQuantity = q.Posho
	r.Recalculate()
}

// Quantities returns the mutable part of the record.
func (r ProductionRecord) Quantities() ProductionQuantities {
	return ProductionQuantities{
		Morning: r.MorningQuantity,
		Evening: r.EveningQuantity,
		Calf:    r.CalfQuantity,
		Posho:   r.PoshoQuantity,
	}
}

// Recalculate derives total = morning + evening and
// availableForSales = max(0, total - calf - posho).
func (r *ProductionRecord) Recalculate() {
	total := Liters(r.MorningQuantity).Add(Liters(r.EveningQuantity))
	available := FloorZero(total.Sub(Liters(r.CalfQuantity)).Sub(Liters(r.PoshoQuantity)))
	r.TotalQuantity = ToLiters(total)
	r.AvailableForSales = ToLiters(available)
}

// ProductionFilter narrows record listings. Date takes precedence over the
// From/To range.
type ProductionFilter struct {
	AnimalID string
	Date     *time.Time
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize applies pagination defaults and bounds.
func (f *ProductionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

// Offset returns the number of rows to skip.
func (f ProductionFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ProductionPage is one page of records ordered by date descending.
type ProductionPage struct {
	Items []ProductionRecord `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
