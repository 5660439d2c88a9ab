package models

import "time"

// CloseTrigger records what initiated a day close.
type CloseTrigger string

const (
	TriggerAutomatic CloseTrigger = "AUTOMATIC"
	TriggerManual    CloseTrigger = "MANUAL"
)

// DayTotals aggregates one farm day's production records. Deductions are
// applied once here, at farm-day granularity.
type DayTotals struct {
	TotalProduction  float64 `json:"totalProduction"`
	TotalCalfFeeding float64 `json:"totalCalfFeeding"`
	TotalPosho       float64 `json:"totalPosho"`
	NetProduction    float64 `json:"netProduction"`
	Records          int     `json:"records"`
}

// DailyBalance is the live, derived position of one calendar day.
type DailyBalance struct {
	Date            time.Time `json:"date"`
	CarryOver       float64   `json:"carryOver"`
	TodayProduction float64   `json:"todayProduction"`
	TotalSold       float64   `json:"totalSold"`
	CurrentBalance  float64   `json:"currentBalance"`
	Closed          bool      `json:"closed"`
	Totals          DayTotals `json:"-"`
}

// ProductionSummary is the immutable snapshot written when a day is closed.
// FinalBalance is the next day's opening carry-over.
type ProductionSummary struct {
	ID               string       `bson:"_id" json:"id"`
	Date             time.Time    `bson:"date" json:"date"`
	TotalProduction  float64      `bson:"total_production" json:"totalProduction"`
	TotalCalfFeeding float64      `bson:"total_calf_feeding" json:"totalCalfFeeding"`
	TotalPosho       float64      `bson:"total_posho" json:"totalPosho"`
	NetProduction    float64      `bson:"net_production" json:"netProduction"`
	CarryOver        float64      `bson:"carry_over" json:"carryOver"`
	TotalSold        float64      `bson:"total_sold" json:"totalSold"`
	FinalBalance     float64      `bson:"final_balance" json:"finalBalance"`
	ClosedAt         time.Time    `bson:"closed_at" json:"closedAt"`
	ClosedBy         string       `bson:"closed_by,omitempty" json:"closedBy,omitempty"`
	Trigger          CloseTrigger `bson:"trigger" json:"trigger"`
}

// PeriodReport rolls closed summaries up over a date range.
type PeriodReport struct {
	From             time.Time           `json:"from"`
	To               time.Time           `json:"to"`
	Days             int                 `json:"days"`
	TotalProduction  float64             `json:"totalProduction"`
	TotalCalfFeeding float64             `json:"totalCalfFeeding"`
	TotalPosho       float64             `json:"totalPosho"`
	NetProduction    float64             `json:"netProduction"`
	TotalSold        float64             `json:"totalSold"`
	AverageNet       float64             `json:"averageNetProduction"`
	ClosingBalance   float64             `json:"closingBalance"`
	Summaries        []ProductionSummary `json:"summaries"`
}
