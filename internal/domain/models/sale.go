package models

import "time"

// PaymentMethod enumerates how a customer paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCredit       PaymentMethod = "CREDIT"
)

// Valid reports whether m is supported.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentBankTransfer, PaymentCredit:
		return true
	default:
		return false
	}
}

// SalesRecord captures one sale of milk against a day's balance.
type SalesRecord struct {
	ID            string        `bson:"_id" json:"id"`
	Date          time.Time     `bson:"date" json:"date"`
	TimeRecorded  time.Time     `bson:"time_recorded" json:"timeRecorded"`
	Quantity      float64       `bson:"quantity" json:"quantity"`
	PricePerLiter float64       `bson:"price_per_liter" json:"pricePerLiter"`
	TotalAmount   float64       `bson:"total_amount" json:"totalAmount"`
	PaymentMethod PaymentMethod `bson:"payment_method" json:"paymentMethod"`
	SoldBy        string        `bson:"sold_by" json:"soldBy"`
	CustomerName  string        `bson:"customer_name,omitempty" json:"customerName,omitempty"`
}
