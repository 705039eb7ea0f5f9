package entity

import "time"

const (
	PaymentOrderCreated = "created"
	PaymentOrderFailed  = "failed"
)

// PaymentOrder is an order opened with the payment provider. Amount is in
// minor currency units.
type PaymentOrder struct {
	ID           uint      `json:"-"`
	ExternalID   string    `json:"id"`
	Receipt      string    `json:"receipt"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	ClientSecret string    `json:"clientSecret,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
