package models

import (
	"time"
)

const (
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// Payment records money taken for an order. No gateway is involved; the
// reference is generated locally.
type Payment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PaymentRef string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_ref"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	Amount     float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency   string    `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`
	Method     string    `gorm:"type:varchar(20);not null" json:"method"`
	Email      string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Contact    string    `gorm:"type:varchar(32)" json:"contact,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
