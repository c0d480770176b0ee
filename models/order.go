package models

import (
	"math"
	"time"
)

const (
	OrderStatusInProgress = "in_progress"
	OrderStatusReady      = "ready"
	OrderStatusCompleted  = "completed"
)

// TaxRate is applied on top of the item total of every order.
const TaxRate = 0.0525

// ValidOrderStatus reports whether status is a known order status.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusInProgress, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

type Bills struct {
	Total        float64 `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	Tax          float64 `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	TotalWithTax float64 `gorm:"type:decimal(10,2);not null;default:0" json:"total_with_tax"`
}

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CustomerName  string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone string      `gorm:"type:varchar(32)" json:"customer_phone"`
	Guests        int         `gorm:"not null;default:1" json:"guests"`
	Status        string      `gorm:"type:varchar(20);not null;default:'in_progress'" json:"status"`
	Bills         Bills       `gorm:"embedded;embeddedPrefix:bill_" json:"bills"`
	TableID       *uint       `gorm:"index" json:"table_id,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ComputeBills totals the items and applies TaxRate, rounding to cents.
func ComputeBills(items []OrderItem) Bills {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.Price
	}
	total = roundCents(total)
	tax := roundCents(total * TaxRate)
	return Bills{Total: total, Tax: tax, TotalWithTax: roundCents(total + tax)}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
