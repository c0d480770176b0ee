package models

import "time"

const (
	TableStatusAvailable = "available"
	TableStatusBooked    = "booked"
)

type Table struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TableNo        int       `gorm:"uniqueIndex;not null" json:"table_no"`
	Seats          int       `gorm:"not null;default:2" json:"seats"`
	Status         string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CurrentOrderID *uint     `json:"current_order_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidTableStatus reports whether status is a known table status.
func ValidTableStatus(status string) bool {
	return status == TableStatusAvailable || status == TableStatusBooked
}
