package models

import "time"

// Order status lifecycle. Forward-only, PAID is terminal.
const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusPaid       = "PAID"
)

type Order struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	TableID     uint    `gorm:"not null;index" json:"table_id"`
	Table       Table   `gorm:"foreignKey:TableID" json:"table"`
	Status      string  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TotalAmount float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_amount"`
	// AccessKey is the capability token handed to the anonymous customer
	// who placed the order. Set once at creation, never regenerated, and
	// kept out of JSON so list endpoints do not leak it.
	AccessKey string      `gorm:"type:varchar(64);not null" json:"-"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}
