package models

import "time"

type Table struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Number   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Capacity int    `gorm:"not null;default:2" json:"capacity"`
	FloorID  *uint  `gorm:"index" json:"floor_id,omitempty"`
	Floor    *Floor `gorm:"foreignKey:FloorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"floor,omitempty"`
	// IsAvailable is false while the table has an open order. The flag is
	// flipped by the reservation transaction and released at checkout.
	IsAvailable bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
