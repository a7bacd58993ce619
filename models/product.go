package models

import "time"

type Product struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	CategoryID  uint     `gorm:"not null;index" json:"category_id"`
	Category    Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64  `gorm:"type:decimal(12,2);not null" json:"price"`
	Description string   `gorm:"type:text" json:"description"`
	// IsEnable marks the product as sellable; disabled products reject new orders.
	IsEnable  bool      `gorm:"not null;default:true" json:"is_enable"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
