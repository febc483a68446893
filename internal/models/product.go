package models

import "time"

// Product represents a product in the catalog.
// CreatedAt is assigned by the service on creation and never rewritten.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Brand       string    `json:"brand" gorm:"type:varchar(255);not null"`
	Category    string    `json:"category" gorm:"type:varchar(255);not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}
