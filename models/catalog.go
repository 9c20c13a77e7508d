package models

import "time"

// Category groups products in the storefront.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	SlugName  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// Unit is a measurement unit a product is sold in (kg, pcs, ...).
type Unit struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(20);not null" json:"name"`
	Description string `gorm:"type:varchar(100)" json:"description"`
}

// Currency a product is priced in.
type Currency struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(10);not null" json:"name"`
	Description string `gorm:"type:varchar(100)" json:"description"`
}

// Product is catalog reference data. The cart service only reads it.
type Product struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	SlugName        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug_name"`
	UnitID          uint      `gorm:"not null" json:"unit_id"`
	Unit            *Unit     `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	QuantityPerUnit float64   `gorm:"not null;default:1" json:"quantity_per_unit"`
	Price           float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	CurrencyID      uint      `gorm:"not null" json:"currency_id"`
	Currency        *Currency `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	CategoryID      uint      `gorm:"not null;index" json:"category_id"`
	Category        *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
