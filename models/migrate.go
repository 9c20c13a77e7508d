package models

import "gorm.io/gorm"

// Migrate creates or updates the tables owned by this service. Catalog tables
// are included so a fresh database is usable in development.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Category{},
		&Unit{},
		&Currency{},
		&Product{},
		&User{},
		&Cart{},
		&CartItem{},
	)
}
