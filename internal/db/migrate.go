package db

import (
	"meucarrim/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Market{},
		&models.PriceObservation{},
		&models.ShoppingList{},
		&models.ShoppingListItem{},
	)
}
