package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShoppingListItem struct {
	ID             string           `gorm:"primaryKey;type:uuid" json:"id"`
	ShoppingListID string           `gorm:"type:uuid;not null;uniqueIndex:idx_list_product" json:"shopping_list_id"`
	ProductID      string           `gorm:"type:uuid;not null;uniqueIndex:idx_list_product" json:"product_id"`
	Quantity       int              `gorm:"not null;default:1" json:"quantity"`
	IsPurchased    bool             `gorm:"not null;default:false" json:"is_purchased"`
	Notes          *string          `gorm:"type:text" json:"notes,omitempty"`
	EstimatedPrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"estimated_price,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (ShoppingListItem) TableName() string {
	return "shopping_list_items"
}
