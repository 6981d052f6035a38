package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one recorded price of a product at a market on a date.
// The table is an append-only log: many rows may exist for the same
// (product, market) pair, and rows are only touched again to correct a
// mistyped price or date.
type PriceObservation struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	ProductID    string          `gorm:"type:uuid;not null;index:idx_observations_product_date" json:"product_id"`
	MarketID     string          `gorm:"type:uuid;not null;index" json:"market_id"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	PurchaseDate time.Time       `gorm:"type:timestamptz;not null;index:idx_observations_product_date" json:"purchase_date"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Market  *Market  `gorm:"foreignKey:MarketID" json:"market,omitempty"`
}

func (PriceObservation) TableName() string {
	return "price_observations"
}
