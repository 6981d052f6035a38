package models

import "time"

type Product struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string  `gorm:"type:varchar(150);not null;index" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Image       *string `gorm:"type:text" json:"image,omitempty"`
	CategoryID  *string `gorm:"type:uuid;index" json:"category_id,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
