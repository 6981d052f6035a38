package models

import "time"

type ShoppingList struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string  `gorm:"type:varchar(150);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	IsCompleted bool    `gorm:"not null;default:false" json:"is_completed"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Items []ShoppingListItem `gorm:"foreignKey:ShoppingListID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (ShoppingList) TableName() string {
	return "shopping_lists"
}
