package models

import "time"

type Category struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Color       *string `gorm:"type:varchar(20)" json:"color,omitempty"`
	Icon        *string `gorm:"type:varchar(50)" json:"icon,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
