package models

import "time"

// Market is a physical store where prices are observed. Latitude and
// longitude are stored as two nullable columns but must be written as a
// pair; Coordinates is the only way code should read them.
type Market struct {
	ID        string   `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string   `gorm:"type:varchar(150);not null;index" json:"name"`
	Address   *string  `gorm:"type:text" json:"address,omitempty"`
	City      *string  `gorm:"type:varchar(100);index" json:"city,omitempty"`
	State     *string  `gorm:"type:varchar(50);index" json:"state,omitempty"`
	ZipCode   *string  `gorm:"type:varchar(20)" json:"zip_code,omitempty"`
	Latitude  *float64 `gorm:"type:double precision" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"type:double precision" json:"longitude,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Market) TableName() string {
	return "markets"
}

// Coordinate is a WGS 84 point in signed decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinates returns the market position, or false when the market has no
// usable position. A half-set pair counts as unset.
func (m *Market) Coordinates() (Coordinate, bool) {
	if m == nil || m.Latitude == nil || m.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *m.Latitude, Lon: *m.Longitude}, true
}
