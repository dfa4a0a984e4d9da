package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Summary is a generated description of the area around a coordinate.
// Rows are append-only.
type Summary struct {
	ID       uint      `gorm:"primaryKey"`
	Summary  *string   `gorm:"type:text"`
	Location string    `gorm:"type:text;not null"`
	Lat      float64   `gorm:"not null"`
	Lng      float64   `gorm:"not null"`
	PostedAt time.Time `gorm:"not null;index"`
}

// SummaryDict is the JSON shape of a Summary
type SummaryDict struct {
	ID       uint    `json:"id"`
	Summary  *string `json:"summary"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	PostedAt string  `json:"posted_at"`
}

// BeforeCreate defaults PostedAt to the creation time in UTC
func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	s.PostedAt = stampNow(s.PostedAt)
	return nil
}

// ToDict converts the record to its JSON shape
func (s Summary) ToDict() SummaryDict {
	return SummaryDict{
		ID:       s.ID,
		Summary:  s.Summary,
		Location: s.Location,
		Lat:      s.Lat,
		Lng:      s.Lng,
		PostedAt: FormatTime(s.PostedAt),
	}
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToDict())
}

// All returns every model managed by AutoMigrate
func All() []interface{} {
	return []interface{}{&Message{}, &Summary{}}
}
