package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TimeFormat is the wire format of posted_at: second precision, always UTC
const TimeFormat = "2006-01-02T15:04:05Z"

// FormatTime renders t in TimeFormat after converting it to UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// stampNow returns the creation timestamp used for new rows
func stampNow(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Second)
}

// Message is a short text post pinned to a coordinate
type Message struct {
	ID       uint      `gorm:"primaryKey"`
	Message  string    `gorm:"type:text;not null"`
	Lat      float64   `gorm:"not null"`
	Lng      float64   `gorm:"not null"`
	PostedAt time.Time `gorm:"not null;index"`
}

// MessageDict is the JSON shape of a Message
type MessageDict struct {
	ID       uint    `json:"id"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	PostedAt string  `json:"posted_at"`
}

// BeforeCreate defaults PostedAt to the creation time in UTC
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	m.PostedAt = stampNow(m.PostedAt)
	return nil
}

// ToDict converts the record to its JSON shape
func (m Message) ToDict() MessageDict {
	return MessageDict{
		ID:       m.ID,
		Message:  m.Message,
		Lat:      m.Lat,
		Lng:      m.Lng,
		PostedAt: FormatTime(m.PostedAt),
	}
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToDict())
}
