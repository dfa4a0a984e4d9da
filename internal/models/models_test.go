package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageToDictFormatsUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	m := Message{
		ID:       7,
		Message:  "hello",
		Lat:      40.1,
		Lng:      -75.3,
		PostedAt: time.Date(2024, 3, 1, 7, 30, 15, 999, loc),
	}

	d := m.ToDict()
	assert.Equal(t, "2024-03-01T12:30:15Z", d.PostedAt)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"message":"hello","lat":40.1,"lng":-75.3,"posted_at":"2024-03-01T12:30:15Z"}`, string(raw))
}

func TestSummaryNullableText(t *testing.T) {
	s := Summary{ID: 1, Location: "California, United States", Lat: 36.7, Lng: -119.4}

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"summary":null`)
	assert.Contains(t, string(raw), `"location":"California, United States"`)
}

func TestBeforeCreateStampsTime(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Second)

	m := &Message{}
	require.NoError(t, m.BeforeCreate(nil))

	assert.Equal(t, time.UTC, m.PostedAt.Location())
	assert.Zero(t, m.PostedAt.Nanosecond())
	assert.False(t, m.PostedAt.Before(before))

	fixed := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &Summary{PostedAt: fixed}
	require.NoError(t, s.BeforeCreate(nil))
	assert.Equal(t, fixed, s.PostedAt)
}
