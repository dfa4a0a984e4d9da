package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chatonline-world/backend/internal/repository"
	apperrors "chatonline-world/backend/pkg/errors"
)

// timestampLayouts are tried in order by ParseTimestamp: a bare date, then
// every time precision from hours to nanoseconds combined with each offset
// form (none, Z or ±hh:mm, ±hhmm, ±hh). Layouts without a zone yield UTC.
var timestampLayouts = func() []string {
	layouts := []string{"2006-01-02"}
	for _, clock := range []string{"15", "15:04", "15:04:05", "15:04:05.999999999"} {
		for _, zone := range []string{"", "Z07:00", "Z0700", "Z07"} {
			layouts = append(layouts, "2006-01-02T"+clock+zone)
		}
	}
	return layouts
}()

// ParseTimestamp parses an ISO-8601 date or datetime and returns it in UTC.
// A space may separate date and time.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > 10 && value[10] == ' ' {
		value = value[:10] + "T" + value[11:]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// ListParams holds the raw query values of a message listing.
// Empty values leave their bound open.
type ListParams struct {
	Start  string `form:"start"`
	End    string `form:"end"`
	LatMin string `form:"lat_min"`
	LatMax string `form:"lat_max"`
	LngMin string `form:"lng_min"`
	LngMax string `form:"lng_max"`
}

// Filter validates the params and converts them into a repository filter
func (p ListParams) Filter() (repository.MessageFilter, error) {
	var filter repository.MessageFilter

	if p.Start != "" {
		t, err := ParseTimestamp(p.Start)
		if err != nil {
			return filter, apperrors.NewBadRequestError("INVALID_START", "Invalid start date format").AsText()
		}
		filter.Start = &t
	}
	if p.End != "" {
		t, err := ParseTimestamp(p.End)
		if err != nil {
			return filter, apperrors.NewBadRequestError("INVALID_END", "Invalid end date format").AsText()
		}
		filter.End = &t
	}

	bounds := []struct {
		name  string
		raw   string
		target **float64
	}{
		{"lat_min", p.LatMin, &filter.LatMin},
		{"lat_max", p.LatMax, &filter.LatMax},
		{"lng_min", p.LngMin, &filter.LngMin},
		{"lng_max", p.LngMax, &filter.LngMax},
	}
	for _, b := range bounds {
		if b.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(b.raw), 64)
		if err != nil {
			return filter, apperrors.NewBadRequestError("INVALID_BOUND", fmt.Sprintf("Invalid %s value", b.name)).AsText()
		}
		*b.target = &v
	}

	return filter, nil
}

// CreateMessageRequest is the body of POST /api/messages.
// Coordinates may arrive as JSON numbers or numeric strings.
type CreateMessageRequest struct {
	Message string          `json:"message"`
	Lat     json.RawMessage `json:"lat"`
	Lng     json.RawMessage `json:"lng"`
}

var (
	errMissingFields = apperrors.NewBadRequestError("MISSING_FIELDS", "Missing required fields: message, lat, lng").AsText()
	errNotNumeric    = apperrors.NewBadRequestError("INVALID_COORDINATES", "lat and lng must be numeric").AsText()
)

// parseCoordinate reports whether raw holds a value and converts it to a float
func parseCoordinate(raw json.RawMessage) (value float64, present bool, err error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, true, err
		}
		value, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		return value, true, err
	}

	err = json.Unmarshal(raw, &value)
	return value, true, err
}

// validate returns the trimmed text and the coordinates of the request
func (r CreateMessageRequest) validate() (string, float64, float64, error) {
	text := strings.TrimSpace(r.Message)

	lat, latPresent, latErr := parseCoordinate(r.Lat)
	lng, lngPresent, lngErr := parseCoordinate(r.Lng)
	if text == "" || !latPresent || !lngPresent {
		return "", 0, 0, errMissingFields
	}
	if latErr != nil || lngErr != nil {
		return "", 0, 0, errNotNumeric
	}

	return text, lat, lng, nil
}
