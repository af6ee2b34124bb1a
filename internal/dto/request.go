package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type CreateReservationRequest struct {
	Date   string     `json:"date"`
	Time   string     `json:"time"`
	Guests GuestCount `json:"guests"`
}

// GuestCount accepts a JSON integer or a string holding one, as form clients send "3".
// A value that is neither leaves Valid false instead of failing the whole body.
type GuestCount struct {
	Value int
	Set   bool
	Valid bool
}

func (g *GuestCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*g = GuestCount{}
		return nil
	}
	g.Set = true

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			g.Valid = false
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	n, err := strconv.Atoi(raw)
	g.Value, g.Valid = n, err == nil
	return nil
}

type UpsertTimeSlotRequest struct {
	MaxCapacity *int `json:"max_capacity"`
}
