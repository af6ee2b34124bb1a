package models

type OccupancyLevel string

const (
	OccupancyLow    OccupancyLevel = "low"
	OccupancyMedium OccupancyLevel = "medium"
	OccupancyHigh   OccupancyLevel = "high"
)

// SlotOccupancy is the summed guest count of one date+time pair.
type SlotOccupancy struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Occupancy int    `json:"occupancy"`

	Level OccupancyLevel `json:"level,omitempty"`
}

// SlotAvailability is one row of the availability view for a single date.
type SlotAvailability struct {
	Time        string         `json:"time"`
	Occupancy   int            `json:"occupancy"`
	MaxCapacity int            `json:"max_capacity"`
	Remaining   int            `json:"remaining"`
	Level       OccupancyLevel `json:"level"`
	Bookable    bool           `json:"bookable"`
}
