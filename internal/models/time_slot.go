package models

import (
	"slices"
	"time"
)

// TimeSlot holds the capacity ceiling shared by every reservation with the same Time label,
// whatever the date.
type TimeSlot struct {
	Time        string    `gorm:"column:slot_time;primaryKey;type:varchar(5)" json:"time"`
	MaxCapacity int       `gorm:"not null" json:"max_capacity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SlotLabels is the fixed set of bookable hours, 06:00 to 20:00 inclusive.
var SlotLabels = []string{
	"06:00", "07:00", "08:00", "09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
}

func IsSlotLabel(s string) bool {
	return slices.Contains(SlotLabels, s)
}
