package models

import "time"

// DateLayout is the calendar-date format used for Reservation.Date. Its lexicographic order
// equals chronological order, which the list and summary queries rely on.
const DateLayout = "2006-01-02"

type Reservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"column:slot_date;type:varchar(10);not null;index:idx_reservation_slot,priority:1" json:"date"`
	Time      string    `gorm:"column:slot_time;type:varchar(5);not null;index:idx_reservation_slot,priority:2" json:"time"`
	Guests    int       `gorm:"not null" json:"guests"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
