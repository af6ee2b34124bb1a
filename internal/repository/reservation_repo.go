package repository

import (
	"context"

	"github.com/Eursukkul/gym-reservation/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByUser(ctx context.Context, userID, fromDate string) ([]models.Reservation, error)
	SumGuests(ctx context.Context, tx *gorm.DB, date, slot string) (int, error)
	SumGuestsByTime(ctx context.Context, date string) (map[string]int, error)
	SumGuestsFrom(ctx context.Context, fromDate string) ([]models.SlotOccupancy, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindByUser returns the user's reservations dated on or after fromDate, ordered by date then time.
func (r *reservationRepository) FindByUser(ctx context.Context, userID, fromDate string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND slot_date >= ?", userID, fromDate).
		Order("slot_date ASC, slot_time ASC, id ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) SumGuests(ctx context.Context, tx *gorm.DB, date, slot string) (int, error) {
	var total int64
	err := tx.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("COALESCE(SUM(guests), 0)").
		Where("slot_date = ? AND slot_time = ?", date, slot).
		Scan(&total).Error
	return int(total), err
}

type timeTotal struct {
	SlotTime  string
	Occupancy int64
}

// SumGuestsByTime returns the occupancy of every slot that has at least one reservation on date.
func (r *reservationRepository) SumGuestsByTime(ctx context.Context, date string) (map[string]int, error) {
	var rows []timeTotal
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("slot_time, COALESCE(SUM(guests), 0) AS occupancy").
		Where("slot_date = ?", date).
		Group("slot_time").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.SlotTime] = int(row.Occupancy)
	}
	return totals, nil
}

type dateTimeTotal struct {
	SlotDate  string
	SlotTime  string
	Occupancy int64
}

func (r *reservationRepository) SumGuestsFrom(ctx context.Context, fromDate string) ([]models.SlotOccupancy, error) {
	var rows []dateTimeTotal
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("slot_date, slot_time, COALESCE(SUM(guests), 0) AS occupancy").
		Where("slot_date >= ?", fromDate).
		Group("slot_date, slot_time").
		Order("slot_date ASC, slot_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.SlotOccupancy, len(rows))
	for i, row := range rows {
		out[i] = models.SlotOccupancy{Date: row.SlotDate, Time: row.SlotTime, Occupancy: int(row.Occupancy)}
	}
	return out, nil
}

// Delete removes the reservation and reports how many rows went away.
func (r *reservationRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	result := tx.WithContext(ctx).Delete(&models.Reservation{}, id)
	return result.RowsAffected, result.Error
}
