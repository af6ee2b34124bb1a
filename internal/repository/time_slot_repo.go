package repository

import (
	"context"

	"github.com/Eursukkul/gym-reservation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimeSlotRepository interface {
	FindByTime(ctx context.Context, tx *gorm.DB, slot string) (*models.TimeSlot, error)
	FindAll(ctx context.Context) ([]models.TimeSlot, error)
	Upsert(ctx context.Context, slot *models.TimeSlot) error
}

type timeSlotRepository struct {
	db *gorm.DB
}

func NewTimeSlotRepository(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepository{db: db}
}

func (r *timeSlotRepository) FindByTime(ctx context.Context, tx *gorm.DB, slot string) (*models.TimeSlot, error) {
	var ts models.TimeSlot
	if err := tx.WithContext(ctx).Where("slot_time = ?", slot).First(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timeSlotRepository) FindAll(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	if err := r.db.WithContext(ctx).Order("slot_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// Upsert inserts the slot or overwrites the capacity of an existing row with the same time.
func (r *timeSlotRepository) Upsert(ctx context.Context, slot *models.TimeSlot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_capacity", "updated_at"}),
	}).Create(slot).Error
}
