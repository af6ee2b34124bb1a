package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/repository"
)

type TimeSlotService interface {
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	SetCapacity(ctx context.Context, slot string, maxCapacity int) (*models.TimeSlot, error)
}

type timeSlotService struct {
	repo      repository.TimeSlotRepository
	publisher EventPublisher
}

func NewTimeSlotService(repo repository.TimeSlotRepository, publisher EventPublisher) TimeSlotService {
	return &timeSlotService{repo: repo, publisher: publisher}
}

func (s *timeSlotService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	return s.repo.FindAll(ctx)
}

// SetCapacity stores the ceiling for one slot and publishes timeslot.updated. Every running
// instance has its own queue, so instances with a separate store apply the change too.
func (s *timeSlotService) SetCapacity(ctx context.Context, slot string, maxCapacity int) (*models.TimeSlot, error) {
	verr := &ValidationError{}
	if !models.IsSlotLabel(slot) {
		verr.add("time", msgTimeInvalid)
	}
	if maxCapacity < 0 {
		verr.add("max_capacity", msgCapacityMin)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	ts := &models.TimeSlot{Time: slot, MaxCapacity: maxCapacity}
	if err := s.repo.Upsert(ctx, ts); err != nil {
		return nil, fmt.Errorf("upsert time slot: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("timeslot.updated", ts); err != nil {
			log.Printf("[TimeSlotService] failed to publish timeslot.updated for %s: %v", slot, err)
		}
	}

	return ts, nil
}
