package service

import (
	"context"
	"errors"
	"iter"
	"log"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/repository"
	"gorm.io/gorm"
)

const DefaultSlotCapacity = 20

// Occupancy thresholds for the availability colors. They are absolute guest counts and do not
// scale with a slot's configured capacity.
const (
	highOccupancyAbove   = 15
	mediumOccupancyAbove = 5
)

func ClassifyOccupancy(occupancy int) models.OccupancyLevel {
	switch {
	case occupancy > highOccupancyAbove:
		return models.OccupancyHigh
	case occupancy > mediumOccupancyAbove:
		return models.OccupancyMedium
	default:
		return models.OccupancyLow
	}
}

type CapacityService interface {
	Occupancy(ctx context.Context, date, slot string) (int, error)
	ResolveMaxCapacity(ctx context.Context, slot string) (int, error)
	AvailableSlots(ctx context.Context, date string) (iter.Seq[string], error)
	Availability(ctx context.Context, date string) ([]models.SlotAvailability, error)
	OccupancySummary(ctx context.Context, asOf time.Time) ([]models.SlotOccupancy, error)
}

type capacityService struct {
	reservationRepo repository.ReservationRepository
	slotRepo        repository.TimeSlotRepository
	defaultCapacity int
}

func NewCapacityService(reservationRepo repository.ReservationRepository, slotRepo repository.TimeSlotRepository, defaultCapacity int) CapacityService {
	return newCapacityService(reservationRepo, slotRepo, defaultCapacity)
}

func newCapacityService(reservationRepo repository.ReservationRepository, slotRepo repository.TimeSlotRepository, defaultCapacity int) *capacityService {
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultSlotCapacity
	}
	return &capacityService{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		defaultCapacity: defaultCapacity,
	}
}

func (s *capacityService) Occupancy(ctx context.Context, date, slot string) (int, error) {
	return s.occupancy(ctx, s.reservationRepo.GetDB(), date, slot)
}

func (s *capacityService) ResolveMaxCapacity(ctx context.Context, slot string) (int, error) {
	return s.maxCapacity(ctx, s.reservationRepo.GetDB(), slot)
}

func (s *capacityService) occupancy(ctx context.Context, tx *gorm.DB, date, slot string) (int, error) {
	return s.reservationRepo.SumGuests(ctx, tx, date, slot)
}

// maxCapacity falls back to the default when the slot has no configuration row.
func (s *capacityService) maxCapacity(ctx context.Context, tx *gorm.DB, slot string) (int, error) {
	ts, err := s.slotRepo.FindByTime(ctx, tx, slot)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultCapacity, nil
		}
		return 0, err
	}
	return ts.MaxCapacity, nil
}

// Availability lists every slot of the day with its occupancy against its ceiling.
func (s *capacityService) Availability(ctx context.Context, date string) ([]models.SlotAvailability, error) {
	date, verr := normalizeDate(date)
	if verr != nil {
		return nil, verr
	}

	totals, err := s.reservationRepo.SumGuestsByTime(ctx, date)
	if err != nil {
		return nil, err
	}
	configured, err := s.slotRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ceilings := make(map[string]int, len(configured))
	for _, ts := range configured {
		ceilings[ts.Time] = ts.MaxCapacity
	}

	out := make([]models.SlotAvailability, len(models.SlotLabels))
	for i, label := range models.SlotLabels {
		maxCap, ok := ceilings[label]
		if !ok {
			maxCap = s.defaultCapacity
		}
		occ := totals[label]
		out[i] = models.SlotAvailability{
			Time:        label,
			Occupancy:   occ,
			MaxCapacity: maxCap,
			Remaining:   max(maxCap-occ, 0),
			Level:       ClassifyOccupancy(occ),
			Bookable:    occ < maxCap,
		}
	}
	return out, nil
}

// AvailableSlots yields the labels that still have room on date. The date is checked up front;
// occupancy is read each time the sequence is ranged over, so a second pass sees bookings made
// in between. A read failure during iteration is logged and ends the sequence.
func (s *capacityService) AvailableSlots(ctx context.Context, date string) (iter.Seq[string], error) {
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		view, err := s.Availability(ctx, date)
		if err != nil {
			log.Printf("[CapacityService] failed to read availability for %s: %v", date, err)
			return
		}
		for _, a := range view {
			if !a.Bookable {
				continue
			}
			if !yield(a.Time) {
				return
			}
		}
	}, nil
}

// OccupancySummary groups occupancy by date then time for every date on or after asOf.
func (s *capacityService) OccupancySummary(ctx context.Context, asOf time.Time) ([]models.SlotOccupancy, error) {
	rows, err := s.reservationRepo.SumGuestsFrom(ctx, asOf.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Level = ClassifyOccupancy(rows[i].Occupancy)
	}
	return rows, nil
}

func normalizeDate(raw string) (string, error) {
	verr := &ValidationError{}
	if raw == "" {
		verr.add("date", msgDateRequired)
		return "", verr
	}
	d, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		verr.add("date", msgDateInvalid)
		return "", verr
	}
	return d.Format(models.DateLayout), nil
}
