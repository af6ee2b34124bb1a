package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/auth"
	"github.com/Eursukkul/gym-reservation/internal/lock"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/repository"
	"gorm.io/gorm"
)

const (
	msgDateRequired   = "La fecha es obligatoria."
	msgDateInvalid    = "La fecha no es válida."
	msgTimeRequired   = "La hora es obligatoria."
	msgTimeInvalid    = "La hora seleccionada no es válida."
	msgGuestsMin      = "El número de personas debe ser al menos 1."
	msgGuestsMaxFmt   = "El número de personas no puede ser mayor que %d."
	msgCapacityMin    = "La capacidad máxima no puede ser negativa."
	msgUserIDRequired = "El usuario es obligatorio."
)

// EventPublisher broadcasts domain events. A nil publisher disables broadcasting.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type Policy struct {
	// MaxGuestsPerBooking caps the party size of one reservation. 0 means no cap.
	MaxGuestsPerBooking int
	DefaultSlotCapacity int
}

type CreateReservationInput struct {
	Date   string
	Time   string
	Guests int
	UserID string
}

type ListFilter struct {
	UserID string
	AsOf   time.Time
}

type ReservationService interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error)
	GetReservation(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error)
	ListReservations(ctx context.Context, filter ListFilter) ([]models.Reservation, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	capacity        *capacityService
	locker          lock.SlotLocker
	publisher       EventPublisher
	policy          Policy
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	slotRepo repository.TimeSlotRepository,
	locker lock.SlotLocker,
	publisher EventPublisher,
	policy Policy,
) ReservationService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &reservationService{
		reservationRepo: reservationRepo,
		capacity:        newCapacityService(reservationRepo, slotRepo, policy.DefaultSlotCapacity),
		locker:          locker,
		publisher:       publisher,
		policy:          policy,
	}
}

func (s *reservationService) validate(in *CreateReservationInput) error {
	verr := &ValidationError{}

	if date, err := normalizeDate(in.Date); err != nil {
		var dateErr *ValidationError
		if errors.As(err, &dateErr) {
			verr.add("date", dateErr.Fields["date"])
		}
	} else {
		in.Date = date
	}

	switch {
	case in.Time == "":
		verr.add("time", msgTimeRequired)
	case !models.IsSlotLabel(in.Time):
		verr.add("time", msgTimeInvalid)
	}

	switch {
	case in.Guests < 1:
		verr.add("guests", msgGuestsMin)
	case s.policy.MaxGuestsPerBooking > 0 && in.Guests > s.policy.MaxGuestsPerBooking:
		verr.add("guests", fmt.Sprintf(msgGuestsMaxFmt, s.policy.MaxGuestsPerBooking))
	}

	if in.UserID == "" {
		verr.add("user_id", msgUserIDRequired)
	}

	return verr.orNil()
}

func (s *reservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	// The occupancy read and the insert must not interleave with another create on the same slot.
	unlock, err := s.locker.Lock(ctx, lock.SlotKey(in.Date, in.Time))
	if err != nil {
		return nil, fmt.Errorf("lock slot %s %s: %w", in.Date, in.Time, err)
	}
	defer unlock()

	var result *models.Reservation

	err = s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occupancy, err := s.capacity.occupancy(ctx, tx, in.Date, in.Time)
		if err != nil {
			return err
		}

		maxCapacity, err := s.capacity.maxCapacity(ctx, tx, in.Time)
		if err != nil {
			return err
		}

		if occupancy+in.Guests > maxCapacity {
			return ErrCapacityExceeded
		}

		reservation := &models.Reservation{
			Date:   in.Date,
			Time:   in.Time,
			Guests: in.Guests,
			UserID: in.UserID,
		}
		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return err
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("reservation.created", result)
	return result, nil
}

func (s *reservationService) DeleteReservation(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
	reservation, err := s.GetReservation(ctx, id, p)
	if err != nil {
		return nil, err
	}

	affected, err := s.reservationRepo.Delete(ctx, s.reservationRepo.GetDB(), id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrReservationNotFound
	}

	s.publish("reservation.deleted", reservation)
	return reservation, nil
}

// GetReservation returns the reservation only to its owner or an admin.
func (s *reservationService) GetReservation(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if !p.Owns(reservation.UserID) {
		return nil, ErrForbidden
	}
	return reservation, nil
}

func (s *reservationService) ListReservations(ctx context.Context, filter ListFilter) ([]models.Reservation, error) {
	if filter.UserID == "" {
		verr := &ValidationError{}
		verr.add("user_id", msgUserIDRequired)
		return nil, verr
	}
	return s.reservationRepo.FindByUser(ctx, filter.UserID, filter.AsOf.Format(models.DateLayout))
}

func (s *reservationService) publish(routingKey string, r *models.Reservation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, r); err != nil {
		log.Printf("[ReservationService] failed to publish %s for reservation %d: %v", routingKey, r.ID, err)
	}
}
