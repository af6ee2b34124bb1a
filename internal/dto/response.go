package dto

import (
	"time"

	"github.com/Eursukkul/gym-reservation/internal/models"
)

const (
	MsgReservationCreated = "Reserva creada exitosamente."
	MsgReservationDeleted = "Reserva eliminada exitosamente."
)

type ReservationResponse struct {
	ID        uint      `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Guests    int       `json:"guests"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReservationResponse struct {
	Message     string              `json:"message"`
	Reservation ReservationResponse `json:"reservation"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AvailabilityResponse struct {
	Date  string                    `json:"date"`
	Slots []models.SlotAvailability `json:"slots"`
}

type AvailableSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Date:      r.Date,
		Time:      r.Time,
		Guests:    r.Guests,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

func ToReservationResponses(list []models.Reservation) []ReservationResponse {
	resp := make([]ReservationResponse, len(list))
	for i := range list {
		resp[i] = ToReservationResponse(&list[i])
	}
	return resp
}
