package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/auth"
	"github.com/Eursukkul/gym-reservation/internal/dto"
	"github.com/Eursukkul/gym-reservation/internal/middleware"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock ReservationService ---

type mockReservationService struct {
	createFn func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error)
	deleteFn func(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error)
	getFn    func(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error)
	listFn   func(ctx context.Context, filter service.ListFilter) ([]models.Reservation, error)
}

func (m *mockReservationService) CreateReservation(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
	return m.createFn(ctx, in)
}
func (m *mockReservationService) DeleteReservation(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
	return m.deleteFn(ctx, id, p)
}
func (m *mockReservationService) GetReservation(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
	return m.getFn(ctx, id, p)
}
func (m *mockReservationService) ListReservations(ctx context.Context, filter service.ListFilter) ([]models.Reservation, error) {
	return m.listFn(ctx, filter)
}

// --- Helpers ---

var member = auth.Principal{UserID: "user-1"}

func newContext(method, target, body string, p *auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.SetPrincipal(c, *p)
	}
	return c, rec
}

func assertHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, code, he.Code)
	if msg != "" {
		assert.Equal(t, msg, he.Message)
	}
}

// --- Tests ---

func TestCreateReservation_Handler_Success(t *testing.T) {
	var got service.CreateReservationInput
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			got = in
			return &models.Reservation{ID: 7, Date: in.Date, Time: in.Time, Guests: in.Guests, UserID: in.UserID, CreatedAt: time.Now()}, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/v1/reservations", `{"date":"2024-06-01","time":"10:00","guests":3}`, &member)

	h := NewReservationHandler(svc, nil)
	err := h.CreateReservation(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", got.UserID, "owner comes from the token, not the body")

	var resp dto.CreateReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.MsgReservationCreated, resp.Message)
	assert.Equal(t, uint(7), resp.Reservation.ID)
	assert.Equal(t, "10:00", resp.Reservation.Time)
	assert.Equal(t, 3, resp.Reservation.Guests)
}

func TestCreateReservation_Handler_CapacityExceeded(t *testing.T) {
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			return nil, service.ErrCapacityExceeded
		},
	}

	c, _ := newContext(http.MethodPost, "/api/v1/reservations", `{"date":"2024-06-01","time":"10:00","guests":1}`, &member)

	err := NewReservationHandler(svc, nil).CreateReservation(c)

	assertHTTPError(t, err, http.StatusConflict, "La capacidad máxima ha sido excedida para este horario.")
}

func TestCreateReservation_Handler_ValidationRendersFields(t *testing.T) {
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			return nil, &service.ValidationError{Fields: map[string]string{"guests": "El número de personas debe ser al menos 1."}}
		},
	}

	c, rec := newContext(http.MethodPost, "/api/v1/reservations", `{"date":"2024-06-01","time":"10:00","guests":0}`, &member)

	err := NewReservationHandler(svc, nil).CreateReservation(c)
	require.Error(t, err)
	middleware.ErrorHandler(err, c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "guests")
}

func TestCreateReservation_Handler_GuestsAsNumericString(t *testing.T) {
	var got service.CreateReservationInput
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			got = in
			return &models.Reservation{ID: 1, Date: in.Date, Time: in.Time, Guests: in.Guests, UserID: in.UserID}, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/v1/reservations", `{"date":"2024-06-01","time":"10:00","guests":"3"}`, &member)

	err := NewReservationHandler(svc, nil).CreateReservation(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, got.Guests)
}

func TestCreateReservation_Handler_GuestsNotInteger(t *testing.T) {
	called := false
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			called = true
			return nil, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/v1/reservations", `{"date":"2024-06-01","time":"10:00","guests":"abc"}`, &member)

	err := NewReservationHandler(svc, nil).CreateReservation(c)
	require.Error(t, err)
	assert.False(t, called)

	middleware.ErrorHandler(err, c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "El número de personas debe ser un número entero.", resp.Fields["guests"])
}

func TestCreateReservation_Handler_InvalidBody(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/v1/reservations", `{bad json`, &member)

	err := NewReservationHandler(&mockReservationService{}, nil).CreateReservation(c)

	assertHTTPError(t, err, http.StatusBadRequest, "")
}

func TestCreateReservation_Handler_NoPrincipal(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/v1/reservations", `{}`, nil)

	err := NewReservationHandler(&mockReservationService{}, nil).CreateReservation(c)

	assertHTTPError(t, err, http.StatusUnauthorized, "")
}

func TestDeleteReservation_Handler_Success(t *testing.T) {
	var gotID uint
	svc := &mockReservationService{
		deleteFn: func(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
			gotID = id
			return &models.Reservation{ID: id}, nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/api/v1/reservations/3", "", &member)
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := NewReservationHandler(svc, nil).DeleteReservation(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), gotID)
	assert.JSONEq(t, `{"message":"Reserva eliminada exitosamente."}`, rec.Body.String())
}

func TestDeleteReservation_Handler_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", service.ErrReservationNotFound, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockReservationService{
				deleteFn: func(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
					return nil, tc.err
				},
			}
			c, _ := newContext(http.MethodDelete, "/api/v1/reservations/1", "", &member)
			c.SetParamNames("id")
			c.SetParamValues("1")

			err := NewReservationHandler(svc, nil).DeleteReservation(c)

			assertHTTPError(t, err, tc.code, "")
		})
	}
}

func TestDeleteReservation_Handler_UnexpectedErrorHidesCause(t *testing.T) {
	svc := &mockReservationService{
		deleteFn: func(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
			return nil, errors.New("ERROR: relation \"reservations\" does not exist (SQLSTATE 42P01)")
		},
	}
	c, rec := newContext(http.MethodDelete, "/api/v1/reservations/1", "", &member)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := NewReservationHandler(svc, nil).DeleteReservation(c)
	assertHTTPError(t, err, http.StatusInternalServerError, "Internal Server Error")

	middleware.ErrorHandler(err, c)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestDeleteReservation_Handler_InvalidID(t *testing.T) {
	c, _ := newContext(http.MethodDelete, "/api/v1/reservations/abc", "", &member)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := NewReservationHandler(&mockReservationService{}, nil).DeleteReservation(c)

	assertHTTPError(t, err, http.StatusBadRequest, "")
}

func TestGetReservation_Handler(t *testing.T) {
	svc := &mockReservationService{
		getFn: func(ctx context.Context, id uint, p auth.Principal) (*models.Reservation, error) {
			return &models.Reservation{ID: id, Date: "2024-06-01", Time: "08:00", Guests: 2, UserID: p.UserID}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/v1/reservations/5", "", &member)
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := NewReservationHandler(svc, nil).GetReservation(c)

	assert.NoError(t, err)
	var resp dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(5), resp.ID)
	assert.Equal(t, "2024-06-01", resp.Date)
}

func TestListReservations_Handler_UsesPrincipalAndLocalToday(t *testing.T) {
	var got service.ListFilter
	svc := &mockReservationService{
		listFn: func(ctx context.Context, filter service.ListFilter) ([]models.Reservation, error) {
			got = filter
			return []models.Reservation{
				{ID: 1, Date: "2024-06-01", Time: "06:00", Guests: 1, UserID: "user-1"},
				{ID: 2, Date: "2024-06-02", Time: "07:00", Guests: 2, UserID: "user-1"},
			}, nil
		},
	}

	loc := time.FixedZone("UTC-5", -5*60*60)
	h := NewReservationHandler(svc, loc)
	h.now = func() time.Time { return time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC) }

	c, rec := newContext(http.MethodGet, "/api/v1/reservations", "", &member)
	err := h.ListReservations(c)

	assert.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "2024-06-01", got.AsOf.Format(models.DateLayout))

	var resp []dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestReservationRoutes_RequireToken(t *testing.T) {
	const secret = "test-secret"
	svc := &mockReservationService{
		listFn: func(ctx context.Context, filter service.ListFilter) ([]models.Reservation, error) {
			return []models.Reservation{{ID: 1, UserID: filter.UserID}}, nil
		},
	}

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	NewReservationHandler(svc, nil).RegisterRoutes(e, middleware.JWTAuth(secret))

	rec := serve(e, http.MethodGet, "/api/v1/reservations", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/api/v1/reservations", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := auth.IssueToken(secret, "user-9", "", time.Hour)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/api/v1/reservations", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "user-9", resp[0].UserID)
}
