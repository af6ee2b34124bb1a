package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/auth"
	"github.com/Eursukkul/gym-reservation/internal/middleware"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock TimeSlotService ---

type mockTimeSlotService struct {
	listFn func(ctx context.Context) ([]models.TimeSlot, error)
	setFn  func(ctx context.Context, slot string, maxCapacity int) (*models.TimeSlot, error)
}

func (m *mockTimeSlotService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	return m.listFn(ctx)
}
func (m *mockTimeSlotService) SetCapacity(ctx context.Context, slot string, maxCapacity int) (*models.TimeSlot, error) {
	return m.setFn(ctx, slot, maxCapacity)
}

func serve(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestSetCapacity_Handler_Success(t *testing.T) {
	var gotSlot string
	var gotMax int
	svc := &mockTimeSlotService{
		setFn: func(ctx context.Context, slot string, maxCapacity int) (*models.TimeSlot, error) {
			gotSlot, gotMax = slot, maxCapacity
			return &models.TimeSlot{Time: slot, MaxCapacity: maxCapacity}, nil
		},
	}

	admin := auth.Principal{UserID: "staff", Role: auth.RoleAdmin}
	c, rec := newContext(http.MethodPut, "/api/v1/timeslots/10:00", `{"max_capacity":5}`, &admin)
	c.SetParamNames("time")
	c.SetParamValues("10%3A00")

	err := NewTimeSlotHandler(svc).SetCapacity(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10:00", gotSlot)
	assert.Equal(t, 5, gotMax)
}

func TestSetCapacity_Handler_MissingCapacity(t *testing.T) {
	c, rec := newContext(http.MethodPut, "/api/v1/timeslots/10:00", `{}`, nil)
	c.SetParamNames("time")
	c.SetParamValues("10:00")

	err := NewTimeSlotHandler(&mockTimeSlotService{}).SetCapacity(c)
	require.Error(t, err)
	middleware.ErrorHandler(err, c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "max_capacity")
}

func TestTimeSlotRoutes_RequireAdmin(t *testing.T) {
	const secret = "test-secret"
	called := false
	svc := &mockTimeSlotService{
		setFn: func(ctx context.Context, slot string, maxCapacity int) (*models.TimeSlot, error) {
			called = true
			return &models.TimeSlot{Time: slot, MaxCapacity: maxCapacity}, nil
		},
		listFn: func(ctx context.Context) ([]models.TimeSlot, error) {
			return []models.TimeSlot{{Time: "10:00", MaxCapacity: 5}}, nil
		},
	}

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	NewTimeSlotHandler(svc).RegisterRoutes(e, middleware.JWTAuth(secret))

	memberToken, _, err := auth.IssueToken(secret, "user-1", "", time.Hour)
	require.NoError(t, err)
	adminToken, _, err := auth.IssueToken(secret, "staff", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	rec := serve(e, http.MethodPut, "/api/v1/timeslots/10:00", `{"max_capacity":5}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPut, "/api/v1/timeslots/10:00", `{"max_capacity":5}`, memberToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	rec = serve(e, http.MethodPut, "/api/v1/timeslots/10:00", `{"max_capacity":5}`, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	rec = serve(e, http.MethodGet, "/api/v1/timeslots", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var slots []models.TimeSlot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	assert.Len(t, slots, 1)
}
