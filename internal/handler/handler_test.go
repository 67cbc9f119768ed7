package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"apptbook/internal/auth"
	"apptbook/internal/errors"
	"apptbook/internal/model"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

// MockAppointmentService is a mock implementation of service.AppointmentService.
type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Create(ctx context.Context, ownerID uint, personName, title string, scheduledAt time.Time) (*model.Appointment, error) {
	args := m.Called(ctx, ownerID, personName, title, scheduledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockAppointmentService) ListForOwner(ctx context.Context, ownerID uint) ([]model.Appointment, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Update(ctx context.Context, id, ownerID uint, title string, scheduledAt time.Time) error {
	args := m.Called(ctx, id, ownerID, title, scheduledAt)
	return args.Error(0)
}

func (m *MockAppointmentService) Delete(ctx context.Context, id, ownerID uint) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func doJSON(e *echo.Echo, method, target, body string, claims *auth.Claims, h echo.HandlerFunc, pathParam ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set("user", claims)
	}
	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAuthService)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"username":"alice","password":"pass1"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "alice", "pass1").
					Return(&model.User{ID: 1, Username: "alice"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate username",
			body: `{"username":"alice","password":"pass1"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "alice", "pass1").
					Return(nil, errors.ErrUsernameTaken)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "short password rejected before the service",
			body:           `{"username":"alice","password":"abc"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			body:           `{"username":"alice"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAuthService)
			tt.setupMock(mockSvc)
			h := NewAuthHandler(mockSvc)

			rec := doJSON(newEcho(), http.MethodPost, "/auth/register", tt.body, nil, h.Register)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	mockSvc := new(MockAuthService)
	mockSvc.On("Login", mock.Anything, "alice", "pass1").
		Return("signed-token", &model.User{ID: 1, Username: "alice"}, nil)
	h := NewAuthHandler(mockSvc)

	rec := doJSON(newEcho(), http.MethodPost, "/auth/login", `{"username":"alice","password":"pass1"}`, nil, h.Login)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.Token)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	mockSvc := new(MockAuthService)
	mockSvc.On("Login", mock.Anything, "alice", "wrong").
		Return("", nil, errors.ErrInvalidCredentials)
	h := NewAuthHandler(mockSvc)

	rec := doJSON(newEcho(), http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`, nil, h.Login)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppointmentHandler_Create(t *testing.T) {
	claims := &auth.Claims{UserID: 1, Username: "alice"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAppointmentService)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"personName":"Dr. Adams","title":"Checkup","date":"2031-05-20","time":"10:00"}`,
			setupMock: func(m *MockAppointmentService) {
				m.On("Create", mock.Anything, uint(1), "Dr. Adams", "Checkup", mock.AnythingOfType("time.Time")).
					Return(&model.Appointment{ID: 3, OwnerID: 1, Status: model.AppointmentStatusActive}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "past time",
			body: `{"personName":"Dr. Adams","title":"Checkup","date":"2020-01-01","time":"10:00"}`,
			setupMock: func(m *MockAppointmentService) {
				m.On("Create", mock.Anything, uint(1), "Dr. Adams", "Checkup", mock.AnythingOfType("time.Time")).
					Return(nil, errors.ErrPastTime)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "double booking",
			body: `{"personName":"Dr. Adams","title":"Checkup","date":"2031-05-20","time":"10:00"}`,
			setupMock: func(m *MockAppointmentService) {
				m.On("Create", mock.Anything, uint(1), "Dr. Adams", "Checkup", mock.AnythingOfType("time.Time")).
					Return(nil, errors.ErrTimeSlotTaken)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unparsable date",
			body:           `{"personName":"Dr. Adams","title":"Checkup","date":"someday","time":"10:00"}`,
			setupMock:      func(m *MockAppointmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			body:           `{"title":"Checkup"}`,
			setupMock:      func(m *MockAppointmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAppointmentService)
			tt.setupMock(mockSvc)
			h := NewAppointmentHandler(mockSvc)

			rec := doJSON(newEcho(), http.MethodPost, "/appointments", tt.body, claims, h.Create)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAppointmentHandler_List(t *testing.T) {
	claims := &auth.Claims{UserID: 1, Username: "alice"}

	mockSvc := new(MockAppointmentService)
	mockSvc.On("ListForOwner", mock.Anything, uint(1)).Return([]model.Appointment{
		{ID: 3, OwnerID: 1, Title: "Checkup", Status: model.AppointmentStatusActive},
	}, nil)
	h := NewAppointmentHandler(mockSvc)

	rec := doJSON(newEcho(), http.MethodGet, "/appointments", "", claims, h.List)

	assert.Equal(t, http.StatusOK, rec.Code)
	var appts []model.Appointment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
	assert.Len(t, appts, 1)
	assert.Equal(t, uint(3), appts[0].ID)
}

func TestAppointmentHandler_Delete(t *testing.T) {
	claims := &auth.Claims{UserID: 2, Username: "mallory"}

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockAppointmentService)
		expectedStatus int
	}{
		{
			name: "deleted",
			id:   "3",
			setupMock: func(m *MockAppointmentService) {
				m.On("Delete", mock.Anything, uint(3), uint(2)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "someone else's appointment",
			id:   "3",
			setupMock: func(m *MockAppointmentService) {
				m.On("Delete", mock.Anything, uint(3), uint(2)).Return(errors.ErrNotFoundOrUnauthorized)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "malformed id",
			id:             "abc",
			setupMock:      func(m *MockAppointmentService) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAppointmentService)
			tt.setupMock(mockSvc)
			h := NewAppointmentHandler(mockSvc)

			rec := doJSON(newEcho(), http.MethodDelete, "/appointments/"+tt.id, "", claims, h.Delete, "id", tt.id)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAppointmentHandler_Update(t *testing.T) {
	claims := &auth.Claims{UserID: 1, Username: "alice"}
	body := `{"title":"Moved","date":"2031-05-21","time":"11:00"}`

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{"updated", nil, http.StatusOK},
		{"slot conflict", errors.ErrTimeSlotTaken, http.StatusBadRequest},
		{"past time", errors.ErrPastTime, http.StatusBadRequest},
		{"not found or unauthorized", errors.ErrNotFoundOrUnauthorized, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAppointmentService)
			mockSvc.On("Update", mock.Anything, uint(3), uint(1), "Moved", mock.AnythingOfType("time.Time")).
				Return(tt.serviceErr)
			h := NewAppointmentHandler(mockSvc)

			rec := doJSON(newEcho(), http.MethodPut, "/appointments/3", body, claims, h.Update, "id", "3")
			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestOwnerAlwaysComesFromToken(t *testing.T) {
	// the ownerId in a request body must be ignored; only token claims count
	claims := &auth.Claims{UserID: 9, Username: "alice"}

	mockSvc := new(MockAppointmentService)
	mockSvc.On("Create", mock.Anything, uint(9), "Dr. Adams", "Checkup", mock.AnythingOfType("time.Time")).
		Return(&model.Appointment{ID: 1, OwnerID: 9}, nil)
	h := NewAppointmentHandler(mockSvc)

	body := `{"ownerId":1,"personName":"Dr. Adams","title":"Checkup","date":"2031-05-20","time":"10:00"}`
	rec := doJSON(newEcho(), http.MethodPost, "/appointments", body, claims, h.Create)

	assert.Equal(t, http.StatusCreated, rec.Code)
	mockSvc.AssertExpectations(t)
}
