package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"apptbook/internal/auth"
	"apptbook/internal/errors"
	"apptbook/internal/service"
)

// scheduledAtLayout is how the SPA sends appointment times: a date field plus
// a separate HH:MM time field, joined server-side.
const scheduledAtLayout = "2006-01-02 15:04"

// AppointmentHandler handles appointment endpoints.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// CreateAppointmentRequest represents an appointment creation request.
type CreateAppointmentRequest struct {
	PersonName string `json:"personName" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required"`
}

// UpdateAppointmentRequest represents an appointment update request.
type UpdateAppointmentRequest struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
}

// SuccessResponse marks a completed mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ownerID extracts the authenticated user id from the verified token claims.
// The client-supplied body is never trusted for ownership.
func ownerID(c echo.Context) (uint, error) {
	claims, ok := c.Get("user").(*auth.Claims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid token",
			Code:  "UNAUTHORIZED",
		})
	}
	return claims.UserID, nil
}

func parseScheduledAt(date, clock string) (time.Time, error) {
	return time.ParseInLocation(scheduledAtLayout, date+" "+clock, time.Local)
}

// List godoc
// @Summary List the authenticated user's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Appointment
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}

	appts, err := h.appointmentService.ListForOwner(c.Request().Context(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, appts)
}

// Create godoc
// @Summary Book a new appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAppointmentRequest true "Appointment data"
// @Success 201 {object} model.Appointment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}

	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	scheduledAt, err := parseScheduledAt(req.Date, req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid date or time",
			Code:  "VALIDATION_FAILED",
		})
	}

	appt, err := h.appointmentService.Create(c.Request().Context(), uid, req.PersonName, req.Title, scheduledAt)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, appt)
}

// Update godoc
// @Summary Reschedule or retitle an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body UpdateAppointmentRequest true "Updated data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid appointment id",
			Code:  "VALIDATION_FAILED",
		})
	}

	var req UpdateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	scheduledAt, err := parseScheduledAt(req.Date, req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid date or time",
			Code:  "VALIDATION_FAILED",
		})
	}

	if err := h.appointmentService.Update(c.Request().Context(), uint(id), uid, req.Title, scheduledAt); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Delete godoc
// @Summary Delete an appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}

	// a malformed id matches no record, which is indistinguishable from
	// acting on someone else's appointment
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(errors.ErrNotFoundOrUnauthorized)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if err := h.appointmentService.Delete(c.Request().Context(), uint(id), uid); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
