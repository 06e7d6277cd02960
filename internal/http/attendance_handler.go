package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	dto "worktracker.com/worktracker/internal/data_models"
	apperrors "worktracker.com/worktracker/internal/errors"
	"worktracker.com/worktracker/internal/services"
)

func (h *Handler) ClockIn(c echo.Context) error {
	req, err := h.attendanceRequest(c)
	if err != nil {
		return err
	}

	record, err := h.attendance.ClockIn(c.Request().Context(), req.UserID, req.Date, timestamp(req))
	if errors.Is(err, apperrors.ErrAlreadyClockedIn) {
		return c.JSON(apperrors.StatusCode(err), dto.Response{
			Success: false,
			Message: apperrors.Message(err),
			Data:    record,
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.OK(record))
}

func (h *Handler) ClockOut(c echo.Context) error {
	req, err := h.attendanceRequest(c)
	if err != nil {
		return err
	}

	record, err := h.attendance.ClockOut(c.Request().Context(), req.UserID, req.Date, timestamp(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(record))
}

func (h *Handler) ListAttendance(c echo.Context) error {
	var q dto.AttendanceQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	records, err := h.attendance.List(c.Request().Context(), services.AttendanceFilter{
		UserID: q.UserID,
		Date:   q.Date,
		From:   q.From,
		To:     q.To,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(echo.Map{
		"count":   len(records),
		"records": records,
	}))
}

func (h *Handler) TodayAttendance(c echo.Context) error {
	var q dto.UserQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	if err := h.users.Check(q.UserID); err != nil {
		return err
	}

	day, err := h.attendance.Today(c.Request().Context(), q.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(day))
}

func (h *Handler) CleanupAttendance(c echo.Context) error {
	removed, err := h.attendance.Cleanup(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(echo.Map{"removed": removed}))
}

func (h *Handler) attendanceRequest(c echo.Context) (dto.AttendanceRequest, error) {
	var req dto.AttendanceRequest
	if err := bind(c, &req); err != nil {
		return req, err
	}
	return req, h.users.Check(req.UserID)
}

func timestamp(req dto.AttendanceRequest) time.Time {
	if req.Timestamp == nil {
		return time.Time{}
	}
	return *req.Timestamp
}
