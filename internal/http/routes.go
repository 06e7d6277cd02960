package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"worktracker.com/worktracker/internal/clock"
	middleware "worktracker.com/worktracker/internal/http/middlewares"
	"worktracker.com/worktracker/internal/http/validators"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int, c clock.Clock) {
	e.Validator = validators.NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute, c))

	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks", h.ListTasks)
	e.GET("/tasks/:id", h.GetTask)
	e.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	e.DELETE("/tasks/:id", h.DeleteTask)

	e.POST("/timer/start", h.StartTimer)
	e.POST("/timer/stop", h.StopTimer)
	e.GET("/timer", h.CurrentTimer)

	e.POST("/time-entries", h.CreateTimeEntry)
	e.GET("/time-entries", h.ListTimeEntries)
	e.GET("/time-entries/grouped", h.GroupedTimeEntries)
	e.GET("/time-entries/export", h.ExportTimeEntries)

	e.POST("/attendance/clock-in", h.ClockIn)
	e.POST("/attendance/clock-out", h.ClockOut)
	e.GET("/attendance", h.ListAttendance)
	e.GET("/attendance/today", h.TodayAttendance)
	e.POST("/attendance/cleanup", h.CleanupAttendance)

	e.GET("/stats", h.Stats)
	e.POST("/stats/reconcile", h.ReconcileStats)
	e.GET("/dashboard", h.Dashboard)
}
