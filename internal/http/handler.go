package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/constants"
	dto "worktracker.com/worktracker/internal/data_models"
	apperrors "worktracker.com/worktracker/internal/errors"
	"worktracker.com/worktracker/internal/http/validators"
	"worktracker.com/worktracker/internal/services"
)

type Services struct {
	Tasks      *services.TaskService
	Entries    *services.TimeEntryService
	Timer      *services.TimerService
	Attendance *services.AttendanceService
	Stats      *services.StatsService
}

type Handler struct {
	tasks      *services.TaskService
	entries    *services.TimeEntryService
	timer      *services.TimerService
	attendance *services.AttendanceService
	stats      *services.StatsService
	users      validators.UserAllowlist
	clock      clock.Clock
}

func NewHandler(svc Services, users validators.UserAllowlist, c clock.Clock) *Handler {
	return &Handler{
		tasks:      svc.Tasks,
		entries:    svc.Entries,
		timer:      svc.Timer,
		attendance: svc.Attendance,
		stats:      svc.Stats,
		users:      users,
		clock:      c,
	}
}

// ErrorHandler renders every failure in the {success:false, message} envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperrors.StatusCode(err)
	message := apperrors.Message(err)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request().Method, c.Path(), err)
	}

	if err := c.JSON(status, dto.Fail(message)); err != nil {
		log.Printf("failed to write error response: %v", err)
	}
}

// mutated answers a task or time-entry mutation with freshly recalculated stats.
func (h *Handler) mutated(c echo.Context, status int, data any) error {
	s, err := h.stats.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(status, dto.Response{Success: true, Data: data, Stats: s})
}

// bind decodes and validates a request body or query.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return validators.BindingError(err)
	}
	return c.Validate(req)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), req.Title, req.Description, req.EstimatedHours)
	if err != nil {
		return err
	}

	return h.mutated(c, http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	task, err := h.tasks.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(task))
}

func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.tasks.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	}))
}

func (h *Handler) UpdateTaskStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	var req dto.UpdateTaskStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.UpdateStatus(c.Request().Context(), id, constants.TaskStatus(req.Status))
	if err != nil {
		return err
	}

	return h.mutated(c, http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	removed, err := h.tasks.DeleteTask(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return h.mutated(c, http.StatusOK, echo.Map{
		"id":             id,
		"removedEntries": removed,
	})
}
