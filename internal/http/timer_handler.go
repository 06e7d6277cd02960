package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "worktracker.com/worktracker/internal/data_models"
	apperrors "worktracker.com/worktracker/internal/errors"
	"worktracker.com/worktracker/internal/export"
	"worktracker.com/worktracker/internal/services"
)

func (h *Handler) StartTimer(c echo.Context) error {
	var req dto.TimerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.users.Check(req.UserID); err != nil {
		return err
	}

	result, err := h.timer.Start(c.Request().Context(), req.UserID, req.TaskID)
	if err != nil {
		return err
	}

	return h.mutated(c, http.StatusOK, result)
}

func (h *Handler) StopTimer(c echo.Context) error {
	var req dto.TimerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.users.Check(req.UserID); err != nil {
		return err
	}

	entry, err := h.timer.Stop(c.Request().Context(), req.UserID, req.TaskID)
	if err != nil {
		return err
	}

	return h.mutated(c, http.StatusOK, echo.Map{
		"stopped": entry != nil,
		"entry":   entry,
	})
}

func (h *Handler) CurrentTimer(c echo.Context) error {
	var q dto.TimerQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	if err := h.users.Check(q.UserID); err != nil {
		return err
	}

	state, err := h.timer.Current(c.Request().Context(), q.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(state))
}

func (h *Handler) CreateTimeEntry(c echo.Context) error {
	var req dto.CreateTimeEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.users.Check(req.UserID); err != nil {
		return err
	}

	entry, created, err := h.entries.Create(c.Request().Context(), req.UserID, req.TaskID, req.StartTime, req.EndTime)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	return h.mutated(c, status, entry)
}

func (h *Handler) ListTimeEntries(c echo.Context) error {
	filter, err := entryFilter(c)
	if err != nil {
		return err
	}

	entries, err := h.entries.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(echo.Map{
		"count":   len(entries),
		"entries": entries,
	}))
}

func (h *Handler) GroupedTimeEntries(c echo.Context) error {
	filter, err := entryFilter(c)
	if err != nil {
		return err
	}

	groups, err := h.entries.Grouped(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(groups))
}

func (h *Handler) ExportTimeEntries(c echo.Context) error {
	filter, err := entryFilter(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	entries, err := h.entries.List(ctx, filter)
	if err != nil {
		return err
	}
	tasks, err := h.tasks.ListTasks(ctx)
	if err != nil {
		return err
	}
	records, err := h.attendance.List(ctx, services.AttendanceFilter{UserID: filter.UserID, From: filter.From, To: filter.To})
	if err != nil {
		return err
	}

	wb := export.Workbook{
		Entries:    entries,
		TaskTitles: make(map[string]string, len(tasks)),
		Attendance: records,
	}
	for _, t := range tasks {
		wb.TaskTitles[t.ID] = t.Title
	}

	// render fully before committing the response so a failure still gets an error envelope
	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return apperrors.ErrExport.Wrap(err)
	}

	name := "worktracker-" + h.clock.Now().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(buf.Len()))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func entryFilter(c echo.Context) (services.EntryFilter, error) {
	var q dto.TimeEntryQuery
	if err := bind(c, &q); err != nil {
		return services.EntryFilter{}, err
	}
	return services.EntryFilter{TaskID: q.TaskID, UserID: q.UserID, From: q.From, To: q.To}, nil
}
