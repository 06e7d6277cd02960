package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "worktracker.com/worktracker/internal/data_models"
)

func (h *Handler) Stats(c echo.Context) error {
	s, err := h.stats.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(s))
}

func (h *Handler) ReconcileStats(c echo.Context) error {
	ctx := c.Request().Context()

	fixed, err := h.stats.Reconcile(ctx)
	if err != nil {
		return err
	}
	s, err := h.stats.Stats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(echo.Map{
		"tasksFixed": fixed,
		"stats":      s,
	}))
}

func (h *Handler) Dashboard(c echo.Context) error {
	var q dto.UserQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	if err := h.users.Check(q.UserID); err != nil {
		return err
	}

	dashboard, err := h.stats.Dashboard(c.Request().Context(), q.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(dashboard))
}
