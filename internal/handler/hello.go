package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root returns the welcome message
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to Divisadero API"})
}

// Health is the liveness probe
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}
