package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"divisadero-api/pkg/logger"
)

// HealthDB reports connectivity to the hosted store. It never raises and
// always answers 200; failures land in the body.
func (h *Handler) HealthDB(c echo.Context) error {
	log := logger.FromContext(c)

	sqlDB, err := h.db.Admin.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		log.Error("Database health check failed", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "error",
			"database": "disconnected",
			"error":    err.Error(),
		})
	}

	response := echo.Map{
		"status":   "healthy",
		"database": "connected",
	}

	if h.adminConfigured {
		response["supabase"] = "configured"
	} else {
		response["supabase"] = "not_configured"
	}

	if count, err := h.admin.CountProfiles(); err != nil {
		log.Error("Failed to count profiles", zap.Error(err))
		response["status"] = "error"
		response["error"] = "failed to count profiles"
	} else {
		response["profiles_count"] = count
	}

	return c.JSON(http.StatusOK, response)
}
