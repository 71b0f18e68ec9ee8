package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"divisadero-api/internal/store"
	"divisadero-api/pkg/logger"
)

// The passthrough read endpoints keep the envelope convention: failures are
// reported inside a 200 response as {status: "error", error: ...}.

// ListProfiles returns all profiles visible to the restricted handle.
func (h *Handler) ListProfiles(c echo.Context) error {
	log := logger.FromContext(c)

	profiles, err := h.reads.ListProfiles()
	if err != nil {
		log.Error("Failed to retrieve profiles", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "failed to retrieve profiles"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// ListBrands returns all brands.
func (h *Handler) ListBrands(c echo.Context) error {
	log := logger.FromContext(c)

	brands, err := h.reads.ListBrands()
	if err != nil {
		log.Error("Failed to retrieve brands", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "failed to retrieve brands"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"brands": brands,
		"count":  len(brands),
	})
}

// GetBrand returns a single brand by slug. A missing brand is not a 404:
// the error rides inside a 200 envelope.
func (h *Handler) GetBrand(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	brand, err := h.reads.GetBrandBySlug(slug)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "Brand not found"})
	}
	if err != nil {
		log.Error("Failed to retrieve brand", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "failed to retrieve brand"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"brand":  brand,
	})
}
