package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"divisadero-api/internal/middleware"
	"divisadero-api/pkg/logger"
)

// OrgMe returns the caller's organization, lazily provisioning the default
// organization and the caller's profile when neither exists yet.
func (h *Handler) OrgMe(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	allowed, orgID := h.auth.Authorize(user, DefaultOrgSlug, false)
	if !allowed || orgID == nil {
		log.Warn("Organization resolution denied", zap.String("user_id", user.ID))
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "could not resolve organization"})
	}

	profile, err := h.admin.GetProfile(user.ID)
	if err != nil {
		log.Error("Failed to load profile", zap.String("user_id", user.ID), zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "failed to load profile"})
	}

	// The resolver may have granted against default-org while the profile
	// already belongs elsewhere; the profile's own organization wins here.
	id := *orgID
	if profile.OrgID != nil {
		id = *profile.OrgID
	}

	org, err := h.admin.GetOrgByID(id)
	if err != nil {
		log.Error("Failed to load organization", zap.Int64("org_id", id), zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"status": "error", "error": "failed to load organization"})
	}

	userCount, err := h.admin.CountOrgMembers(id)
	if err != nil {
		log.Warn("Failed to count organization members", zap.Int64("org_id", id), zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"org": echo.Map{
			"org_id":     org.OrgID,
			"org_slug":   org.OrgSlug,
			"created_at": org.CreatedAt,
			"user_count": userCount,
		},
		"is_superuser": profile.IsSuperuser,
	})
}
