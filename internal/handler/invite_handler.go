package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"divisadero-api/internal/middleware"
	"divisadero-api/pkg/apperr"
	"divisadero-api/pkg/authadmin"
	"divisadero-api/pkg/logger"
)

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Invite onboards a new user into the organization named in the path.
func (h *Handler) Invite(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	orgSlug := c.Param("org_slug")

	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invite request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := h.invites.Invite(orgSlug, req.Email, user)
	if err != nil {
		if errors.Is(err, authadmin.ErrUserExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "A user with this email is already registered"})
		}
		log.Error("Invite failed",
			zap.String("org_slug", orgSlug),
			zap.String("email", req.Email),
			zap.Error(err))
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Invitation sent to " + req.Email,
		"user_id": userID,
	})
}

// AcceptInvite reconciles the caller's profile from their token metadata.
func (h *Handler) AcceptInvite(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	orgID, orgSlug, err := h.invites.AcceptInvite(user)
	if err != nil {
		if apperr.KindOf(err) == apperr.Validation {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Error("Accept invite failed", zap.String("user_id", user.ID), zap.Error(err))
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"org_id":   orgID,
		"org_slug": orgSlug,
	})
}
