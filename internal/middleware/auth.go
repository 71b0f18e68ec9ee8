package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"divisadero-api/pkg/jwtutil"
	"divisadero-api/pkg/logger"
	"divisadero-api/prometheus"
)

// Auth creates a middleware that derives the caller's identity from the
// Authorization header using the injected token decoder.
func Auth(decoder jwtutil.Decoder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing or invalid authorization header"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing or invalid authorization header"})
			}

			user, err := decoder.Decode(parts[1])
			if err != nil {
				log.Warn("Token decode failed", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			c.Set("user", user)
			log.Debug("Token decoded",
				zap.String("user_id", user.ID),
				zap.String("email", user.Email))

			return next(c)
		}
	}
}

// CurrentUser retrieves the authenticated user placed in the context by Auth.
func CurrentUser(c echo.Context) (*jwtutil.User, bool) {
	user, ok := c.Get("user").(*jwtutil.User)
	return user, ok
}
