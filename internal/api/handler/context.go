package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/louis5103/auth-service/internal/api/middleware"
	"github.com/louis5103/auth-service/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the guard. Absence means the
// route was wired without the guard in front of it; fail with 401 rather
// than serving an unauthenticated request.
func ctxIdentity(c echo.Context) (*domain.ResolvedIdentity, error) {
	identity, _ := c.Get(middleware.ContextKeyIdentity).(*domain.ResolvedIdentity)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return identity, nil
}

// ctxRawToken returns the bearer token the guard validated for this request.
func ctxRawToken(c echo.Context) (string, error) {
	raw, _ := c.Get(middleware.ContextKeyToken).(string)
	if raw == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return raw, nil
}
