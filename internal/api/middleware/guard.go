package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/louis5103/auth-service/internal/api/metrics"
	"github.com/louis5103/auth-service/internal/core/access"
	"github.com/louis5103/auth-service/internal/core/domain"
	"github.com/louis5103/auth-service/internal/core/ports"
	"github.com/louis5103/auth-service/internal/core/token"
)

// Context keys under which the guard stores request-scoped auth data.
const (
	ContextKeyIdentity = "auth_identity"
	ContextKeyToken    = "auth_raw_token"
)

// Guard is the access-decision middleware applied to every route. Flow per
// request: resolve the route's requirement from the policy registry; public
// routes skip authentication entirely; otherwise the bearer token is
// extracted, validated (signature, expiry, revocation, account re-fetch),
// and the identity's role is checked against the requirement through the
// role hierarchy. Unauthenticated outcomes carry a generic message; the
// internal cause is only logged.
func Guard(policies *access.Registry, auth ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := policies.Resolve(c.Request().Method, c.Path())
			if req.Public {
				metrics.AccessDecisionsTotal.WithLabelValues("public").Inc()
				return next(c)
			}

			raw, err := bearerToken(c.Request())
			if err != nil {
				metrics.AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			start := time.Now()
			identity, err := auth.Validate(c.Request().Context(), raw)
			metrics.TokenValidationDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues(validationResult(err)).Inc()
				metrics.AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				log.Info().Err(err).
					Str("method", c.Request().Method).
					Str("path", c.Path()).
					Msg("token validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			metrics.TokenValidationsTotal.WithLabelValues("ok").Inc()

			c.Set(ContextKeyIdentity, identity)
			c.Set(ContextKeyToken, raw)

			switch d := access.Decide(identity, req); d.Outcome {
			case access.OutcomeAllow:
				metrics.AccessDecisionsTotal.WithLabelValues("allow").Inc()
				return next(c)
			case access.OutcomeForbidden:
				metrics.AccessDecisionsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, d.Message)
			default:
				metrics.AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, d.Message)
			}
		}
	}
}

// bearerToken extracts the raw token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

// validationResult maps a validation error to its metric label.
func validationResult(err error) string {
	switch {
	case errors.Is(err, token.ErrRevokedToken):
		return "revoked"
	case errors.Is(err, token.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domain.ErrUserNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "account_disabled"
	default:
		return "store_error"
	}
}
