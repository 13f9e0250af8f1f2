package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/louis5103/auth-service/internal/api/metrics"
	"github.com/louis5103/auth-service/internal/core/domain"
	"github.com/louis5103/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin moderator user"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginResponse is the envelope returned by login and registration.
type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newLoginResponse(result *domain.AuthResult) loginResponse {
	return loginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(result.ExpiresAt).Round(time.Second).Seconds()),
		User:        result.User,
	}
}

// Register creates a new account and signs it in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newLoginResponse(result))
}

// Login authenticates credentials and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, newLoginResponse(result))
}

// Logout denylists the caller's token. The response is 200 even when the
// revocation store is down: the write is best-effort and the client
// discarding the token is the primary defense.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, err := ctxRawToken(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		metrics.RevocationsTotal.WithLabelValues("error").Inc()
		h.log.Warn().Err(err).Msg("logout revocation write failed, responding success anyway")
	} else {
		metrics.RevocationsTotal.WithLabelValues("ok").Inc()
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "로그아웃되었습니다."})
}

// Profile returns the caller's current account state.
func (h *AuthHandler) Profile(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Account returns any account by id. Restricted to admins by route policy.
func (h *AuthHandler) Account(c echo.Context) error {
	user, err := h.authService.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
