package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawmart/support-system/internal/api/metrics"
	"github.com/pawmart/support-system/internal/core/ports"
)

// AuthHandler exposes the account lifecycle endpoints. When devMode is set,
// password-reset codes are echoed in the response body so the flow can be
// exercised without a mail channel; production never does this.
type AuthHandler struct {
	authService ports.AuthService
	devMode     bool
}

func NewAuthHandler(authService ports.AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{authService: authService, devMode: devMode}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type resetRequestRequest struct {
	Username string `json:"username" validate:"required"`
}

type resetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	ResetCode   string `json:"resetCode" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type statusResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ResetCode string `json:"resetCode,omitempty"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("register", "error").Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues("register", "ok").Inc()
	return c.JSON(http.StatusCreated, statusResponse{Success: true, Message: "user registered successfully"})
}

// Login verifies credentials and issues an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("login", "error").Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues("login", "ok").Inc()
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	accessToken, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("refresh", "error").Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues("refresh", "ok").Inc()
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: accessToken})
}

// Logout invalidates the presented refresh token. Unknown tokens succeed
// too, so retried logouts stay 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("logout", "error").Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues("logout", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

// RequestPasswordReset starts the reset flow. The response does not reveal
// whether the account exists.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	code, err := h.authService.RequestPasswordReset(c.Request().Context(), req.Username)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("reset_request", "error").Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues("reset_request", "ok").Inc()
	resp := statusResponse{Success: true, Message: "if the account exists, a reset code has been issued"}
	if h.devMode {
		resp.ResetCode = code
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword completes the reset flow with a previously issued code.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Username, req.ResetCode, req.NewPassword); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("reset", "error").Inc()
		return err
	}

	metrics.AuthRequestsTotal.WithLabelValues("reset", "ok").Inc()
	return c.JSON(http.StatusOK, statusResponse{Success: true, Message: "password updated successfully"})
}
