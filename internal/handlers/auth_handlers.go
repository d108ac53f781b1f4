package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/msseason/ai-grant-finder/internal/common"
	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
	"github.com/msseason/ai-grant-finder/internal/services"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
	}
}

// AuthResponse pairs the issued tokens with the account they belong to.
type AuthResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a new account and returns it logged in.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, tokens, err := h.authService.Signup(ctx, &req)
	if errors.Is(err, services.ErrWeakPassword) {
		return common.SendValidationError(c, "password", err.Error())
	}
	if errors.Is(err, services.ErrDuplicateEmail) {
		return common.SendConflictError(c, "Email already registered")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to create account")
	}

	return c.JSON(http.StatusCreated, AuthResponse{TokenResponse: *tokens, User: user})
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, tokens, err := h.authService.Login(ctx, req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return common.SendServerError(c, "Login failed")
	}

	return c.JSON(http.StatusOK, AuthResponse{TokenResponse: *tokens, User: user})
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a fresh token pair.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	tokens, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to refresh token")
	}

	return c.JSON(http.StatusOK, tokens)
}

// LogoutRequest represents the logout payload
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the presented access token and deletes the refresh token.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get("Authorization")
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")
	if accessToken == "" || accessToken == authHeader {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.authService.Logout(ctx, accessToken, req.RefreshToken); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated user's account.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "User")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load user")
	}

	return c.JSON(http.StatusOK, user)
}
