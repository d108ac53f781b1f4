package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/msseason/ai-grant-finder/internal/common"
	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

// UserHandlers handles admin-side account management. All routes sit behind
// the admin middleware.
type UserHandlers struct {
	userRepo repositories.UserRepository
}

func NewUserHandlers(userRepo repositories.UserRepository) *UserHandlers {
	return &UserHandlers{userRepo: userRepo}
}

// List handles GET /admin/users
func (h *UserHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 100
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	users, err := h.userRepo.List(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /admin/users/:id
func (h *UserHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.userRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "User")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PATCH /admin/users/:id with a partial update. Absent fields
// keep their stored values.
func (h *UserHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var patch models.UserUpdate
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if patch.Plan != nil && !models.ValidPlan(*patch.Plan) {
		return common.SendValidationError(c, "plan", "unknown plan")
	}
	if patch.Status != nil && !models.ValidUserStatus(*patch.Status) {
		return common.SendValidationError(c, "status", "unknown status")
	}

	user, err := h.userRepo.Update(ctx, id, &patch)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "User")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /admin/users/:id
func (h *UserHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if _, err := h.userRepo.GetByID(ctx, id); errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "User")
	}

	if err := h.userRepo.Delete(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete user")
	}
	return c.NoContent(http.StatusNoContent)
}
