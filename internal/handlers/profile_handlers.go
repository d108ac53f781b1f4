package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/msseason/ai-grant-finder/internal/common"
	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

// ProfileHandlers handles the 1:1 business profile attached to each account.
type ProfileHandlers struct {
	profileRepo repositories.BusinessProfileRepository
}

func NewProfileHandlers(profileRepo repositories.BusinessProfileRepository) *ProfileHandlers {
	return &ProfileHandlers{profileRepo: profileRepo}
}

// Get handles GET /profile
func (h *ProfileHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.profileRepo.GetByUser(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "Business profile")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load business profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// ProfileRequest represents the full profile payload
type ProfileRequest struct {
	Mission         string   `json:"mission"`
	Problem         string   `json:"problem"`
	Solution        string   `json:"solution"`
	TargetGeography string   `json:"target_geography"`
	Industries      []string `json:"industries"`
	RevenueBand     string   `json:"revenue_band"`
	EmployeeCount   int      `json:"employee_count"`
	FoundedYear     int      `json:"founded_year"`
}

// Put handles PUT /profile: creates the profile on first write, replaces it
// afterwards. Completion is recomputed server-side on every write.
func (h *ProfileHandlers) Put(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.FoundedYear != 0 && (req.FoundedYear < 1800 || req.FoundedYear > time.Now().Year()) {
		return common.SendValidationError(c, "founded_year", "founded_year is out of range")
	}
	if req.EmployeeCount < 0 {
		return common.SendValidationError(c, "employee_count", "employee_count cannot be negative")
	}

	profile := &models.BusinessProfile{
		ID:              uuid.New(),
		UserID:          userID,
		Mission:         req.Mission,
		Problem:         req.Problem,
		Solution:        req.Solution,
		TargetGeography: req.TargetGeography,
		Industries:      req.Industries,
		RevenueBand:     req.RevenueBand,
		EmployeeCount:   req.EmployeeCount,
		FoundedYear:     req.FoundedYear,
	}
	profile.CompletionPercent = completionPercent(profile)

	if err := h.profileRepo.Upsert(ctx, profile); err != nil {
		return common.SendServerError(c, "Failed to save business profile")
	}

	saved, err := h.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load business profile")
	}
	return c.JSON(http.StatusOK, saved)
}

// Patch handles PATCH /profile: absent fields keep their stored values.
// Completion is recomputed from the merged profile before saving.
func (h *ProfileHandlers) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.profileRepo.GetByUser(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "Business profile")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load business profile")
	}

	var patch models.BusinessProfileUpdate
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if patch.FoundedYear != nil && *patch.FoundedYear != 0 && (*patch.FoundedYear < 1800 || *patch.FoundedYear > time.Now().Year()) {
		return common.SendValidationError(c, "founded_year", "founded_year is out of range")
	}
	if patch.EmployeeCount != nil && *patch.EmployeeCount < 0 {
		return common.SendValidationError(c, "employee_count", "employee_count cannot be negative")
	}

	applyProfilePatch(profile, &patch)
	profile.CompletionPercent = completionPercent(profile)

	if err := h.profileRepo.Upsert(ctx, profile); err != nil {
		return common.SendServerError(c, "Failed to save business profile")
	}

	saved, err := h.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load business profile")
	}
	return c.JSON(http.StatusOK, saved)
}

// applyProfilePatch merges the non-nil patch fields into the stored profile.
// A nil Industries slice means untouched; an empty one clears the list.
func applyProfilePatch(p *models.BusinessProfile, patch *models.BusinessProfileUpdate) {
	if patch.Mission != nil {
		p.Mission = *patch.Mission
	}
	if patch.Problem != nil {
		p.Problem = *patch.Problem
	}
	if patch.Solution != nil {
		p.Solution = *patch.Solution
	}
	if patch.TargetGeography != nil {
		p.TargetGeography = *patch.TargetGeography
	}
	if patch.Industries != nil {
		p.Industries = patch.Industries
	}
	if patch.RevenueBand != nil {
		p.RevenueBand = *patch.RevenueBand
	}
	if patch.EmployeeCount != nil {
		p.EmployeeCount = *patch.EmployeeCount
	}
	if patch.FoundedYear != nil {
		p.FoundedYear = *patch.FoundedYear
	}
}

// Delete handles DELETE /profile
func (h *ProfileHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.profileRepo.Delete(ctx, userID); err != nil {
		return common.SendServerError(c, "Failed to delete business profile")
	}
	return c.NoContent(http.StatusNoContent)
}

// completionPercent scores how much of the profile is filled in, out of the
// eight narrative fields.
func completionPercent(p *models.BusinessProfile) int {
	filled := 0
	total := 8

	if p.Mission != "" {
		filled++
	}
	if p.Problem != "" {
		filled++
	}
	if p.Solution != "" {
		filled++
	}
	if p.TargetGeography != "" {
		filled++
	}
	if len(p.Industries) > 0 {
		filled++
	}
	if p.RevenueBand != "" {
		filled++
	}
	if p.EmployeeCount > 0 {
		filled++
	}
	if p.FoundedYear > 0 {
		filled++
	}

	return filled * 100 / total
}
