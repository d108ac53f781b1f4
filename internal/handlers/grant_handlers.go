package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/msseason/ai-grant-finder/internal/common"
	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/services"
)

// GrantHandlers serves the read-only grants catalog.
type GrantHandlers struct {
	grantsService services.GrantsService
}

func NewGrantHandlers(grantsService services.GrantsService) *GrantHandlers {
	return &GrantHandlers{grantsService: grantsService}
}

// List handles GET /grants. With ?q= it filters by name, provider or
// category; without it the full catalog comes back.
func (h *GrantHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")

	var grants []models.Grant
	var err error
	if query != "" {
		grants, err = h.grantsService.Search(ctx, query)
	} else {
		grants, err = h.grantsService.ListGrants(ctx)
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load grants catalog")
	}
	if grants == nil {
		grants = []models.Grant{}
	}

	return c.JSON(http.StatusOK, grants)
}

// Search handles GET /grants/search. Requires a non-empty q parameter.
func (h *GrantHandlers) Search(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return common.SendValidationError(c, "q", "search query is required")
	}

	grants, err := h.grantsService.Search(ctx, query)
	if err != nil {
		return common.SendServerError(c, "Failed to load grants catalog")
	}
	if grants == nil {
		grants = []models.Grant{}
	}
	return c.JSON(http.StatusOK, grants)
}

// Get handles GET /grants/:id
func (h *GrantHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	grant, err := h.grantsService.GetGrant(ctx, c.Param("id"))
	if err != nil {
		return common.SendServerError(c, "Failed to load grants catalog")
	}
	if grant == nil {
		return common.SendNotFoundError(c, "Grant")
	}
	return c.JSON(http.StatusOK, grant)
}

// Analysis handles GET /grants/:id/analysis
func (h *GrantHandlers) Analysis(c echo.Context) error {
	ctx := c.Request().Context()

	analysis, err := h.grantsService.GetAnalysis(ctx, c.Param("id"))
	if err != nil {
		return common.SendServerError(c, "Failed to load grantor analysis")
	}
	if analysis == nil {
		return common.SendNotFoundError(c, "Grantor analysis")
	}
	return c.JSON(http.StatusOK, analysis)
}
