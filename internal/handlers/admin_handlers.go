package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/msseason/ai-grant-finder/internal/analytics"
	"github.com/msseason/ai-grant-finder/internal/caching"
	"github.com/msseason/ai-grant-finder/internal/common"
)

// AdminHandlers serves the admin analytics dashboard.
type AdminHandlers struct {
	analyticsService *analytics.AnalyticsService
	cacheService     caching.CacheService
}

func NewAdminHandlers(analyticsService *analytics.AnalyticsService, cacheService caching.CacheService) *AdminHandlers {
	return &AdminHandlers{
		analyticsService: analyticsService,
		cacheService:     cacheService,
	}
}

// UserStats handles GET /admin/analytics/users
func (h *AdminHandlers) UserStats(c echo.Context) error {
	stats, err := h.analyticsService.GetUserStats(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute user stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// RevenueStats handles GET /admin/analytics/revenue
func (h *AdminHandlers) RevenueStats(c echo.Context) error {
	stats, err := h.analyticsService.GetRevenueStats(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute revenue stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// ApplicationStats handles GET /admin/analytics/applications, the
// platform-wide application aggregate.
func (h *AdminHandlers) ApplicationStats(c echo.Context) error {
	stats, err := h.analyticsService.GetApplicationStats(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute application stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// InvalidateCache handles POST /admin/cache/invalidate
func (h *AdminHandlers) InvalidateCache(c echo.Context) error {
	if err := h.cacheService.InvalidateAllCache(c.Request().Context()); err != nil {
		return common.SendServerError(c, "Failed to invalidate cache")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Cache invalidated"})
}
