package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/msseason/ai-grant-finder/internal/common"
	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
	"github.com/msseason/ai-grant-finder/internal/services"
)

const (
	maxDocumentSize = 10 * 1024 * 1024 // 10MB
	presignedExpiry = 15 * time.Minute
)

// ApplicationHandlers handles application-tracking HTTP requests. Non-admin
// callers only ever see their own applications.
type ApplicationHandlers struct {
	appService    services.ApplicationService
	exportService services.ExportService
	minioService  services.MinioService
}

func NewApplicationHandlers(appService services.ApplicationService, exportService services.ExportService, minioService services.MinioService) *ApplicationHandlers {
	return &ApplicationHandlers{
		appService:    appService,
		exportService: exportService,
		minioService:  minioService,
	}
}

// CreateApplicationRequest represents the create payload
type CreateApplicationRequest struct {
	GrantName     string     `json:"grant_name"`
	Provider      string     `json:"provider"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	Deadline      time.Time  `json:"deadline"`
	AwardAmount   *float64   `json:"award_amount"`
	AssignedTo    *string    `json:"assigned_to"`
	Notes         *string    `json:"notes"`
	SubmittedDate *time.Time `json:"submitted_date"`
}

// Create handles POST /applications
func (h *ApplicationHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateApplicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.GrantName == "" {
		return common.SendValidationError(c, "grant_name", "grant_name is required")
	}
	if req.Amount < 0 {
		return common.SendValidationError(c, "amount", "amount cannot be negative")
	}

	app := &models.Application{
		UserID:        userID,
		GrantName:     req.GrantName,
		Provider:      req.Provider,
		Amount:        req.Amount,
		Status:        req.Status,
		Deadline:      req.Deadline,
		AwardAmount:   req.AwardAmount,
		AssignedTo:    req.AssignedTo,
		Notes:         req.Notes,
		SubmittedDate: req.SubmittedDate,
	}

	if err := h.appService.Create(ctx, app); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return common.SendValidationError(c, "status", err.Error())
		}
		return common.SendServerError(c, "Failed to create application")
	}

	return c.JSON(http.StatusCreated, app)
}

// List handles GET /applications. Admins may pass ?all=true to list every
// user's applications.
func (h *ApplicationHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if c.QueryParam("all") == "true" {
		role, _ := common.GetRoleFromContext(ctx)
		if role != models.RoleAdmin {
			return common.SendForbiddenError(c, "Admin access required")
		}

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

		apps, err := h.appService.ListAll(ctx, limit, offset)
		if err != nil {
			return common.SendServerError(c, "Failed to list applications")
		}
		return c.JSON(http.StatusOK, apps)
	}

	apps, err := h.appService.ListByUser(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to list applications")
	}
	return c.JSON(http.StatusOK, apps)
}

// Get handles GET /applications/:id
func (h *ApplicationHandlers) Get(c echo.Context) error {
	app, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

// Update handles PATCH /applications/:id. Absent fields keep their stored
// values.
func (h *ApplicationHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	app, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	var patch models.ApplicationUpdate
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return common.SendValidationError(c, "amount", "amount cannot be negative")
	}

	updated, err := h.appService.Update(ctx, app.ID, &patch)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return common.SendValidationError(c, "status", err.Error())
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Application")
		}
		return common.SendServerError(c, "Failed to update application")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /applications/:id
func (h *ApplicationHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	app, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	if err := h.appService.Delete(ctx, app.ID); err != nil {
		return common.SendServerError(c, "Failed to delete application")
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /applications/stats for the caller's own applications.
func (h *ApplicationHandlers) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.appService.GetUserStats(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// ExportCSV handles GET /applications/export and streams the caller's
// applications as a CSV attachment.
func (h *ApplicationHandlers) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	result, err := h.exportService.ExportApplicationsCSV(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to export applications")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, result.FileName))
	return c.Blob(http.StatusOK, "text/csv", []byte(result.FileContent))
}

// UploadDocument handles POST /applications/:id/documents
func (h *ApplicationHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	app, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Document file is required")
	}
	if file.Size > maxDocumentSize {
		return echo.NewHTTPError(http.StatusBadRequest, "File size exceeds maximum limit of 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to open uploaded file")
	}
	defer src.Close()

	objectName := fmt.Sprintf("%s/%s", app.ID, filepath.Base(file.Filename))
	contentType := file.Header.Get("Content-Type")

	if err := h.minioService.UploadDocument(ctx, services.DocumentBucket, objectName, src, file.Size, contentType); err != nil {
		return common.SendServerError(c, "Failed to store document")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Document uploaded successfully",
		"object":  objectName,
	})
}

// GetDocumentURL handles GET /applications/:id/documents/:name and returns a
// short-lived presigned download URL.
func (h *ApplicationHandlers) GetDocumentURL(c echo.Context) error {
	ctx := c.Request().Context()

	app, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	name := filepath.Base(c.Param("name"))
	if name == "" || name == "." {
		return common.SendValidationError(c, "name", "document name is required")
	}

	objectName := fmt.Sprintf("%s/%s", app.ID, name)
	url, err := h.minioService.GetPresignedURL(ctx, services.DocumentBucket, objectName, presignedExpiry)
	if err != nil {
		return common.SendServerError(c, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// DeleteDocument handles DELETE /applications/:id/documents/:name
func (h *ApplicationHandlers) DeleteDocument(c echo.Context) error {
	ctx := c.Request().Context()

	app, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	name := filepath.Base(c.Param("name"))
	if name == "" || name == "." {
		return common.SendValidationError(c, "name", "document name is required")
	}

	objectName := fmt.Sprintf("%s/%s", app.ID, name)
	if err := h.minioService.DeleteDocument(ctx, services.DocumentBucket, objectName); err != nil {
		return common.SendServerError(c, "Failed to delete document")
	}

	return c.NoContent(http.StatusNoContent)
}

// loadOwned resolves the :id parameter and enforces ownership: the record
// must exist and belong to the caller, unless the caller is an admin. The
// returned error is always non-nil on failure so callers can bail before
// touching the application.
func (h *ApplicationHandlers) loadOwned(c echo.Context) (*models.Application, error) {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	app, err := h.appService.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Application not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load application")
	}

	if app.UserID != userID {
		role, _ := common.GetRoleFromContext(ctx)
		if role != models.RoleAdmin {
			// Hide the record's existence from non-owners.
			return nil, echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
	}

	return app, nil
}
