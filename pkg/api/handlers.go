package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/freshtrack-io/ft-compliance-engine/pkg/models"
	"github.com/freshtrack-io/ft-compliance-engine/pkg/services"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	compliance *services.ComplianceService
	lifecycle  *services.AlertLifecycleService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(compliance *services.ComplianceService, lifecycle *services.AlertLifecycleService) *APIHandler {
	return &APIHandler{
		compliance: compliance,
		lifecycle:  lifecycle,
	}
}

// GetAlertBoard returns the reconciled alerts and summary for an organization
func (h *APIHandler) GetAlertBoard(c echo.Context) error {
	orgID := c.Param("orgId")
	siteID := c.QueryParam("site_id")

	board, err := h.compliance.GetAlertBoard(c.Request().Context(), orgID, siteID)
	if err != nil {
		logrus.Errorf("Error building alert board for organization %s: %v", orgID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get alerts"})
	}
	return c.JSON(http.StatusOK, board)
}

// GetAlertSummary returns just the summary counts for an organization
func (h *APIHandler) GetAlertSummary(c echo.Context) error {
	orgID := c.Param("orgId")
	siteID := c.QueryParam("site_id")

	summary, err := h.compliance.GetAlertSummary(c.Request().Context(), orgID, siteID)
	if err != nil {
		logrus.Errorf("Error building alert summary for organization %s: %v", orgID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get alert summary"})
	}
	return c.JSON(http.StatusOK, summary)
}

// GetUnitStatuses returns every unit in scope with its computed status
func (h *APIHandler) GetUnitStatuses(c echo.Context) error {
	orgID := c.Param("orgId")
	siteID := c.QueryParam("site_id")

	statuses, err := h.compliance.GetUnitStatuses(c.Request().Context(), orgID, siteID)
	if err != nil {
		logrus.Errorf("Error computing unit statuses for organization %s: %v", orgID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get unit statuses"})
	}
	return c.JSON(http.StatusOK, statuses)
}

// AcknowledgeAlert acknowledges a persisted alert
func (h *APIHandler) AcknowledgeAlert(c echo.Context) error {
	id := c.Param("id")
	var req models.AcknowledgeAlertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	alert, err := h.lifecycle.Acknowledge(c.Request().Context(), id, req.Notes)
	if err != nil {
		return h.lifecycleError(c, "acknowledge", id, err)
	}
	return c.JSON(http.StatusOK, alert)
}

// ResolveAlert resolves a persisted alert
func (h *APIHandler) ResolveAlert(c echo.Context) error {
	id := c.Param("id")
	var req models.ResolveAlertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	alert, err := h.lifecycle.Resolve(c.Request().Context(), id, req.CorrectiveAction, req.RootCause)
	if err != nil {
		return h.lifecycleError(c, "resolve", id, err)
	}
	return c.JSON(http.StatusOK, alert)
}

// lifecycleError maps service errors onto HTTP statuses: validation -> 400,
// not found -> 404, anything else -> 500
func (h *APIHandler) lifecycleError(c echo.Context, operation, id string, err error) error {
	if services.IsValidationError(err) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if errors.Is(err, services.ErrAlertNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Alert with ID %s not found", id)})
	}
	logrus.Errorf("Error trying to %s alert %s: %v", operation, id, err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Failed to %s alert", operation)})
}

// SetupRoutes sets up the API routes
func (h *APIHandler) SetupRoutes(e *echo.Echo) {
	// Evaluation endpoints
	e.GET("/api/organizations/:orgId/alerts", h.GetAlertBoard)
	e.GET("/api/organizations/:orgId/alerts/summary", h.GetAlertSummary)
	e.GET("/api/organizations/:orgId/units/status", h.GetUnitStatuses)

	// Alert lifecycle endpoints
	e.POST("/api/alerts/:id/acknowledge", h.AcknowledgeAlert)
	e.POST("/api/alerts/:id/resolve", h.ResolveAlert)
}
