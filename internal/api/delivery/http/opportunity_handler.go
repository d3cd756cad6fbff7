package http

import (
	"errors"
	"net/http"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/api/service"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// OpportunityHandler handles HTTP requests for opportunities and their
// generated documents.
type OpportunityHandler struct {
	oppService service.OpportunityService
	docService service.DocumentService
	logger     *logger.Logger
}

// NewOpportunityHandler creates a new OpportunityHandler.
func NewOpportunityHandler(oppService service.OpportunityService, docService service.DocumentService, logger *logger.Logger) *OpportunityHandler {
	return &OpportunityHandler{oppService: oppService, docService: docService, logger: logger}
}

// RegisterRoutes registers the opportunity routes to the Echo group.
func (h *OpportunityHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListOpportunities)
	g.GET("/:id", h.GetOpportunity)
	g.POST("/:id/consolidate", h.TriggerConsolidation)
	g.POST("/:id/documents", h.GenerateDocument)
	g.GET("/:id/documents", h.ListDocuments)
}

// ListOpportunities returns all opportunities.
func (h *OpportunityHandler) ListOpportunities(c echo.Context) error {
	opportunities, err := h.oppService.ListOpportunities(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list opportunities", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list opportunities"})
	}
	return c.JSON(http.StatusOK, opportunities)
}

// GetOpportunity returns one opportunity with its related data.
func (h *OpportunityHandler) GetOpportunity(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid opportunity ID"})
	}

	opportunity, err := h.oppService.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Opportunity not found"})
		}
		h.logger.Error("Failed to get opportunity", logger.ErrorField(err), logger.Field("opportunity_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get opportunity"})
	}

	return c.JSON(http.StatusOK, opportunity)
}

// TriggerConsolidation enqueues an insight consolidation task.
func (h *OpportunityHandler) TriggerConsolidation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid opportunity ID"})
	}

	if err := h.oppService.TriggerConsolidation(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Opportunity not found"})
		case errors.Is(err, service.ErrNotEnoughCalls):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to trigger consolidation", logger.ErrorField(err), logger.Field("opportunity_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue consolidation task"})
	}

	return c.JSON(http.StatusAccepted, dto.TaskQueuedResponse{ID: id, Status: entity.StatusGenerating})
}

// GenerateDocument creates a new document attempt and enqueues generation.
func (h *OpportunityHandler) GenerateDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid opportunity ID"})
	}

	var req dto.GenerateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	doc, err := h.docService.GenerateDocument(c.Request().Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Opportunity not found"})
		}
		h.logger.Error("Failed to request document", logger.ErrorField(err), logger.Field("opportunity_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue document generation"})
	}

	return c.JSON(http.StatusAccepted, doc)
}

// ListDocuments returns all document attempts for an opportunity.
func (h *OpportunityHandler) ListDocuments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid opportunity ID"})
	}

	docs, err := h.docService.ListDocuments(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Opportunity not found"})
		}
		h.logger.Error("Failed to list documents", logger.ErrorField(err), logger.Field("opportunity_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list documents"})
	}

	return c.JSON(http.StatusOK, docs)
}
