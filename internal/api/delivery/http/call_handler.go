package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/api/service"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CallHandler handles HTTP requests for call transcripts.
type CallHandler struct {
	callService service.CallService
	logger      *logger.Logger
}

// NewCallHandler creates a new CallHandler.
func NewCallHandler(callService service.CallService, logger *logger.Logger) *CallHandler {
	return &CallHandler{callService: callService, logger: logger}
}

// RegisterRoutes registers the call routes to the Echo group.
func (h *CallHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateCall)
	g.GET("/:id", h.GetCall)
	g.POST("/:id/parse", h.TriggerParse)
	g.POST("/:id/analyze-risk", h.TriggerRiskAnalysis)
}

// CreateCall stores a new call transcript.
func (h *CallHandler) CreateCall(c echo.Context) error {
	var req dto.CreateCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	callResponse, err := h.callService.CreateCall(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to create call", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create call"})
	}

	return c.JSON(http.StatusCreated, callResponse)
}

// GetCall returns a call with its insight and risk state.
func (h *CallHandler) GetCall(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid call ID"})
	}

	callResponse, err := h.callService.GetCall(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Call not found"})
		}
		h.logger.Error("Failed to get call", logger.ErrorField(err), logger.Field("call_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get call"})
	}

	return c.JSON(http.StatusOK, callResponse)
}

// TriggerParse enqueues a transcript parse task.
func (h *CallHandler) TriggerParse(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid call ID"})
	}

	if err := h.callService.TriggerParse(c.Request().Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Call not found"})
		}
		h.logger.Error("Failed to trigger parse", logger.ErrorField(err), logger.Field("call_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue parse task"})
	}

	return c.JSON(http.StatusAccepted, dto.TaskQueuedResponse{ID: id, Status: entity.StatusGenerating})
}

// TriggerRiskAnalysis enqueues a risk analysis task.
func (h *CallHandler) TriggerRiskAnalysis(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid call ID"})
	}

	if err := h.callService.TriggerRiskAnalysis(c.Request().Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Call not found"})
		}
		h.logger.Error("Failed to trigger risk analysis", logger.ErrorField(err), logger.Field("call_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue risk analysis task"})
	}

	return c.JSON(http.StatusAccepted, dto.TaskQueuedResponse{ID: id, Status: entity.StatusGenerating})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
