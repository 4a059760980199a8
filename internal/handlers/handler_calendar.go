package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type calendarHandler struct {
	calendarService portssvc.CalendarSvcFacade
}

func registerCalendarRoutes(rg *gin.RouterGroup, calendarService portssvc.CalendarSvcFacade) {
	h := &calendarHandler{calendarService: calendarService}
	sync := middleware.RequireCapability(domain.CapManageSync)

	sources := rg.Group("/calendar-sources", sync)
	{
		sources.POST("", h.createSource)
		sources.POST("/sync", h.syncAll)
		sources.POST("/:sourceID/sync", h.syncSource)
	}

	events := rg.Group("/events", sync)
	{
		events.GET("/:eventID", h.getEvent)
		events.PATCH("/:eventID", h.updateEvent)
		events.POST("/:eventID/reset-sync", h.resetEventSync)
	}
}

// createSource godoc
// @Summary Register an iCal feed
// @Tags calendar
// @Accept  json
// @Produce  json
// @Param   source body dto.CreateCalendarSourceRequest true "Feed"
// @Success 201 {object} domain.CalendarSource
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /calendar-sources [post]
func (h *calendarHandler) createSource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCalendarSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCalendarSource", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}
	source, err := h.calendarService.CreateCalendarSource(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create calendar source")
		return
	}
	c.JSON(http.StatusCreated, source)
}

// syncSource godoc
// @Summary Reconcile one calendar source
// @Description Per-event failures are reported in the result. A feed failure returns 502 with the partial result.
// @Tags calendar
// @Produce  json
// @Param   sourceID path string true "Calendar source ID"
// @Success 200 {object} domain.SyncResult
// @Failure 404 {object} map[string]string "Source not found"
// @Failure 502 {object} map[string]any "Feed could not be fetched"
// @Security BearerAuth
// @Router /calendar-sources/{sourceID}/sync [post]
func (h *calendarHandler) syncSource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	result, err := h.calendarService.SyncCalendarSource(c.Request.Context(), c.Param("sourceID"))
	if err != nil && result == nil {
		respondError(c, logger, err, "Failed to sync calendar source")
		return
	}
	respondSync(c, logger, result, err)
}

// syncAll godoc
// @Summary Reconcile every calendar source
// @Tags calendar
// @Produce  json
// @Success 200 {array} domain.SyncResult
// @Failure 502 {object} map[string]any "At least one feed could not be fetched"
// @Security BearerAuth
// @Router /calendar-sources/sync [post]
func (h *calendarHandler) syncAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	results, err := h.calendarService.SyncAllCalendarSources(c.Request.Context())
	if err != nil && results == nil {
		respondError(c, logger, err, "Failed to sync calendar sources")
		return
	}
	respondSync(c, logger, results, err)
}

// getEvent godoc
// @Summary Get an event
// @Tags events
// @Produce  json
// @Param   eventID path string true "Event ID"
// @Success 200 {object} domain.Event
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{eventID} [get]
func (h *calendarHandler) getEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	event, err := h.calendarService.GetEvent(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// updateEvent godoc
// @Summary Edit an event
// @Description Any edit marks the event locally modified; calendar sync stops overwriting it.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   eventID path string true "Event ID"
// @Param   patch body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} domain.Event
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{eventID} [patch]
func (h *calendarHandler) updateEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}
	event, err := h.calendarService.UpdateEvent(c.Request.Context(), c.Param("eventID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// resetEventSync godoc
// @Summary Hand an event back to calendar sync
// @Tags events
// @Param   eventID path string true "Event ID"
// @Success 204
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{eventID}/reset-sync [post]
func (h *calendarHandler) resetEventSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}
	if err := h.calendarService.ResetEventSync(c.Request.Context(), c.Param("eventID"), userID); err != nil {
		respondError(c, logger, err, "Failed to reset event")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondSync writes a reconciliation result. A fetch-level failure still
// returns the partial result, with a 502.
func respondSync(c *gin.Context, logger *slog.Logger, result any, err error) {
	if err != nil {
		logger.Error("Sync aborted by fetch failure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}
