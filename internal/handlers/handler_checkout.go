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

type checkoutHandler struct {
	checkoutService portssvc.CheckoutSvcFacade
}

func registerCheckoutRoutes(rg *gin.RouterGroup, checkoutService portssvc.CheckoutSvcFacade) {
	h := &checkoutHandler{checkoutService: checkoutService}
	checkout := middleware.RequireCapability(domain.CapManageCheckout)

	rg.POST("/checkout", checkout, h.startCheckout)
	rg.POST("/checkout/shipping-quote", checkout, h.quoteShipping)
	rg.POST("/events/:eventID/registrations", checkout, h.startRegistration)
}

// startCheckout godoc
// @Summary Open a merch checkout
// @Tags checkout
// @Accept  json
// @Produce  json
// @Param   checkout body dto.StartCheckoutRequest true "Items and customer"
// @Success 201 {object} domain.CheckoutSession
// @Failure 400 {object} map[string]string "Invalid items"
// @Failure 502 {object} map[string]string "Payment processor unavailable"
// @Security BearerAuth
// @Router /checkout [post]
func (h *checkoutHandler) startCheckout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for StartCheckout", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}
	session, err := h.checkoutService.StartCheckout(c.Request.Context(), req.ToDomain(userID))
	if err != nil {
		respondError(c, logger, err, "Failed to start checkout")
		return
	}
	logger.Info("Checkout opened", slog.String("session_id", session.SessionID))
	c.JSON(http.StatusCreated, session)
}

// quoteShipping godoc
// @Summary Quote shipping for print-on-demand items
// @Tags checkout
// @Accept  json
// @Produce  json
// @Param   quote body dto.ShippingQuoteRequest true "Items and address"
// @Success 200 {object} domain.ShippingQuote
// @Failure 400 {object} map[string]string "Invalid items"
// @Failure 502 {object} map[string]string "Provider unavailable"
// @Security BearerAuth
// @Router /checkout/shipping-quote [post]
func (h *checkoutHandler) quoteShipping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	quote, err := h.checkoutService.QuoteShipping(c.Request.Context(), req.DomainItems(), req.Address.ToDomain())
	if err != nil {
		respondError(c, logger, err, "Failed to quote shipping")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// startRegistration godoc
// @Summary Register a player for an event
// @Description Free events complete immediately; otherwise a checkout is opened for the fee.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   eventID path string true "Event ID"
// @Param   registration body dto.StartRegistrationRequest true "Player and payer"
// @Success 201 {object} dto.RegistrationCheckoutResponse
// @Failure 404 {object} map[string]string "Event or player not found"
// @Security BearerAuth
// @Router /events/{eventID}/registrations [post]
func (h *checkoutHandler) startRegistration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.StartRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}
	reg, session, err := h.checkoutService.StartRegistrationCheckout(c.Request.Context(), c.Param("eventID"), req.PlayerID, req.CustomerEmail, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to start registration")
		return
	}
	c.JSON(http.StatusCreated, dto.RegistrationCheckoutResponse{Registration: *reg, Checkout: session})
}
