package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// duesHandler exposes a player's dues account and its ledger.
type duesHandler struct {
	duesService   portssvc.DuesSvcFacade
	exportService portssvc.DuesExportSvc
}

// RegisterDuesRoutes registers the dues routes under rg. Reads need ViewDues,
// postings and exports need ManageDues.
func RegisterDuesRoutes(rg *gin.RouterGroup, duesService portssvc.DuesSvcFacade, exportService portssvc.DuesExportSvc) {
	h := &duesHandler{duesService: duesService, exportService: exportService}

	view := middleware.RequireCapability(domain.CapViewDues)
	manage := middleware.RequireCapability(domain.CapManageDues)

	dues := rg.Group("/players/:playerID/dues")
	{
		dues.GET("", view, h.getAccount)
		dues.GET("/transactions", view, h.listTransactions)
		dues.GET("/verify", view, h.verifyLedger)
		dues.POST("/charges", manage, h.addCharge)
		dues.POST("/payments", manage, h.addPayment)
	}
	rg.POST("/dues/export", manage, h.exportRoster)
}

// getAccount godoc
// @Summary Get a player's dues account
// @Tags dues
// @Produce  json
// @Param   playerID path string true "Player ID"
// @Success 200 {object} dto.DuesAccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /players/{playerID}/dues [get]
func (h *duesHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account, err := h.duesService.GetAccount(c.Request.Context(), c.Param("playerID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve dues account")
		return
	}
	c.JSON(http.StatusOK, dto.ToDuesAccountResponse(account))
}

// listTransactions godoc
// @Summary List ledger entries, newest first
// @Tags dues
// @Produce  json
// @Param   playerID path string true "Player ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListDuesTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid token"
// @Security BearerAuth
// @Router /players/{playerID}/dues/transactions [get]
func (h *duesHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListDuesTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	resp, err := h.duesService.ListTransactions(c.Request.Context(), c.Param("playerID"), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list dues transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// verifyLedger godoc
// @Summary Replay the ledger against the stored balance
// @Tags dues
// @Produce  json
// @Param   playerID path string true "Player ID"
// @Success 200 {object} domain.LedgerVerification
// @Security BearerAuth
// @Router /players/{playerID}/dues/verify [get]
func (h *duesHandler) verifyLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	result, err := h.duesService.VerifyLedger(c.Request.Context(), c.Param("playerID"))
	if err != nil {
		respondError(c, logger, err, "Failed to verify ledger")
		return
	}
	if !result.Consistent {
		logger.Error("Dues ledger inconsistent", slog.String("player_id", c.Param("playerID")))
	}
	c.JSON(http.StatusOK, result)
}

// addCharge godoc
// @Summary Post a charge
// @Tags dues
// @Accept  json
// @Produce  json
// @Param   playerID path string true "Player ID"
// @Param   entry body dto.LedgerEntryRequest true "Charge"
// @Success 201 {object} dto.DuesTransactionResponse
// @Failure 400 {object} map[string]string "Amount must be positive"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /players/{playerID}/dues/charges [post]
func (h *duesHandler) addCharge(c *gin.Context) {
	h.post(c, h.duesService.AddCharge, "charge", middleware.EventDuesChargePosted)
}

// addPayment godoc
// @Summary Record a payment
// @Tags dues
// @Accept  json
// @Produce  json
// @Param   playerID path string true "Player ID"
// @Param   entry body dto.LedgerEntryRequest true "Payment"
// @Success 201 {object} dto.DuesTransactionResponse
// @Failure 400 {object} map[string]string "Amount must be positive"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /players/{playerID}/dues/payments [post]
func (h *duesHandler) addPayment(c *gin.Context) {
	h.post(c, h.duesService.AddPayment, "payment", middleware.EventDuesPaymentPosted)
}

func (h *duesHandler) post(c *gin.Context, postFn func(context.Context, domain.LedgerEntryRequest) (*domain.DuesTransaction, error), kind string, event string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ledger entry", slog.String("kind", kind), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}
	playerID := c.Param("playerID")

	txn, err := postFn(c.Request.Context(), req.ToDomain(playerID, userID))
	if err != nil {
		respondError(c, logger, err, "Failed to post "+kind)
		return
	}

	logger.Info("Ledger entry posted", slog.String("kind", kind), slog.String("player_id", playerID),
		slog.String("transaction_id", txn.TransactionID), slog.String("balance_after", txn.BalanceAfter.StringFixed(2)))
	middleware.TrackEvent(c, event, map[string]any{
		"player_id":     playerID,
		"amount":        txn.Amount.StringFixed(2),
		"balance_after": txn.BalanceAfter.StringFixed(2),
	})
	c.JSON(http.StatusCreated, dto.ToDuesTransactionResponse(txn))
}

// exportRoster godoc
// @Summary Export the dues roster to the configured spreadsheet
// @Tags dues
// @Produce  json
// @Success 200 {object} dto.ExportDuesResponse
// @Failure 502 {object} map[string]string "Spreadsheet unavailable"
// @Security BearerAuth
// @Router /dues/export [post]
func (h *duesHandler) exportRoster(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	resp, err := h.exportService.ExportDuesRoster(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to export dues roster")
		return
	}
	middleware.TrackEvent(c, middleware.EventDuesExported, map[string]any{"rows": resp.Rows})
	c.JSON(http.StatusOK, resp)
}
