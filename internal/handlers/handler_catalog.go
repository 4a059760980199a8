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

type catalogHandler struct {
	catalogService portssvc.CatalogSvcFacade
}

func registerCatalogRoutes(rg *gin.RouterGroup, catalogService portssvc.CatalogSvcFacade) {
	h := &catalogHandler{catalogService: catalogService}
	manage := middleware.RequireCapability(domain.CapManageCatalog)

	products := rg.Group("/products", manage)
	{
		products.POST("/sync", h.syncAll)
		products.POST("/:productID/sync", h.syncProduct)
	}
	variants := rg.Group("/variants", manage)
	{
		variants.PATCH("/:variantID", h.updateVariant)
		variants.POST("/:variantID/reset-sync", h.resetVariantSync)
	}
}

// syncProduct godoc
// @Summary Reconcile a print-on-demand product's variants and images
// @Tags catalog
// @Produce  json
// @Param   productID path string true "Product ID"
// @Success 200 {object} domain.CatalogSyncResult
// @Failure 400 {object} map[string]string "Product is not print-on-demand"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 502 {object} map[string]any "Provider could not be reached"
// @Security BearerAuth
// @Router /products/{productID}/sync [post]
func (h *catalogHandler) syncProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	result, err := h.catalogService.SyncProduct(c.Request.Context(), c.Param("productID"))
	if err != nil && result == nil {
		respondError(c, logger, err, "Failed to sync product")
		return
	}
	respondSync(c, logger, result, err)
}

// syncAll godoc
// @Summary Reconcile every print-on-demand product
// @Tags catalog
// @Produce  json
// @Success 200 {array} domain.CatalogSyncResult
// @Security BearerAuth
// @Router /products/sync [post]
func (h *catalogHandler) syncAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	results, err := h.catalogService.SyncAllProducts(c.Request.Context())
	if err != nil && results == nil {
		respondError(c, logger, err, "Failed to sync products")
		return
	}
	respondSync(c, logger, results, err)
}

// updateVariant godoc
// @Summary Edit a synced variant
// @Tags catalog
// @Accept  json
// @Produce  json
// @Param   variantID path string true "Variant ID"
// @Param   patch body dto.UpdateVariantRequest true "Fields to change"
// @Success 200 {object} domain.ProductVariant
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Variant not found"
// @Security BearerAuth
// @Router /variants/{variantID} [patch]
func (h *catalogHandler) updateVariant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateVariant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	variant, err := h.catalogService.UpdateVariant(c.Request.Context(), c.Param("variantID"), req)
	if err != nil {
		respondError(c, logger, err, "Failed to update variant")
		return
	}
	c.JSON(http.StatusOK, variant)
}

// resetVariantSync godoc
// @Summary Hand a variant back to catalog sync
// @Tags catalog
// @Param   variantID path string true "Variant ID"
// @Success 204
// @Security BearerAuth
// @Router /variants/{variantID}/reset-sync [post]
func (h *catalogHandler) resetVariantSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.catalogService.ResetVariantSync(c.Request.Context(), c.Param("variantID")); err != nil {
		respondError(c, logger, err, "Failed to reset variant")
		return
	}
	c.Status(http.StatusNoContent)
}
