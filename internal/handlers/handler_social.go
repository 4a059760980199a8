package handlers

import (
	"net/http"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type socialHandler struct {
	socialService portssvc.SocialTokenSvc
}

func registerSocialRoutes(rg *gin.RouterGroup, socialService portssvc.SocialTokenSvc) {
	h := &socialHandler{socialService: socialService}
	creds := rg.Group("/social-credentials", middleware.RequireCapability(domain.CapManageCredentials))
	{
		creds.POST("/refresh", h.refreshAll)
		creds.POST("/:accountName/refresh", h.refresh)
	}
}

// refresh godoc
// @Summary Refresh one social feed token
// @Tags social
// @Produce  json
// @Param   accountName path string true "Account name"
// @Success 200 {object} domain.TokenRefreshResult
// @Failure 404 {object} map[string]string "Credential not found"
// @Failure 409 {object} map[string]string "Refresh already running elsewhere"
// @Failure 502 {object} map[string]string "Provider rejected the refresh"
// @Security BearerAuth
// @Router /social-credentials/{accountName}/refresh [post]
func (h *socialHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	result, err := h.socialService.RefreshToken(c.Request.Context(), c.Param("accountName"))
	if err != nil {
		respondError(c, logger, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, result)
}

// refreshAll godoc
// @Summary Refresh every social feed token
// @Tags social
// @Produce  json
// @Success 200 {array} domain.TokenRefreshResult
// @Security BearerAuth
// @Router /social-credentials/refresh [post]
func (h *socialHandler) refreshAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	results, err := h.socialService.RefreshAll(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to refresh tokens")
		return
	}
	c.JSON(http.StatusOK, results)
}
