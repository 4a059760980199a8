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

type playerHandler struct {
	playerService portssvc.PlayerSvcFacade
}

func newPlayerHandler(ps portssvc.PlayerSvcFacade) *playerHandler {
	return &playerHandler{playerService: ps}
}

// registerPlayerRoutes registers routes related to players.
func registerPlayerRoutes(rg *gin.RouterGroup, playerService portssvc.PlayerSvcFacade) {
	h := newPlayerHandler(playerService)

	players := rg.Group("/players", middleware.RequireCapability(domain.CapManagePlayers))
	{
		players.POST("", h.createPlayer)
		players.GET("", h.listPlayers)
		players.GET("/:playerID", h.getPlayer)
	}
}

// createPlayer godoc
// @Summary Register a player
// @Description Creates a player together with an empty dues account
// @Tags players
// @Accept  json
// @Produce  json
// @Param   player body dto.CreatePlayerRequest true "Player details"
// @Success 201 {object} dto.CreatePlayerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create player"
// @Security BearerAuth
// @Router /players [post]
func (h *playerHandler) createPlayer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePlayer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := mustUserID(c, logger)
	if !ok {
		return
	}

	player, account, err := h.playerService.CreatePlayer(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create player")
		return
	}

	logger.Info("Player created", slog.String("player_id", player.PlayerID), slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.CreatePlayerResponse{
		Player:      dto.ToPlayerResponse(player),
		DuesAccount: dto.ToDuesAccountResponse(account),
	})
}

// getPlayer godoc
// @Summary Get a player
// @Tags players
// @Produce  json
// @Param   playerID path string true "Player ID"
// @Success 200 {object} dto.PlayerResponse
// @Failure 404 {object} map[string]string "Player not found"
// @Security BearerAuth
// @Router /players/{playerID} [get]
func (h *playerHandler) getPlayer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	player, err := h.playerService.GetPlayer(c.Request.Context(), c.Param("playerID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve player")
		return
	}
	c.JSON(http.StatusOK, dto.ToPlayerResponse(player))
}

// listPlayers godoc
// @Summary List players
// @Tags players
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.PlayerResponse
// @Security BearerAuth
// @Router /players [get]
func (h *playerHandler) listPlayers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListPlayersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	players, err := h.playerService.ListPlayers(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list players")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPlayerResponse(players))
}
