package services

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/dto"
)

// PlayerSvcFacade manages players
type PlayerSvcFacade interface {
	// CreatePlayer inserts the player and its dues account in one transaction.
	CreatePlayer(ctx context.Context, req dto.CreatePlayerRequest, userID string) (*domain.Player, *domain.DuesAccount, error)
	GetPlayer(ctx context.Context, playerID string) (*domain.Player, error)
	ListPlayers(ctx context.Context, limit int, offset int) ([]domain.Player, error)
}
