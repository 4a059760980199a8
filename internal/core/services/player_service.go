package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
)

type playerService struct {
	BaseService
	playerRepo portsrepo.PlayerRepositoryWithTx
	duesRepo   portsrepo.DuesLedgerWriter
}

func NewPlayerService(playerRepo portsrepo.PlayerRepositoryWithTx, duesRepo portsrepo.DuesLedgerWriter) portssvc.PlayerSvcFacade {
	return &playerService{BaseService: newBaseService(), playerRepo: playerRepo, duesRepo: duesRepo}
}

var _ portssvc.PlayerSvcFacade = (*playerService)(nil)

// CreatePlayer registers a player together with an empty dues account.
func (s *playerService) CreatePlayer(ctx context.Context, req dto.CreatePlayerRequest, userID string) (*domain.Player, *domain.DuesAccount, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, nil, apperrors.NewBadRequestError("first name is required")
	}

	now := s.now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
	player := domain.Player{
		PlayerID:      uuid.NewString(),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		GuardianEmail: req.GuardianEmail,
		BirthYear:     req.BirthYear,
		AuditFields:   audit,
	}
	account := domain.DuesAccount{
		AccountID:      uuid.NewString(),
		PlayerID:       player.PlayerID,
		Balance:        decimal.Zero,
		IsGoodStanding: true,
		AuditFields:    audit,
	}

	tx, err := s.playerRepo.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if rbErr := s.playerRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back player creation")
		}
	}()

	if err := s.playerRepo.SavePlayerInTx(ctx, tx, player); err != nil {
		s.LogError(ctx, err, "Failed to save player", slog.String("player_id", player.PlayerID))
		return nil, nil, fmt.Errorf("failed to save player: %w", err)
	}
	if err := s.duesRepo.CreateDuesAccountInTx(ctx, tx, account); err != nil {
		s.LogError(ctx, err, "Failed to create dues account", slog.String("player_id", player.PlayerID))
		return nil, nil, fmt.Errorf("failed to create dues account: %w", err)
	}
	if err := s.playerRepo.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "Player created", slog.String("player_id", player.PlayerID), slog.String("account_id", account.AccountID))
	return &player, &account, nil
}

func (s *playerService) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	player, err := s.playerRepo.FindPlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: player %s", apperrors.ErrNotFound, playerID)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, limit int, offset int) ([]domain.Player, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	players, err := s.playerRepo.ListPlayers(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list players")
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}
