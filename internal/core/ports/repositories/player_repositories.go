package repositories

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// PlayerReader defines read operations for players
type PlayerReader interface {
	FindPlayerByID(ctx context.Context, playerID string) (*domain.Player, error)
	ListPlayers(ctx context.Context, limit int, offset int) ([]domain.Player, error)
}

// PlayerWriter defines write operations for players
type PlayerWriter interface {
	// SavePlayerInTx inserts a player inside the caller's transaction so the
	// player's dues account can be created atomically with it.
	SavePlayerInTx(ctx context.Context, tx pgx.Tx, player domain.Player) error
}

type PlayerRepositoryFacade interface {
	PlayerReader
	PlayerWriter
}

type PlayerRepositoryWithTx interface {
	PlayerRepositoryFacade
	TransactionManager
}
