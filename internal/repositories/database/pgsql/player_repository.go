package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxPlayerRepository struct {
	BaseRepository
}

func newPgxPlayerRepository(pool DBPool) portsrepo.PlayerRepositoryWithTx {
	return &PgxPlayerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PlayerRepositoryWithTx = (*PgxPlayerRepository)(nil)

const playerColumns = `player_id, first_name, last_name, guardian_email, birth_year, created_at, created_by, last_updated_at, last_updated_by`

func scanPlayer(row pgx.Row) (domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.PlayerID, &p.FirstName, &p.LastName, &p.GuardianEmail, &p.BirthYear,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy)
	return p, err
}

// SavePlayerInTx inserts a new player.
func (r *PgxPlayerRepository) SavePlayerInTx(ctx context.Context, tx pgx.Tx, p domain.Player) error {
	query := `INSERT INTO players (` + playerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := tx.Exec(ctx, query, p.PlayerID, p.FirstName, p.LastName, p.GuardianEmail, p.BirthYear,
		p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player with ID %s already exists", apperrors.ErrDuplicate, p.PlayerID)
		}
		return fmt.Errorf("failed to save player %s: %w", p.PlayerID, err)
	}
	return nil
}

// FindPlayerByID retrieves a player by its ID.
func (r *PgxPlayerRepository) FindPlayerByID(ctx context.Context, playerID string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1;`
	p, err := scanPlayer(r.Pool.QueryRow(ctx, query, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find player by ID %s: %w", playerID, err)
	}
	return &p, nil
}

// ListPlayers retrieves a page of players ordered by name.
func (r *PgxPlayerRepository) ListPlayers(ctx context.Context, limit int, offset int) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY last_name, first_name, player_id LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []domain.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}
