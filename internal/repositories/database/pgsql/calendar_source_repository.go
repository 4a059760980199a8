package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/club_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxCalendarSourceRepository struct {
	BaseRepository
}

func newPgxCalendarSourceRepository(pool DBPool) portsrepo.CalendarSourceRepository {
	return &PgxCalendarSourceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CalendarSourceRepository = (*PgxCalendarSourceRepository)(nil)

const calendarSourceColumns = `source_id, name, feed_url, last_synced_at, last_sync_count, last_error, created_at, created_by, last_updated_at, last_updated_by`

func scanCalendarSource(row pgx.Row) (domain.CalendarSource, error) {
	var (
		s          domain.CalendarSource
		lastSynced sql.NullTime
		lastError  sql.NullString
	)
	err := row.Scan(&s.SourceID, &s.Name, &s.FeedURL, &lastSynced, &s.LastSyncCount, &lastError,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy)
	if err != nil {
		return domain.CalendarSource{}, err
	}
	s.LastSyncedAt = mapping.TimePtr(lastSynced)
	s.LastError = mapping.StringPtr(lastError)
	return s, nil
}

func (r *PgxCalendarSourceRepository) SaveCalendarSource(ctx context.Context, s domain.CalendarSource) error {
	query := `INSERT INTO calendar_sources (` + calendarSourceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.Pool.Exec(ctx, query, s.SourceID, s.Name, s.FeedURL, mapping.NullTime(s.LastSyncedAt), s.LastSyncCount,
		mapping.NullString(s.LastError), s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: calendar source %s already exists", apperrors.ErrDuplicate, s.SourceID)
		}
		return fmt.Errorf("failed to save calendar source %s: %w", s.SourceID, err)
	}
	return nil
}

func (r *PgxCalendarSourceRepository) FindCalendarSourceByID(ctx context.Context, sourceID string) (*domain.CalendarSource, error) {
	query := `SELECT ` + calendarSourceColumns + ` FROM calendar_sources WHERE source_id = $1;`
	s, err := scanCalendarSource(r.Pool.QueryRow(ctx, query, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find calendar source %s: %w", sourceID, err)
	}
	return &s, nil
}

func (r *PgxCalendarSourceRepository) ListCalendarSources(ctx context.Context) ([]domain.CalendarSource, error) {
	query := `SELECT ` + calendarSourceColumns + ` FROM calendar_sources ORDER BY name, source_id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar sources: %w", err)
	}
	defer rows.Close()

	sources := []domain.CalendarSource{}
	for rows.Next() {
		s, err := scanCalendarSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar source row: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar source rows: %w", err)
	}
	return sources, nil
}

// SaveSyncSummary stores the outcome of the latest pass. A nil error clears the previous one.
func (r *PgxCalendarSourceRepository) SaveSyncSummary(ctx context.Context, sourceID string, summary domain.SyncSummary) error {
	query := `
		UPDATE calendar_sources
		SET last_synced_at = $1, last_sync_count = $2, last_error = $3, last_updated_at = $1, last_updated_by = $4
		WHERE source_id = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, summary.SyncedAt, summary.Count, mapping.NullString(summary.Error), domain.SystemActor, sourceID)
	if err != nil {
		return fmt.Errorf("failed to save sync summary for calendar source %s: %w", sourceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
