package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/club_management_app/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgxEventRepository struct {
	BaseRepository
}

func newPgxEventRepository(pool DBPool) portsrepo.EventRepository {
	return &PgxEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EventRepository = (*PgxEventRepository)(nil)

const eventColumns = `event_id, source_id, external_id, title, description, location, starts_at, ends_at, registration_fee, is_dues_bearing, is_locally_modified, is_orphaned, sync_fingerprint, last_synced_at, created_at, created_by, last_updated_at, last_updated_by`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		e                    domain.Event
		sourceID, externalID sql.NullString
		endsAt, lastSynced   sql.NullTime
	)
	err := row.Scan(&e.EventID, &sourceID, &externalID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &endsAt,
		&e.RegistrationFee, &e.IsDuesBearing, &e.IsLocallyModified, &e.IsOrphaned, &e.SyncFingerprint, &lastSynced,
		&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy)
	if err != nil {
		return domain.Event{}, err
	}
	e.SourceID = mapping.StringPtr(sourceID)
	e.ExternalID = mapping.StringPtr(externalID)
	e.EndsAt = mapping.TimePtr(endsAt)
	e.LastSyncedAt = mapping.TimePtr(lastSynced)
	return e, nil
}

func (r *PgxEventRepository) FindSyncRecord(ctx context.Context, sourceID string, externalID string) (*domain.SyncRecord, error) {
	query := `
		SELECT event_id, is_locally_modified, is_orphaned, sync_fingerprint, last_synced_at
		FROM events WHERE source_id = $1 AND external_id = $2;
	`
	rec := domain.SyncRecord{SourceID: sourceID, ExternalID: externalID}
	var lastSynced sql.NullTime
	err := r.Pool.QueryRow(ctx, query, sourceID, externalID).
		Scan(&rec.LocalID, &rec.IsLocallyModified, &rec.IsOrphaned, &rec.Fingerprint, &lastSynced)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event %s/%s: %w", sourceID, externalID, err)
	}
	rec.LastSyncedAt = mapping.TimePtr(lastSynced)
	return &rec, nil
}

func (r *PgxEventRepository) CreateFromRemote(ctx context.Context, sourceID string, remote domain.RemoteEvent, syncedAt time.Time) error {
	query := `
		INSERT INTO events (event_id, source_id, external_id, title, description, location, starts_at, ends_at,
			sync_fingerprint, last_synced_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $11, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query, uuid.NewString(), sourceID, remote.UID, remote.Summary, remote.Description,
		remote.Location, remote.Start, mapping.NullTime(remote.End), remote.Fingerprint(), syncedAt, domain.SystemActor)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s/%s already exists", apperrors.ErrDuplicate, sourceID, remote.UID)
		}
		return fmt.Errorf("failed to create event %s/%s: %w", sourceID, remote.UID, err)
	}
	return nil
}

// UpdateFromRemote overwrites the feed-owned columns. Fee and dues flags are club-owned and untouched.
func (r *PgxEventRepository) UpdateFromRemote(ctx context.Context, localID string, remote domain.RemoteEvent, syncedAt time.Time) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5,
			sync_fingerprint = $6, is_orphaned = FALSE, last_synced_at = $7, last_updated_at = $7, last_updated_by = $8
		WHERE event_id = $9;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, remote.Summary, remote.Description, remote.Location, remote.Start,
		mapping.NullTime(remote.End), remote.Fingerprint(), syncedAt, domain.SystemActor, localID)
	if err != nil {
		return fmt.Errorf("failed to update event %s from feed: %w", localID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxEventRepository) ClearOrphan(ctx context.Context, localID string, at time.Time) error {
	query := `UPDATE events SET is_orphaned = FALSE, last_updated_at = $1 WHERE event_id = $2 AND is_orphaned;`
	if _, err := r.Pool.Exec(ctx, query, at, localID); err != nil {
		return fmt.Errorf("failed to clear orphan flag on event %s: %w", localID, err)
	}
	return nil
}

// MarkOrphans flags events that vanished from the feed. Events have no enabled
// state, so both policies set is_orphaned.
func (r *PgxEventRepository) MarkOrphans(ctx context.Context, sourceID string, seen []string, _ domain.OrphanPolicy, at time.Time) (int, error) {
	query := `
		UPDATE events
		SET is_orphaned = TRUE, last_updated_at = $1, last_updated_by = $2
		WHERE source_id = $3 AND NOT is_orphaned AND NOT (external_id = ANY($4));
	`
	cmdTag, err := r.Pool.Exec(ctx, query, at, domain.SystemActor, sourceID, nonNilKeys(seen))
	if err != nil {
		return 0, fmt.Errorf("failed to mark orphaned events for source %s: %w", sourceID, err)
	}
	return int(cmdTag.RowsAffected()), nil
}

func (r *PgxEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1;`
	e, err := scanEvent(r.Pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event %s: %w", eventID, err)
	}
	return &e, nil
}

func (r *PgxEventRepository) ListEventsBySource(ctx context.Context, sourceID string) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE source_id = $1 ORDER BY starts_at, event_id;`
	rows, err := r.Pool.Query(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for source %s: %w", sourceID, err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *PgxEventRepository) UpdateEventLocally(ctx context.Context, eventID string, patch domain.EventPatch, userID string, now time.Time) (*domain.Event, error) {
	query := `
		UPDATE events
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			location = COALESCE($3, location),
			starts_at = COALESCE($4, starts_at),
			ends_at = COALESCE($5, ends_at),
			registration_fee = COALESCE($6, registration_fee),
			is_dues_bearing = COALESCE($7, is_dues_bearing),
			is_locally_modified = is_locally_modified OR $8,
			last_updated_at = $9,
			last_updated_by = $10
		WHERE event_id = $11
		RETURNING ` + eventColumns + `;
	`
	e, err := scanEvent(r.Pool.QueryRow(ctx, query, patch.Title, patch.Description, patch.Location, patch.StartsAt,
		patch.EndsAt, patch.RegistrationFee, patch.IsDuesBearing, patch.TouchesSyncedFields(), now, userID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return &e, nil
}

func (r *PgxEventRepository) ResetEventLocalModification(ctx context.Context, eventID string, userID string, now time.Time) error {
	query := `
		UPDATE events
		SET is_locally_modified = FALSE, sync_fingerprint = '', last_updated_at = $1, last_updated_by = $2
		WHERE event_id = $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, now, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to reset event %s: %w", eventID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
