package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// CalendarSourceRepository persists calendar feeds and their sync summaries
type CalendarSourceRepository interface {
	SyncSummaryRecorder
	SaveCalendarSource(ctx context.Context, source domain.CalendarSource) error
	FindCalendarSourceByID(ctx context.Context, sourceID string) (*domain.CalendarSource, error)
	ListCalendarSources(ctx context.Context) ([]domain.CalendarSource, error)
}

// EventRepository persists events, both synced and manually created
type EventRepository interface {
	SyncStore[domain.RemoteEvent]
	FindEventByID(ctx context.Context, eventID string) (*domain.Event, error)
	ListEventsBySource(ctx context.Context, sourceID string) ([]domain.Event, error)

	// UpdateEventLocally applies a staff edit. is_locally_modified is set only
	// when the edit touches a synced field.
	UpdateEventLocally(ctx context.Context, eventID string, patch domain.EventPatch, userID string, now time.Time) (*domain.Event, error)

	// ResetEventLocalModification clears is_locally_modified and the stored
	// fingerprint so the next pass overwrites the row.
	ResetEventLocalModification(ctx context.Context, eventID string, userID string, now time.Time) error
}
