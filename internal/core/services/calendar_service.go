package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
)

type calendarService struct {
	BaseService
	sourceRepo portsrepo.CalendarSourceRepository
	eventRepo  portsrepo.EventRepository
	feed       portssvc.CalendarFeed
	reconciler *Reconciler[domain.RemoteEvent]
}

func NewCalendarService(sourceRepo portsrepo.CalendarSourceRepository, eventRepo portsrepo.EventRepository, feed portssvc.CalendarFeed, policy domain.OrphanPolicy) portssvc.CalendarSvcFacade {
	return &calendarService{
		BaseService: newBaseService(),
		sourceRepo:  sourceRepo,
		eventRepo:   eventRepo,
		feed:        feed,
		reconciler:  NewReconciler[domain.RemoteEvent]("calendar", eventRepo, sourceRepo, policy),
	}
}

var _ portssvc.CalendarSvcFacade = (*calendarService)(nil)

// feedSource exposes one calendar source to the reconciler.
type feedSource struct {
	source domain.CalendarSource
	feed   portssvc.CalendarFeed
}

func (f feedSource) SourceID() string { return f.source.SourceID }

func (f feedSource) Fetch(ctx context.Context) (iter.Seq2[domain.RemoteEvent, error], error) {
	return f.feed.FetchEvents(ctx, f.source.FeedURL)
}

func (s *calendarService) CreateCalendarSource(ctx context.Context, req dto.CreateCalendarSourceRequest, userID string) (*domain.CalendarSource, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.FeedURL) == "" {
		return nil, apperrors.NewBadRequestError("name and feed URL are required")
	}
	now := s.now()
	source := domain.CalendarSource{
		SourceID: uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		FeedURL:  strings.TrimSpace(req.FeedURL),
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID,
		},
	}
	if err := s.sourceRepo.SaveCalendarSource(ctx, source); err != nil {
		s.LogError(ctx, err, "Failed to save calendar source")
		return nil, fmt.Errorf("failed to save calendar source: %w", err)
	}
	s.LogInfo(ctx, "Calendar source created", slog.String("source_id", source.SourceID))
	return &source, nil
}

func (s *calendarService) SyncCalendarSource(ctx context.Context, sourceID string) (*domain.SyncResult, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("%w: calendar feed client is not configured", apperrors.ErrRemote)
	}
	source, err := s.sourceRepo.FindCalendarSourceByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: calendar source %s", apperrors.ErrNotFound, sourceID)
		}
		return nil, fmt.Errorf("failed to load calendar source: %w", err)
	}
	result, err := s.reconciler.Reconcile(ctx, feedSource{source: *source, feed: s.feed})
	return &result, err
}

// SyncAllCalendarSources syncs every source. A failing feed does not stop the
// others; the first fetch error is returned alongside all results.
func (s *calendarService) SyncAllCalendarSources(ctx context.Context) ([]domain.SyncResult, error) {
	sources, err := s.sourceRepo.ListCalendarSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar sources: %w", err)
	}
	results := make([]domain.SyncResult, 0, len(sources))
	var firstErr error
	for _, src := range sources {
		if s.feed == nil {
			return results, fmt.Errorf("%w: calendar feed client is not configured", apperrors.ErrRemote)
		}
		result, err := s.reconciler.Reconcile(ctx, feedSource{source: src, feed: s.feed})
		results = append(results, result)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return results, firstErr
}

func (s *calendarService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.FindEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: event %s", apperrors.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a staff edit. The event is then skipped by sync until reset.
func (s *calendarService) UpdateEvent(ctx context.Context, eventID string, req dto.UpdateEventRequest, userID string) (*domain.Event, error) {
	patch := req.ToPatch()
	if patch.IsEmpty() {
		return nil, apperrors.NewBadRequestError("no fields to update")
	}
	if patch.RegistrationFee != nil && patch.RegistrationFee.IsNegative() {
		return nil, apperrors.NewBadRequestError("registration fee cannot be negative")
	}
	if patch.StartsAt != nil && patch.EndsAt != nil && patch.EndsAt.Before(*patch.StartsAt) {
		return nil, apperrors.NewBadRequestError("event cannot end before it starts")
	}
	event, err := s.eventRepo.UpdateEventLocally(ctx, eventID, patch, userID, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: event %s", apperrors.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	s.LogInfo(ctx, "Event updated locally", slog.String("event_id", eventID), slog.String("user_id", userID))
	return event, nil
}

func (s *calendarService) ResetEventSync(ctx context.Context, eventID string, userID string) error {
	if err := s.eventRepo.ResetEventLocalModification(ctx, eventID, userID, s.now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: event %s", apperrors.ErrNotFound, eventID)
		}
		return fmt.Errorf("failed to reset event: %w", err)
	}
	return nil
}
