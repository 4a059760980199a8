package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/go-playground/validator/v10"
)

// SyncSource is one upstream collection feeding a reconciliation pass.
type SyncSource[R domain.RemoteRecord] interface {
	SourceID() string
	// Fetch returns a single-use sequence. An error returned here or yielded
	// from the sequence aborts the pass.
	Fetch(ctx context.Context) (iter.Seq2[R, error], error)
}

// Reconciler mirrors a remote collection into a local SyncStore without ever
// deleting rows or overwriting local edits.
type Reconciler[R domain.RemoteRecord] struct {
	BaseService
	store    portsrepo.SyncStore[R]
	recorder portsrepo.SyncSummaryRecorder
	policy   domain.OrphanPolicy
	validate *validator.Validate
	kind     string
}

// NewReconciler builds a reconciler. recorder may be nil when the caller
// persists the summary itself.
func NewReconciler[R domain.RemoteRecord](kind string, store portsrepo.SyncStore[R], recorder portsrepo.SyncSummaryRecorder, policy domain.OrphanPolicy) *Reconciler[R] {
	return &Reconciler[R]{
		BaseService: newBaseService(),
		store:       store,
		recorder:    recorder,
		policy:      policy,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		kind:        kind,
	}
}

type selfValidating interface {
	Validate() error
}

// Reconcile runs one pass. The returned error is non-nil only for fetch-level
// failures; per-item problems are collected in the result.
func (r *Reconciler[R]) Reconcile(ctx context.Context, src SyncSource[R]) (domain.SyncResult, error) {
	sourceID := src.SourceID()
	logger := r.GetLogger(ctx).With(slog.String("sync_kind", r.kind), slog.String("source_id", sourceID))
	result := domain.SyncResult{SourceID: sourceID, StartedAt: r.now()}

	records, err := src.Fetch(ctx)
	if err != nil {
		return r.abort(ctx, logger, result, err)
	}

	seen := make(map[string]struct{})
	for remote, yieldErr := range records {
		if yieldErr != nil {
			return r.abort(ctx, logger, result, yieldErr)
		}
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, logger, result, err)
		}

		key := remote.ExternalKey()
		if key != "" {
			seen[key] = struct{}{}
		}
		if err := r.check(remote); err != nil {
			result.AddError(key, err)
			continue
		}
		r.apply(ctx, logger, sourceID, remote, &result)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	orphaned, err := r.store.MarkOrphans(ctx, sourceID, keys, r.policy, r.now())
	if err != nil {
		logger.Error("Failed to mark orphans", slog.String("error", err.Error()))
		result.AddError("", fmt.Errorf("marking orphans: %w", err))
	}
	result.Orphaned = orphaned
	result.EndedAt = r.now()

	r.record(ctx, logger, result)
	logger.Info("Sync pass finished",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged),
		slog.Int("skipped", result.Skipped),
		slog.Int("orphaned", result.Orphaned),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

func (r *Reconciler[R]) check(remote R) error {
	if err := r.validate.Struct(remote); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if v, ok := any(remote).(selfValidating); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}
	return nil
}

func (r *Reconciler[R]) apply(ctx context.Context, logger *slog.Logger, sourceID string, remote R, result *domain.SyncResult) {
	key := remote.ExternalKey()
	now := r.now()

	existing, err := r.store.FindSyncRecord(ctx, sourceID, key)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		if err := r.store.CreateFromRemote(ctx, sourceID, remote, now); err != nil {
			logger.Warn("Failed to create synced row", slog.String("external_id", key), slog.String("error", err.Error()))
			result.AddError(key, err)
			return
		}
		result.Created++
	case err != nil:
		result.AddError(key, err)
	case existing.IsLocallyModified:
		if existing.IsOrphaned {
			if err := r.store.ClearOrphan(ctx, existing.LocalID, now); err != nil {
				logger.Warn("Failed to clear orphan flag", slog.String("external_id", key), slog.String("error", err.Error()))
				result.AddError(key, err)
				return
			}
		}
		result.Skipped++
	case existing.Fingerprint == remote.Fingerprint() && !existing.IsOrphaned:
		result.Unchanged++
	default:
		if err := r.store.UpdateFromRemote(ctx, existing.LocalID, remote, now); err != nil {
			logger.Warn("Failed to update synced row", slog.String("external_id", key), slog.String("error", err.Error()))
			result.AddError(key, err)
			return
		}
		result.Updated++
	}
}

func (r *Reconciler[R]) abort(ctx context.Context, logger *slog.Logger, result domain.SyncResult, cause error) (domain.SyncResult, error) {
	result.FetchErr = cause.Error()
	result.EndedAt = r.now()
	logger.Error("Sync pass aborted, no orphans marked", slog.String("error", cause.Error()),
		slog.Int("committed", result.Created+result.Updated))
	r.record(ctx, logger, result)
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return result, cause
	}
	return result, apperrors.NewRemoteError("fetch "+r.kind, cause)
}

func (r *Reconciler[R]) record(ctx context.Context, logger *slog.Logger, result domain.SyncResult) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.SaveSyncSummary(ctx, result.SourceID, result.Summary()); err != nil {
		logger.Error("Failed to save sync summary", slog.String("error", err.Error()))
	}
}

// sliceSource adapts an already fetched slice into a SyncSource.
type sliceSource[R domain.RemoteRecord] struct {
	id    string
	items []R
}

func (s sliceSource[R]) SourceID() string { return s.id }

func (s sliceSource[R]) Fetch(context.Context) (iter.Seq2[R, error], error) {
	return func(yield func(R, error) bool) {
		for _, item := range s.items {
			if !yield(item, nil) {
				return
			}
		}
	}, nil
}
