package jobs

import (
	"time"

	"github.com/riverqueue/river"
)

// Every periodic job is unique per period so a slow run and the next tick
// cannot overlap.
const uniquePeriod = 10 * time.Minute

type SyncCalendarsArgs struct{}

func (SyncCalendarsArgs) Kind() string { return "sync_calendars" }

func (SyncCalendarsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 3, UniqueOpts: river.UniqueOpts{ByPeriod: uniquePeriod}}
}

type SyncCatalogArgs struct{}

func (SyncCatalogArgs) Kind() string { return "sync_catalog" }

func (SyncCatalogArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 3, UniqueOpts: river.UniqueOpts{ByPeriod: uniquePeriod}}
}

type RefreshSocialTokensArgs struct{}

func (RefreshSocialTokensArgs) Kind() string { return "refresh_social_tokens" }

func (RefreshSocialTokensArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 5, UniqueOpts: river.UniqueOpts{ByPeriod: uniquePeriod}}
}
