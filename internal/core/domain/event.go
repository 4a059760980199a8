package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CalendarSource is an external iCal feed whose events are mirrored locally.
type CalendarSource struct {
	SourceID      string     `json:"sourceID"`
	Name          string     `json:"name"`
	FeedURL       string     `json:"feedURL"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt,omitempty"`
	LastSyncCount int        `json:"lastSyncCount"`
	LastError     *string    `json:"lastError,omitempty"`
	AuditFields
}

// Event is a club event, either mirrored from a calendar source or created by hand.
type Event struct {
	EventID           string          `json:"eventID"`
	SourceID          *string         `json:"sourceID,omitempty"`
	ExternalID        *string         `json:"externalID,omitempty"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Location          string          `json:"location"`
	StartsAt          time.Time       `json:"startsAt"`
	EndsAt            *time.Time      `json:"endsAt,omitempty"`
	RegistrationFee   decimal.Decimal `json:"registrationFee"`
	IsDuesBearing     bool            `json:"isDuesBearing"`
	IsLocallyModified bool            `json:"isLocallyModified"`
	IsOrphaned        bool            `json:"isOrphaned"`
	SyncFingerprint   string          `json:"-"`
	LastSyncedAt      *time.Time      `json:"lastSyncedAt,omitempty"`
	AuditFields
}

// EventPatch holds locally editable event fields. Nil fields are left alone.
type EventPatch struct {
	Title           *string
	Description     *string
	Location        *string
	StartsAt        *time.Time
	EndsAt          *time.Time
	RegistrationFee *decimal.Decimal
	IsDuesBearing   *bool
}

// TouchesSyncedFields reports whether the patch edits a field the calendar feed
// also writes. Fee and dues settings are club-owned.
func (p EventPatch) TouchesSyncedFields() bool {
	return p.Title != nil || p.Description != nil || p.Location != nil || p.StartsAt != nil || p.EndsAt != nil
}

func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil && p.StartsAt == nil &&
		p.EndsAt == nil && p.RegistrationFee == nil && p.IsDuesBearing == nil
}

// RemoteEvent is a VEVENT parsed from a calendar feed.
type RemoteEvent struct {
	UID         string     `validate:"required"`
	Summary     string     `validate:"required"`
	Description string
	Location    string
	Start       time.Time  `validate:"required"`
	End         *time.Time
}

func (e RemoteEvent) ExternalKey() string { return e.UID }

func (e RemoteEvent) Fingerprint() string {
	end := ""
	if e.End != nil {
		end = e.End.UTC().Format(time.RFC3339)
	}
	return Fingerprint(e.Summary, e.Description, e.Location, e.Start.UTC().Format(time.RFC3339), end)
}

func (e RemoteEvent) Validate() error {
	if e.End != nil && e.End.Before(e.Start) {
		return errors.New("event ends before it starts")
	}
	return nil
}
