package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// OrphanPolicy decides what happens to local rows whose remote counterpart
// disappeared from the latest complete fetch. Nothing is ever deleted.
type OrphanPolicy string

const (
	OrphanDisable OrphanPolicy = "DISABLE"
	OrphanFlag    OrphanPolicy = "FLAG"
)

func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch OrphanPolicy(strings.ToUpper(strings.TrimSpace(s))) {
	case OrphanDisable:
		return OrphanDisable, nil
	case OrphanFlag:
		return OrphanFlag, nil
	}
	return "", fmt.Errorf("unknown orphan policy %q", s)
}

// RemoteRecord is a record fetched from an upstream collection. ExternalKey
// identifies it within its source; Fingerprint hashes the fields that are
// mapped onto the local row.
type RemoteRecord interface {
	ExternalKey() string
	Fingerprint() string
}

// SyncRecord is the reconciliation view of a local row.
type SyncRecord struct {
	LocalID           string
	SourceID          string
	ExternalID        string
	IsLocallyModified bool
	IsOrphaned        bool
	Fingerprint       string
	LastSyncedAt      *time.Time
}

// ItemError is a failure confined to a single remote record.
type ItemError struct {
	ExternalID string `json:"externalID"`
	Message    string `json:"message"`
}

// SyncResult summarizes a reconciliation pass.
type SyncResult struct {
	SourceID  string      `json:"sourceID"`
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Unchanged int         `json:"unchanged"`
	Skipped   int         `json:"skipped"`
	Orphaned  int         `json:"orphaned"`
	Errors    []ItemError `json:"errors,omitempty"`
	FetchErr  string      `json:"fetchError,omitempty"`
	StartedAt time.Time   `json:"startedAt"`
	EndedAt   time.Time   `json:"endedAt"`
}

func (r *SyncResult) AddError(externalID string, err error) {
	r.Errors = append(r.Errors, ItemError{ExternalID: externalID, Message: err.Error()})
}

// Processed is the number of remote records that now have an up to date local row.
func (r SyncResult) Processed() int {
	return r.Created + r.Updated + r.Unchanged
}

// SyncSummary is what gets persisted on the sync source after every pass.
type SyncSummary struct {
	SyncedAt time.Time
	Count    int
	Error    *string
}

func (r SyncResult) Summary() SyncSummary {
	s := SyncSummary{SyncedAt: r.EndedAt, Count: r.Processed()}
	if r.FetchErr != "" {
		msg := r.FetchErr
		s.Error = &msg
	} else if len(r.Errors) > 0 {
		msg := fmt.Sprintf("%d item(s) failed; first: %s: %s", len(r.Errors), r.Errors[0].ExternalID, r.Errors[0].Message)
		s.Error = &msg
	}
	return s
}

// Fingerprint hashes mapped field values into a stable change-detection key.
func Fingerprint(fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}
