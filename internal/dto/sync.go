package dto

import (
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCalendarSourceRequest registers an iCal feed.
type CreateCalendarSourceRequest struct {
	Name    string `json:"name" binding:"required"`
	FeedURL string `json:"feedURL" binding:"required,url"`
}

// UpdateEventRequest is a staff edit. Any provided field marks the event locally modified.
type UpdateEventRequest struct {
	Title           *string          `json:"title" binding:"omitempty,min=1"`
	Description     *string          `json:"description"`
	Location        *string          `json:"location"`
	StartsAt        *time.Time       `json:"startsAt"`
	EndsAt          *time.Time       `json:"endsAt"`
	RegistrationFee *decimal.Decimal `json:"registrationFee"`
	IsDuesBearing   *bool            `json:"isDuesBearing"`
}

func (r UpdateEventRequest) ToPatch() domain.EventPatch {
	return domain.EventPatch{
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		RegistrationFee: r.RegistrationFee,
		IsDuesBearing:   r.IsDuesBearing,
	}
}

// UpdateVariantRequest is a staff edit of a synced variant.
type UpdateVariantRequest struct {
	Title     *string          `json:"title" binding:"omitempty,min=1"`
	Price     *decimal.Decimal `json:"price"`
	IsEnabled *bool            `json:"isEnabled"`
}

func (r UpdateVariantRequest) ToPatch() domain.VariantPatch {
	return domain.VariantPatch{Title: r.Title, Price: r.Price, IsEnabled: r.IsEnabled}
}
