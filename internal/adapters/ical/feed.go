package ical

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

const maxFeedBytes = 16 << 20

// Feed downloads iCalendar feeds and yields their VEVENTs.
type Feed struct {
	httpClient *http.Client
}

var _ portssvc.CalendarFeed = (*Feed)(nil)

func NewFeed(httpClient *http.Client) *Feed {
	return &Feed{httpClient: httpClient}
}

// FetchEvents downloads and parses the whole feed before yielding. A truncated
// or oversized body fails the fetch.
func (f *Feed) FetchEvents(ctx context.Context, feedURL string) (iter.Seq2[domain.RemoteEvent, error], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(feedURL), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid feed url: %v", apperrors.ErrValidation, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewRemoteError("calendar fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, apperrors.NewRemoteError("calendar fetch", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, apperrors.NewRemoteError("calendar fetch", err)
	}
	if len(body) > maxFeedBytes {
		return nil, apperrors.NewRemoteError("calendar fetch", fmt.Errorf("feed exceeds %d bytes", maxFeedBytes))
	}
	cal, err := Parse(body)
	if err != nil {
		return nil, apperrors.NewRemoteError("calendar parse", err)
	}
	return Events(cal), nil
}

var errTruncated = errors.New("feed is truncated: missing END:VCALENDAR")

// Parse parses a complete feed. A body that does not close its VCALENDAR, or
// that leaves a VEVENT unparsed, is rejected as a whole.
func Parse(body []byte) (*ics.Calendar, error) {
	if !endsCalendar(body) {
		return nil, errTruncated
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for i, ev := range cal.Events() {
		if ev == nil {
			return nil, fmt.Errorf("malformed VEVENT at index %d", i)
		}
	}
	return cal, nil
}

func endsCalendar(body []byte) bool {
	trimmed := bytes.TrimRight(body, " \t\r\n")
	i := bytes.LastIndexAny(trimmed, "\r\n")
	return bytes.EqualFold(bytes.TrimSpace(trimmed[i+1:]), []byte("END:VCALENDAR"))
}

// Events converts a parsed calendar. Cancelled events are left out so they
// are treated like removed ones.
func Events(cal *ics.Calendar) iter.Seq2[domain.RemoteEvent, error] {
	return func(yield func(domain.RemoteEvent, error) bool) {
		for _, ev := range cal.Events() {
			if ev == nil {
				if !yield(domain.RemoteEvent{}, errors.New("malformed VEVENT")) {
					return
				}
				continue
			}
			if strings.EqualFold(propValue(ev, ics.ComponentPropertyStatus), "CANCELLED") {
				continue
			}
			if !yield(toRemote(ev), nil) {
				return
			}
		}
	}
}

// toRemote maps a VEVENT. A missing or unparsable DTSTART leaves Start zero,
// which fails validation for that event only.
func toRemote(ev *ics.VEvent) domain.RemoteEvent {
	out := domain.RemoteEvent{
		UID:         ev.Id(),
		Summary:     unescape(propValue(ev, ics.ComponentPropertySummary)),
		Description: unescape(propValue(ev, ics.ComponentPropertyDescription)),
		Location:    unescape(propValue(ev, ics.ComponentPropertyLocation)),
	}
	if start, err := ev.GetStartAt(); err == nil {
		out.Start = start.UTC()
	} else if start, err := ev.GetAllDayStartAt(); err == nil {
		out.Start = start.UTC()
	}
	if end, err := ev.GetEndAt(); err == nil {
		e := end.UTC()
		out.End = &e
	} else if end, err := ev.GetAllDayEndAt(); err == nil {
		e := end.UTC()
		out.End = &e
	}
	return out
}

func propValue(ev *ics.VEvent, prop ics.ComponentProperty) string {
	if ev == nil {
		return ""
	}
	p := ev.GetProperty(prop)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Value)
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(s string) string {
	return textUnescaper.Replace(s)
}

func normalizeURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "webcal://"); ok {
		return "https://" + rest
	}
	return u
}
