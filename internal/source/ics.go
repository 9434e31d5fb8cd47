package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "gridcal/internal/log"
	"gridcal/internal/model"
	"gridcal/internal/normalize"
)

// ICS occurrence expansion is bounded: runaway RRULEs are capped per event.
const maxOccurrencesPerEvent = 1000

// ICS reads records from a single iCalendar feed. VEVENTs (including RRULE
// recurrences within the horizon window) are flattened into RawRecords keyed
// by the configured field names, so downstream validation and normalization
// see them exactly like records from any other source.
//
// The feed is a read-only pull source: selection write-backs are accepted
// and dropped, and Subscribe callbacks never fire; refresh scheduling is the
// caller's job.
type ICS struct {
	url         string
	horizonDays int
	fields      normalize.FieldMap
	client      *http.Client

	mu           sync.Mutex
	etag         string
	lastModified string
	body         []byte
}

func NewICS(url string, horizonDays int, fields normalize.FieldMap) *ICS {
	if horizonDays <= 0 {
		horizonDays = 62
	}
	return &ICS{
		url:         url,
		horizonDays: horizonDays,
		fields:      fields,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *ICS) Subscribe(func()) func() {
	return func() {}
}

func (s *ICS) SetSelectedEntity(_ context.Context, rec model.RawRecord) error {
	appLog.Debug("ics source ignoring entity write-back", "title", rec[s.fields.Title])
	return nil
}

func (s *ICS) SetSelectedDate(_ context.Context, d model.CalendarDate) error {
	appLog.Debug("ics source ignoring date write-back", "date", d)
	return nil
}

// Records fetches the feed (honoring ETag/Last-Modified against the
// previous response) and converts its events into RawRecords. On a network
// error the last good body is reused when one exists.
func (s *ICS) Records(ctx context.Context) ([]model.RawRecord, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := ical.ParseCalendar(strings.NewReader(string(body)))
	if err != nil {
		appLog.Error("ics parse failed", err, "url", s.url)
		return nil, err
	}

	now := time.Now()
	windowStart := now.AddDate(0, 0, -s.horizonDays)
	windowEnd := now.AddDate(0, 0, s.horizonDays)

	records := make([]model.RawRecord, 0)
	for _, ve := range cal.Events() {
		recs, perr := s.eventRecords(ve, windowStart, windowEnd)
		if perr != nil {
			// Skip the event, keep the feed.
			appLog.Warn("skipping unparsable VEVENT", "url", s.url, "reason", perr)
			continue
		}
		records = append(records, recs...)
	}

	appLog.Info("ics records loaded", "url", s.url, "count", len(records))
	return records, nil
}

func (s *ICS) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.etag != "" {
		req.Header.Set("If-None-Match", s.etag)
	}
	if s.lastModified != "" {
		req.Header.Set("If-Modified-Since", s.lastModified)
	}
	cached := s.body
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			appLog.Error("ics fetch failed, using cached body", err, "url", s.url)
			return cached, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		s.mu.Lock()
		s.etag = resp.Header.Get("ETag")
		s.lastModified = resp.Header.Get("Last-Modified")
		s.body = body
		s.mu.Unlock()
		return body, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, errors.New("304 Not Modified without a cached body")
		}
		return cached, nil

	default:
		if len(cached) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "url", s.url)
			return cached, nil
		}
		return nil, errors.New(resp.Status)
	}
}

// eventRecords converts one VEVENT into RawRecords: one for a plain event,
// one per occurrence within the window for a recurring event.
func (s *ICS) eventRecords(ve *ical.VEvent, windowStart, windowEnd time.Time) ([]model.RawRecord, error) {
	summary := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		summary = p.Value
	}

	allDay := false
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil && !strings.Contains(p.Value, "T") {
		allDay = true
	}

	var start, end time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return nil, err
		}
		end, err = ve.GetAllDayEndAt()
		if err != nil {
			end = start.Add(24 * time.Hour)
		}
		// DTEND on all-day events is exclusive.
		end = end.Add(-24 * time.Hour)
		if end.Before(start) {
			end = start
		}
	} else {
		start, err = ve.GetStartAt()
		if err != nil {
			return nil, err
		}
		end, err = ve.GetEndAt()
		if err != nil {
			end = start
		}
	}

	rawRule := ""
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rawRule = p.Value
	}

	if rawRule == "" {
		if end.Before(windowStart) || start.After(windowEnd) {
			return nil, nil
		}
		return []model.RawRecord{s.record(summary, start, end, allDay)}, nil
	}

	r, err := rrule.StrToRRule(rawRule)
	if err != nil {
		return nil, err
	}
	r.DTStart(start)

	occs := r.Between(windowStart.In(start.Location()), windowEnd.In(start.Location()), true)
	if len(occs) > maxOccurrencesPerEvent {
		appLog.Warn("recurrence expansion capped", "url", s.url, "summary", summary,
			"cap", maxOccurrencesPerEvent)
		occs = occs[:maxOccurrencesPerEvent]
	}

	dur := end.Sub(start)
	out := make([]model.RawRecord, 0, len(occs))
	for _, occStart := range occs {
		out = append(out, s.record(summary, occStart, occStart.Add(dur), allDay))
	}
	return out, nil
}

// record flattens one occurrence into the configured field names. Timed
// field maps additionally carry "HH:MM" clock values.
func (s *ICS) record(summary string, start, end time.Time, allDay bool) model.RawRecord {
	rec := model.RawRecord{
		s.fields.Title: summary,
		s.fields.Start: start.Format("2006-01-02"),
		s.fields.End:   end.Format("2006-01-02"),
	}
	if s.fields.Timed() && !allDay {
		rec[s.fields.StartTime] = start.Format("15:04")
		rec[s.fields.EndTime] = end.Format("15:04")
	} else if s.fields.Timed() {
		rec[s.fields.StartTime] = "00:00"
		rec[s.fields.EndTime] = "23:59"
	}
	return rec
}
