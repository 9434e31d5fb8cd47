// Package normalize maps raw heterogeneous records into PlacedEvents.
//
// Two modes exist. Date-range mode expands each record into one full-day
// event per calendar day of its start..end span. Timed mode emits exactly
// one event per record with parsed "HH:MM" clock values. Per-record
// anomalies are tolerated by skipping the record; only configuration-level
// problems abort.
package normalize

import (
	"strconv"
	"strings"

	appLog "gridcal/internal/log"
	"gridcal/internal/model"
)

// FieldMap names which raw-record fields hold each value the pipeline reads.
type FieldMap struct {
	Title      string
	Start      string
	End        string
	StartTime  string
	EndTime    string
	Color      string
	Attributes []string
}

// Timed reports whether records should be treated as timed events rather
// than date ranges.
func (f FieldMap) Timed() bool {
	return f.StartTime != "" && f.EndTime != ""
}

// requiredFields lists the validation order. The first failing entry wins,
// so callers always see the same field named for the same misconfiguration.
func (f FieldMap) requiredFields() []struct{ name, value string } {
	req := []struct{ name, value string }{
		{"title", f.Title},
		{"start", f.Start},
		{"end", f.End},
	}
	if f.Timed() || f.StartTime != "" || f.EndTime != "" {
		req = append(req,
			struct{ name, value string }{"start_time", f.StartTime},
			struct{ name, value string }{"end_time", f.EndTime},
		)
	}
	return req
}

// Validate checks the field map against the record collection: every
// required name must be configured, and must exist as a key on the first
// record of a non-empty collection. Checked in the fixed order title, start,
// end, start_time, end_time; the first failure is returned and no
// normalization is attempted.
func Validate(fields FieldMap, records []model.RawRecord) error {
	for _, rf := range fields.requiredFields() {
		if strings.TrimSpace(rf.value) == "" {
			return &MissingConfigurationError{Field: rf.name}
		}
	}
	if len(records) == 0 {
		return nil
	}
	first := records[0]
	for _, rf := range fields.requiredFields() {
		if _, ok := first[rf.value]; !ok {
			return &MissingFieldError{Field: rf.value}
		}
	}
	return nil
}

// ParseClock parses a "HH:MM" value into a ClockTime.
func ParseClock(s string) (model.ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return model.ClockTime{}, &MalformedTimeValueError{Value: s}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.ClockTime{}, &MalformedTimeValueError{Value: s}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.ClockTime{}, &MalformedTimeValueError{Value: s}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return model.ClockTime{}, &MalformedTimeValueError{Value: s}
	}
	return model.ClockTime{Hour: h, Minute: m}, nil
}

// Expand produces full-day PlacedEvents for date-range records: one per
// calendar day from start to end inclusive. colors is the positional
// fallback palette, consumed only when the record's explicit color field is
// empty. A record whose end precedes its start contributes zero occurrences;
// a record with an unparsable date is skipped and logged.
func Expand(records []model.RawRecord, fields FieldMap, colors []string) []model.PlacedEvent {
	out := make([]model.PlacedEvent, 0, len(records))

	for i, rec := range records {
		start, err := model.ParseDate(rec[fields.Start])
		if err != nil {
			appLog.Warn("skipping record with unparsable start date",
				"index", i, "value", rec[fields.Start])
			continue
		}
		end, err := model.ParseDate(rec[fields.End])
		if err != nil {
			appLog.Warn("skipping record with unparsable end date",
				"index", i, "value", rec[fields.End])
			continue
		}
		if end.Before(start) {
			// Tolerated: contributes nothing rather than failing the batch.
			appLog.Debug("record end precedes start, zero occurrences",
				"index", i, "start", start, "end", end)
			continue
		}

		color := recordColor(rec, fields, colors, i)
		attrs := projectAttributes(rec, fields.Attributes)

		for d := start; !d.After(end); d = d.AddDays(1) {
			out = append(out, model.PlacedEvent{
				Title:      rec[fields.Title],
				Day:        d,
				Color:      color,
				Attributes: attrs,
				Source:     rec,
			})
		}
	}
	return out
}

// Timed produces one PlacedEvent per record with parsed clock values. The
// event's day comes from the start field. A malformed time skips that single
// record.
func Timed(records []model.RawRecord, fields FieldMap, colors []string) []model.PlacedEvent {
	out := make([]model.PlacedEvent, 0, len(records))

	for i, rec := range records {
		day, err := model.ParseDate(rec[fields.Start])
		if err != nil {
			appLog.Warn("skipping record with unparsable date",
				"index", i, "value", rec[fields.Start])
			continue
		}
		start, err := ParseClock(rec[fields.StartTime])
		if err != nil {
			appLog.Warn("skipping record with malformed start time",
				"index", i, "value", rec[fields.StartTime])
			continue
		}
		end, err := ParseClock(rec[fields.EndTime])
		if err != nil {
			appLog.Warn("skipping record with malformed end time",
				"index", i, "value", rec[fields.EndTime])
			continue
		}

		s, e := start, end
		out = append(out, model.PlacedEvent{
			Title:      rec[fields.Title],
			Day:        day,
			Start:      &s,
			End:        &e,
			Color:      recordColor(rec, fields, colors, i),
			Attributes: projectAttributes(rec, fields.Attributes),
			Source:     rec,
		})
	}
	return out
}

// recordColor prefers the record's explicit color field over the assigned
// palette slot.
func recordColor(rec model.RawRecord, fields FieldMap, colors []string, i int) string {
	if fields.Color != "" {
		if c := strings.TrimSpace(rec[fields.Color]); c != "" {
			return c
		}
	}
	if i < len(colors) {
		return colors[i]
	}
	return ""
}

func projectAttributes(rec model.RawRecord, names []string) map[string]string {
	attrs := make(map[string]string, len(names))
	for _, name := range names {
		attrs[name] = rec[name]
	}
	return attrs
}
