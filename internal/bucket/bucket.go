// Package bucket joins PlacedEvents to grid buckets.
//
// Day-granularity layouts (month, week) match on calendar-date equality.
// Slot-granularity layouts (day timeline) match when a slot's start instant
// lies inside the event's running window, or when the event starts inside
// the slot. The end boundary is exclusive: an event ending 10:30 occupies
// the 10:00 slot but not the 10:30 slot. Input order is preserved in every
// bucket; no sorting by time or title happens here.
package bucket

import "gridcal/internal/model"

// ByDay builds one bucket per date, carrying the events whose day equals
// that date. Events slices are never nil.
func ByDay(dates []model.CalendarDate, events []model.PlacedEvent) []model.Bucket {
	out := make([]model.Bucket, 0, len(dates))
	for _, d := range dates {
		b := model.Bucket{Date: d, Events: []model.PlacedEvent{}}
		for _, ev := range events {
			if ev.Day.Equal(d) {
				b.Events = append(b.Events, ev)
			}
		}
		out = append(out, b)
	}
	return out
}

// BySlot builds one bucket per slot of the given day, carrying the timed
// events overlapping that slot. granularity is the slot width in minutes.
// An event may appear in every consecutive slot it spans; full-day events
// never match slots.
func BySlot(day model.CalendarDate, slots []model.ClockTime, events []model.PlacedEvent, granularity int) []model.Bucket {
	out := make([]model.Bucket, 0, len(slots))
	for _, slot := range slots {
		s := slot
		b := model.Bucket{Date: day, Slot: &s, Events: []model.PlacedEvent{}}
		for _, ev := range events {
			if !ev.Day.Equal(day) {
				continue
			}
			if slotMatches(slot, ev, granularity) {
				b.Events = append(b.Events, ev)
			}
		}
		out = append(out, b)
	}
	return out
}

// slotMatches evaluates both overlap conditions: the slot's start instant
// falls within the event's half-open [start, end) window, or the event
// starts inside this slot's window (hour equal, start minute within the
// slot width). The second branch covers events starting mid-slot.
func slotMatches(slot model.ClockTime, ev model.PlacedEvent, granularity int) bool {
	if ev.Start == nil || ev.End == nil {
		return false
	}

	f := slot.Fraction()
	start := ev.Start.Fraction()
	end := ev.End.Fraction()

	if start <= f && f < end {
		return true
	}

	if slot.Hour == ev.Start.Hour {
		width := float64(granularity) / 60
		if f <= start && start < f+width {
			return true
		}
	}
	return false
}
