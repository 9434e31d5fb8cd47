// Package grid builds the ordered bucket sequences for the three layouts.
// Everything here is a pure function of the reference date and options.
package grid

import (
	"time"

	"gridcal/internal/model"
)

// HoursMode restricts a day timeline to business hours or keeps all 24.
type HoursMode string

const (
	HoursAll  HoursMode = "all"
	HoursWork HoursMode = "work"
)

const (
	workStartHour = 8
	// The 60-minute work grid runs 08:00..18:00 inclusive, 11 slots. Finer
	// granularities subdivide the same span proportionally (22 / 44 slots).
	workHourSlots = 11
)

// WeekStartOf returns the date of the configured week-start day on or before d.
func WeekStartOf(d model.CalendarDate, weekStart time.Weekday) model.CalendarDate {
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDays(-back)
}

// MonthAnchor returns the first day of d's month.
func MonthAnchor(d model.CalendarDate) model.CalendarDate {
	return model.CalendarDate{Year: d.Year, Month: d.Month, Day: 1}
}

func isWorkday(d model.CalendarDate) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// MonthDates returns the full displayed month grid for ref's month: complete
// weeks from the week-start on/before the 1st through the week-end on/after
// the last day. The window is computed over full weeks first; workdaysOnly
// filters Saturday/Sunday out of the result afterwards.
func MonthDates(ref model.CalendarDate, weekStart time.Weekday, workdaysOnly bool) []model.CalendarDate {
	first := MonthAnchor(ref)
	last := first.AddMonths(1).AddDays(-1)

	start := WeekStartOf(first, weekStart)
	end := WeekStartOf(last, weekStart).AddDays(6)

	out := make([]model.CalendarDate, 0, start.DaysUntil(end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		if workdaysOnly && !isWorkday(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// WeekDates returns the 7 dates of the week containing ref, starting at the
// configured week-start day, sliced to the first 5 when workdaysOnly.
func WeekDates(ref model.CalendarDate, weekStart time.Weekday, workdaysOnly bool) []model.CalendarDate {
	start := WeekStartOf(ref, weekStart)
	n := 7
	if workdaysOnly {
		n = 5
	}
	out := make([]model.CalendarDate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDays(i))
	}
	return out
}

// DaySlots returns the ordered hour/minute slots of a day timeline. Slot i
// starts i*granularity minutes after the mode's first hour; counts are an
// arithmetic function of (granularity, mode): 24*60/g slots for all-hours,
// 11*60/g for work-hours.
func DaySlots(mode HoursMode, granularity int) []model.ClockTime {
	switch granularity {
	case 15, 30, 60:
	default:
		granularity = 60
	}

	startHour := 0
	count := 24 * 60 / granularity
	if mode == HoursWork {
		startHour = workStartHour
		count = workHourSlots * 60 / granularity
	}

	out := make([]model.ClockTime, 0, count)
	for i := 0; i < count; i++ {
		mins := i * granularity
		out = append(out, model.ClockTime{
			Hour:   startHour + mins/60,
			Minute: mins % 60,
		})
	}
	return out
}
