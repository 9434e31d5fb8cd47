package model

import (
	"fmt"
	"time"
)

// CalendarDate is a civil date without location. All engine date math is
// local-wall-clock; no timezone conversion happens anywhere downstream.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a "2006-01-02" value.
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CalendarDate{}, err
	}
	return DateOf(t), nil
}

// Time returns the date at midnight in time.Local. Used only as a vehicle
// for calendar arithmetic, never exposed.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d CalendarDate) AddMonths(n int) CalendarDate {
	return DateOf(d.Time().AddDate(0, n, 0))
}

func (d CalendarDate) AddYears(n int) CalendarDate {
	return DateOf(d.Time().AddDate(n, 0, 0))
}

func (d CalendarDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d CalendarDate) Equal(o CalendarDate) bool {
	return d == o
}

func (d CalendarDate) Before(o CalendarDate) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d CalendarDate) After(o CalendarDate) bool {
	return o.Before(d)
}

// DaysUntil returns the number of calendar days from d to o (negative when
// o is earlier). Computed over UTC midnights so DST transitions in the local
// zone never shorten a span.
func (d CalendarDate) DaysUntil(o CalendarDate) int {
	from := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	to := time.Date(o.Year, o.Month, o.Day, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ClockTime is a time-of-day slot value.
type ClockTime struct {
	Hour   int
	Minute int
}

// Fraction returns the comparable fractional-hour value (9:30 -> 9.5).
func (c ClockTime) Fraction() float64 {
	return float64(c.Hour) + float64(c.Minute)/60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// RawRecord is an opaque field-name to value mapping owned by the external
// data source. Read-only to the engine.
type RawRecord map[string]string

// PlacedEvent is a normalized single-occurrence occupant of one or more
// buckets. Derived and immutable; recomputed wholesale on every change.
type PlacedEvent struct {
	Title      string
	Day        CalendarDate
	Start      *ClockTime // nil for full-day occurrences
	End        *ClockTime
	Color      string
	Attributes map[string]string
	Source     RawRecord
}

// AllDay reports whether the event carries no time-of-day component.
func (e PlacedEvent) AllDay() bool {
	return e.Start == nil && e.End == nil
}

// Bucket is one discrete slot of a rendered grid. Date is always set; Slot
// is set only on day-timeline grids. Events keeps RawRecord input order and
// is never nil.
type Bucket struct {
	Date          CalendarDate
	Slot          *ClockTime
	CurrentPeriod bool
	Today         bool
	Selected      bool
	Events        []PlacedEvent
}

// Layout selects one of the three grid shapes.
type Layout string

const (
	LayoutMonth Layout = "month"
	LayoutWeek  Layout = "week"
	LayoutDay   Layout = "day"
)

// ParseLayout validates a layout token.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutMonth, LayoutWeek, LayoutDay:
		return Layout(s), nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}
