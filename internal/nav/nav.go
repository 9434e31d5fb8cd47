// Package nav holds the navigation and selection state the grids are built
// around. State is mutated only through its transition methods; every other
// structure downstream is derived and rebuilt wholesale.
package nav

import (
	"fmt"
	"time"

	"gridcal/internal/grid"
	"gridcal/internal/model"
)

// Unit is a navigation step size.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// ParseUnit validates a unit token.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return Unit(s), nil
	}
	return "", fmt.Errorf("unknown navigation unit %q", s)
}

// State carries the reference date and the current selection. The reference
// is always defined; the initial state anchors it to today.
type State struct {
	Reference model.CalendarDate
	Selected  *model.CalendarDate
	Entity    model.RawRecord

	now func() time.Time
}

// New returns a State referenced on today. now is injectable for tests; nil
// means time.Now.
func New(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{
		Reference: model.DateOf(now()),
		now:       now,
	}
}

// Step advances (delta > 0) or retreats (delta < 0) the reference by whole
// calendar units. Month and year steps re-anchor to the first of the month
// so variable month lengths never clamp awkwardly.
func (s *State) Step(unit Unit, delta int) {
	switch unit {
	case UnitDay:
		s.Reference = s.Reference.AddDays(delta)
	case UnitWeek:
		s.Reference = s.Reference.AddDays(7 * delta)
	case UnitMonth:
		s.Reference = grid.MonthAnchor(s.Reference).AddMonths(delta)
	case UnitYear:
		s.Reference = grid.MonthAnchor(s.Reference).AddYears(delta)
	}
}

// Clone returns an independent copy of the state. Mutations on the original
// are never visible through the copy.
func (s *State) Clone() *State {
	c := *s
	if s.Selected != nil {
		sel := *s.Selected
		c.Selected = &sel
	}
	return &c
}

// GoToToday resets the reference to the current date. The selection is
// deliberately left alone.
func (s *State) GoToToday() {
	s.Reference = model.DateOf(s.now())
}

// Today returns the current date from the injected clock.
func (s *State) Today() model.CalendarDate {
	return model.DateOf(s.now())
}

// Select sets the selected date.
func (s *State) Select(d model.CalendarDate) {
	sel := d
	s.Selected = &sel
}

// IsSelected is the equality predicate presentation uses to highlight a
// bucket.
func (s *State) IsSelected(d model.CalendarDate) bool {
	return s.Selected != nil && s.Selected.Equal(d)
}

// SelectEntity sets the selected record, independent of the selected date.
func (s *State) SelectEntity(rec model.RawRecord) {
	s.Entity = rec
}

// Anchor returns the canonical reference date for a layout: first-of-month
// for month grids, the week-start day for week grids, the exact day for day
// timelines.
func (s *State) Anchor(layout model.Layout, weekStart time.Weekday) model.CalendarDate {
	switch layout {
	case model.LayoutMonth:
		return grid.MonthAnchor(s.Reference)
	case model.LayoutWeek:
		return grid.WeekStartOf(s.Reference, weekStart)
	default:
		return s.Reference
	}
}
