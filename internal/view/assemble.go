// Package view composes the grid, normalizer, palette and bucketer output
// into the render-ready bucket list presentation consumes. Build is a pure
// function of its inputs; calling it twice with unchanged inputs yields
// structurally equal output.
package view

import (
	"time"

	"gridcal/internal/bucket"
	"gridcal/internal/grid"
	"gridcal/internal/model"
	"gridcal/internal/nav"
	"gridcal/internal/normalize"
	"gridcal/internal/palette"
)

// Options carries the per-view grid configuration.
type Options struct {
	WeekStart    time.Weekday
	WorkdaysOnly bool
	Granularity  int
	HoursMode    grid.HoursMode
	TimeFormat   int
	Locale       string
	Palette      []string
}

// Assembler builds bucket lists for a fixed field map and option set.
type Assembler struct {
	Fields  normalize.FieldMap
	Options Options
}

// Events validates the configuration and returns the normalized PlacedEvent
// list without joining it onto any grid.
func (a *Assembler) Events(records []model.RawRecord) ([]model.PlacedEvent, error) {
	if err := normalize.Validate(a.Fields, records); err != nil {
		return nil, err
	}
	colors := palette.Assign(len(records), a.Options.Palette)
	if a.Fields.Timed() {
		return normalize.Timed(records, a.Fields, colors), nil
	}
	return normalize.Expand(records, a.Fields, colors), nil
}

// Build validates the configuration against the records, normalizes them
// into PlacedEvents and joins those onto the layout's bucket sequence.
// Configuration-level errors abort before any bucket is produced; per-record
// anomalies have already been tolerated inside the normalizer.
func (a *Assembler) Build(layout model.Layout, state *nav.State, records []model.RawRecord) ([]model.Bucket, error) {
	events, err := a.Events(records)
	if err != nil {
		return nil, err
	}

	anchor := state.Anchor(layout, a.Options.WeekStart)
	today := state.Today()

	var buckets []model.Bucket
	switch layout {
	case model.LayoutMonth:
		dates := grid.MonthDates(anchor, a.Options.WeekStart, a.Options.WorkdaysOnly)
		buckets = bucket.ByDay(dates, events)
		for i := range buckets {
			buckets[i].CurrentPeriod = buckets[i].Date.Month == anchor.Month &&
				buckets[i].Date.Year == anchor.Year
		}
	case model.LayoutWeek:
		dates := grid.WeekDates(anchor, a.Options.WeekStart, a.Options.WorkdaysOnly)
		buckets = bucket.ByDay(dates, events)
		for i := range buckets {
			buckets[i].CurrentPeriod = true
		}
	case model.LayoutDay:
		slots := grid.DaySlots(a.Options.HoursMode, a.Options.Granularity)
		buckets = bucket.BySlot(anchor, slots, events, a.Options.Granularity)
		for i := range buckets {
			buckets[i].CurrentPeriod = true
		}
	}

	for i := range buckets {
		buckets[i].Today = buckets[i].Date.Equal(today)
		buckets[i].Selected = state.IsSelected(buckets[i].Date)
	}
	return buckets, nil
}
