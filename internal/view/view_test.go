package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridcal/internal/grid"
	"gridcal/internal/model"
	"gridcal/internal/nav"
	"gridcal/internal/normalize"
)

func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 10, 0, 0, 0, time.Local)
	}
}

func date(y int, m time.Month, d int) model.CalendarDate {
	return model.CalendarDate{Year: y, Month: m, Day: d}
}

func rangeAssembler() *Assembler {
	return &Assembler{
		Fields: normalize.FieldMap{Title: "title", Start: "start", End: "end"},
		Options: Options{
			WeekStart:   time.Monday,
			Granularity: 30,
			HoursMode:   grid.HoursAll,
			TimeFormat:  24,
			Locale:      "en",
		},
	}
}

func timedAssembler() *Assembler {
	a := rangeAssembler()
	a.Fields.StartTime = "from"
	a.Fields.EndTime = "to"
	return a
}

func TestBuild_MonthGridAnnotations(t *testing.T) {
	state := nav.New(fixedNow(2024, time.February, 14))
	state.Select(date(2024, time.February, 20))
	records := []model.RawRecord{
		{"title": "Ayoub", "start": "2024-02-15", "end": "2024-02-18"},
	}

	buckets, err := rangeAssembler().Build(model.LayoutMonth, state, records)
	require.NoError(t, err)

	byDate := map[string]model.Bucket{}
	for _, b := range buckets {
		byDate[b.Date.String()] = b
	}

	// Leading January days belong to the grid but not the period.
	assert.False(t, byDate["2024-01-29"].CurrentPeriod)
	assert.True(t, byDate["2024-02-14"].CurrentPeriod)
	assert.True(t, byDate["2024-02-14"].Today)
	assert.True(t, byDate["2024-02-20"].Selected)
	assert.False(t, byDate["2024-02-19"].Selected)

	for _, day := range []string{"2024-02-15", "2024-02-16", "2024-02-17", "2024-02-18"} {
		require.Len(t, byDate[day].Events, 1, "expected event on %s", day)
		assert.Equal(t, "Ayoub", byDate[day].Events[0].Title)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	state := nav.New(fixedNow(2024, time.February, 14))
	records := []model.RawRecord{
		{"title": "Ayoub", "start": "2024-02-15", "end": "2024-02-18"},
	}
	asm := rangeAssembler()

	first, err := asm.Build(model.LayoutMonth, state, records)
	require.NoError(t, err)
	second, err := asm.Build(model.LayoutMonth, state, records)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_WeekGrid(t *testing.T) {
	state := nav.New(fixedNow(2024, time.February, 14))
	records := []model.RawRecord{
		{"title": "Trip", "start": "2024-02-12", "end": "2024-02-13"},
	}

	buckets, err := rangeAssembler().Build(model.LayoutWeek, state, records)
	require.NoError(t, err)

	require.Len(t, buckets, 7)
	assert.Equal(t, date(2024, time.February, 12), buckets[0].Date)
	assert.Len(t, buckets[0].Events, 1)
	assert.Len(t, buckets[1].Events, 1)
	assert.Empty(t, buckets[2].Events)
	for _, b := range buckets {
		assert.True(t, b.CurrentPeriod)
	}
}

func TestBuild_DayTimeline(t *testing.T) {
	state := nav.New(fixedNow(2024, time.February, 13))
	records := []model.RawRecord{
		{"title": "Standup", "start": "2024-02-13", "end": "2024-02-13", "from": "09:00", "to": "10:30"},
	}

	buckets, err := timedAssembler().Build(model.LayoutDay, state, records)
	require.NoError(t, err)

	require.Len(t, buckets, 48)
	occupied := []string{}
	for _, b := range buckets {
		require.NotNil(t, b.Slot)
		if len(b.Events) > 0 {
			occupied = append(occupied, b.Slot.String())
		}
	}
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, occupied)
}

func TestBuild_ConfigurationErrorAbortsWithoutBuckets(t *testing.T) {
	state := nav.New(fixedNow(2024, time.February, 14))
	asm := rangeAssembler()
	asm.Fields.Title = ""

	buckets, err := asm.Build(model.LayoutMonth, state, []model.RawRecord{{"start": "2024-02-13"}})

	var cfgErr *normalize.MissingConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Nil(t, buckets)
}

func TestBuild_PaletteFallbackAndSeeds(t *testing.T) {
	_ = nav.New(fixedNow(2024, time.February, 14))
	asm := rangeAssembler()
	asm.Options.Palette = []string{"#101010"}
	records := []model.RawRecord{
		{"title": "a", "start": "2024-02-13", "end": "2024-02-13"},
		{"title": "b", "start": "2024-02-13", "end": "2024-02-13"},
	}

	events, err := asm.Events(records)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "#101010", events[0].Color)
	assert.NotEmpty(t, events[1].Color)
	assert.NotEqual(t, events[0].Color, events[1].Color)
}
