package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridcal/internal/model"
)

func date(y int, m time.Month, d int) model.CalendarDate {
	return model.CalendarDate{Year: y, Month: m, Day: d}
}

func TestMonthDates_February2024(t *testing.T) {
	dates := MonthDates(date(2024, time.February, 14), time.Monday, false)

	require.NotEmpty(t, dates)
	assert.Zero(t, len(dates)%7, "month grid must consist of complete weeks")
	assert.Equal(t, date(2024, time.January, 29), dates[0])
	assert.Equal(t, date(2024, time.March, 3), dates[len(dates)-1])
	assert.Equal(t, time.Monday, dates[0].Weekday())
	assert.Equal(t, time.Sunday, dates[len(dates)-1].Weekday())

	// Contiguous and gap-free.
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDays(1), dates[i])
	}
}

func TestMonthDates_FirstDayOnWeekStart(t *testing.T) {
	// April 2024 starts on a Monday; no extra leading week may appear.
	dates := MonthDates(date(2024, time.April, 10), time.Monday, false)

	assert.Equal(t, date(2024, time.April, 1), dates[0])
	assert.Equal(t, date(2024, time.May, 5), dates[len(dates)-1])
	assert.Len(t, dates, 35)
}

func TestMonthDates_LastDayOnWeekEnd(t *testing.T) {
	// June 2024 ends on a Sunday; no extra trailing week may appear.
	dates := MonthDates(date(2024, time.June, 5), time.Monday, false)

	assert.Equal(t, date(2024, time.May, 27), dates[0])
	assert.Equal(t, date(2024, time.June, 30), dates[len(dates)-1])
	assert.Len(t, dates, 35)
}

func TestMonthDates_SundayWeekStart(t *testing.T) {
	dates := MonthDates(date(2024, time.February, 1), time.Sunday, false)

	assert.Equal(t, date(2024, time.January, 28), dates[0])
	assert.Equal(t, time.Sunday, dates[0].Weekday())
	assert.Equal(t, time.Saturday, dates[len(dates)-1].Weekday())
	assert.Zero(t, len(dates)%7)
}

func TestMonthDates_WorkdaysOnly(t *testing.T) {
	dates := MonthDates(date(2024, time.February, 14), time.Monday, true)

	assert.Zero(t, len(dates)%5)
	for _, d := range dates {
		wd := d.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestWeekDates(t *testing.T) {
	dates := WeekDates(date(2024, time.February, 14), time.Monday, false)

	require.Len(t, dates, 7)
	assert.Equal(t, date(2024, time.February, 12), dates[0])
	assert.Equal(t, date(2024, time.February, 18), dates[6])
}

func TestWeekDates_WorkdaysOnly(t *testing.T) {
	dates := WeekDates(date(2024, time.February, 14), time.Monday, true)

	require.Len(t, dates, 5)
	assert.Equal(t, date(2024, time.February, 12), dates[0])
	assert.Equal(t, date(2024, time.February, 16), dates[4])
}

func TestDaySlots_Counts(t *testing.T) {
	cases := []struct {
		mode        HoursMode
		granularity int
		want        int
	}{
		{HoursAll, 60, 24},
		{HoursAll, 30, 48},
		{HoursAll, 15, 96},
		{HoursWork, 60, 11},
		{HoursWork, 30, 22},
		{HoursWork, 15, 44},
	}
	for _, tc := range cases {
		slots := DaySlots(tc.mode, tc.granularity)
		assert.Len(t, slots, tc.want, "mode=%s granularity=%d", tc.mode, tc.granularity)
	}
}

func TestDaySlots_Boundaries(t *testing.T) {
	all := DaySlots(HoursAll, 60)
	assert.Equal(t, model.ClockTime{Hour: 0, Minute: 0}, all[0])
	assert.Equal(t, model.ClockTime{Hour: 23, Minute: 0}, all[len(all)-1])

	work := DaySlots(HoursWork, 60)
	assert.Equal(t, model.ClockTime{Hour: 8, Minute: 0}, work[0])
	assert.Equal(t, model.ClockTime{Hour: 18, Minute: 0}, work[len(work)-1])

	work30 := DaySlots(HoursWork, 30)
	assert.Equal(t, model.ClockTime{Hour: 18, Minute: 30}, work30[len(work30)-1])
}

func TestDaySlots_SlotArithmetic(t *testing.T) {
	slots := DaySlots(HoursAll, 15)
	for i, s := range slots {
		assert.Equal(t, i*15, s.Hour*60+s.Minute)
	}
}

func TestWeekStartOf(t *testing.T) {
	// A Monday maps to itself.
	assert.Equal(t, date(2024, time.February, 12), WeekStartOf(date(2024, time.February, 12), time.Monday))
	// A Sunday maps back six days.
	assert.Equal(t, date(2024, time.February, 12), WeekStartOf(date(2024, time.February, 18), time.Monday))
}
