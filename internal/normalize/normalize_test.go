package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridcal/internal/model"
)

var rangeFields = FieldMap{Title: "title", Start: "start", End: "end"}

var timedFields = FieldMap{
	Title: "title", Start: "date", End: "date",
	StartTime: "from", EndTime: "to",
}

func TestValidate_ConfigurationOrder(t *testing.T) {
	cases := []struct {
		fields FieldMap
		want   string
	}{
		{FieldMap{}, "title"},
		{FieldMap{Title: "title"}, "start"},
		{FieldMap{Title: "title", Start: "start"}, "end"},
		{FieldMap{Title: "title", Start: "d", End: "d", EndTime: "to"}, "start_time"},
		{FieldMap{Title: "title", Start: "d", End: "d", StartTime: "from"}, "end_time"},
	}
	for _, tc := range cases {
		err := Validate(tc.fields, nil)
		var cfgErr *MissingConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, tc.want, cfgErr.Field)
	}
}

func TestValidate_MissingFieldOnFirstRecord(t *testing.T) {
	records := []model.RawRecord{{"title": "x", "start": "2024-02-13"}}

	err := Validate(rangeFields, records)

	var fieldErr *MissingFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "end", fieldErr.Field)
}

func TestValidate_EmptyCollectionPasses(t *testing.T) {
	assert.NoError(t, Validate(rangeFields, nil))
	assert.NoError(t, Validate(rangeFields, []model.RawRecord{}))
}

func TestExpand_DateRange(t *testing.T) {
	records := []model.RawRecord{
		{"title": "Trip", "start": "2024-02-13", "end": "2024-02-15"},
	}

	events := Expand(records, rangeFields, []string{"#aabbcc"})

	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, "Trip", ev.Title)
		assert.Equal(t, model.CalendarDate{Year: 2024, Month: time.February, Day: 13 + i}, ev.Day)
		assert.True(t, ev.AllDay())
		assert.Equal(t, "#aabbcc", ev.Color)
	}
}

func TestExpand_SingleDay(t *testing.T) {
	records := []model.RawRecord{
		{"title": "x", "start": "2024-02-13", "end": "2024-02-13"},
	}
	events := Expand(records, rangeFields, nil)
	require.Len(t, events, 1)
}

func TestExpand_EndBeforeStartYieldsNothing(t *testing.T) {
	records := []model.RawRecord{
		{"title": "backwards", "start": "2024-02-15", "end": "2024-02-13"},
		{"title": "fine", "start": "2024-02-20", "end": "2024-02-20"},
	}

	events := Expand(records, rangeFields, nil)

	require.Len(t, events, 1)
	assert.Equal(t, "fine", events[0].Title)
}

func TestExpand_UnparsableDateSkipsRecord(t *testing.T) {
	records := []model.RawRecord{
		{"title": "bad", "start": "13/02/2024", "end": "2024-02-15"},
		{"title": "good", "start": "2024-02-13", "end": "2024-02-13"},
	}

	events := Expand(records, rangeFields, nil)

	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].Title)
}

func TestTimed_ParsesClockValues(t *testing.T) {
	records := []model.RawRecord{
		{"title": "Standup", "date": "2024-02-13", "from": "09:00", "to": "10:30"},
	}

	events := Timed(records, timedFields, nil)

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, model.CalendarDate{Year: 2024, Month: time.February, Day: 13}, ev.Day)
	require.NotNil(t, ev.Start)
	require.NotNil(t, ev.End)
	assert.InDelta(t, 9.0, ev.Start.Fraction(), 1e-9)
	assert.InDelta(t, 10.5, ev.End.Fraction(), 1e-9)
}

func TestTimed_MalformedTimeSkipsSingleRecord(t *testing.T) {
	records := []model.RawRecord{
		{"title": "bad", "date": "2024-02-13", "from": "9h30", "to": "10:00"},
		{"title": "good", "date": "2024-02-13", "from": "11:00", "to": "12:00"},
	}

	events := Timed(records, timedFields, nil)

	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].Title)
}

func TestParseClock(t *testing.T) {
	ct, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, model.ClockTime{Hour: 9, Minute: 5}, ct)

	for _, bad := range []string{"", "0900", "25:00", "12:60", "ab:cd"} {
		_, err := ParseClock(bad)
		var timeErr *MalformedTimeValueError
		assert.ErrorAs(t, err, &timeErr, "input %q", bad)
	}
}

func TestAttributeProjection(t *testing.T) {
	fields := rangeFields
	fields.Attributes = []string{"owner", "kind"}
	records := []model.RawRecord{
		{"title": "x", "start": "2024-02-13", "end": "2024-02-13", "owner": "amina", "kind": "leave"},
	}

	events := Expand(records, fields, nil)

	require.Len(t, events, 1)
	assert.Equal(t, map[string]string{"owner": "amina", "kind": "leave"}, events[0].Attributes)
}

func TestExplicitColorWins(t *testing.T) {
	fields := rangeFields
	fields.Color = "color"
	records := []model.RawRecord{
		{"title": "x", "start": "2024-02-13", "end": "2024-02-13", "color": "#123456"},
		{"title": "y", "start": "2024-02-14", "end": "2024-02-14", "color": ""},
	}

	events := Expand(records, fields, []string{"#ff0000", "#00ff00"})

	require.Len(t, events, 2)
	assert.Equal(t, "#123456", events[0].Color)
	assert.Equal(t, "#00ff00", events[1].Color)
}
