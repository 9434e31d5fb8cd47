package view

import (
	"fmt"
	"time"

	"gridcal/internal/model"
)

// localeText is the single label table shared by all three layouts. Weekday
// lists start at Monday; WeekdayLabels rotates and slices as configured.
type localeText struct {
	weekdays [7]string
	months   [12]string
	today    string
}

var locales = map[string]localeText{
	"en": {
		weekdays: [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		months:   [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		today:    "Today",
	},
	"fr": {
		weekdays: [7]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"},
		months:   [12]string{"Janvier", "Février", "Mars", "Avril", "Mai", "Juin", "Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre"},
		today:    "Aujourd'hui",
	},
	"es": {
		weekdays: [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"},
		months:   [12]string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"},
		today:    "Hoy",
	},
	"de": {
		weekdays: [7]string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"},
		months:   [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		today:    "Heute",
	},
}

func localeOrDefault(locale string) localeText {
	if lt, ok := locales[locale]; ok {
		return lt
	}
	return locales["en"]
}

// WeekdayLabels returns the column headers for month and week grids: seven
// names starting at weekStart, or the five Monday..Friday names when
// workdaysOnly.
func WeekdayLabels(locale string, weekStart time.Weekday, workdaysOnly bool) []string {
	lt := localeOrDefault(locale)
	if workdaysOnly {
		return append([]string(nil), lt.weekdays[:5]...)
	}

	// lt.weekdays is Monday-first; rotate so weekStart comes first.
	offset := (int(weekStart) + 6) % 7
	out := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, lt.weekdays[(offset+i)%7])
	}
	return out
}

// MonthLabel returns the localized month name.
func MonthLabel(locale string, m time.Month) string {
	return localeOrDefault(locale).months[int(m)-1]
}

// TodayLabel returns the localized "Today" button text.
func TodayLabel(locale string) string {
	return localeOrDefault(locale).today
}

// FormatSlot renders a slot's clock text in 12h or 24h form.
func FormatSlot(t model.ClockTime, timeFormat int) string {
	if timeFormat != 12 {
		return t.String()
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, suffix)
}
