// Package requirement derives weekly execution requirement rows for an
// inspection: one row per operating area and equipment class per week.
package requirement

import "time"

// WeeksPerYear is the number of weeks used when stepping between weeks.
// ISO week 53 can be produced from a date but is never stepped into.
const WeeksPerYear = 52

// WeekAndYearFromDate returns the ISO week number of the Monday-start week
// containing date, paired with the calendar year of that week's Sunday.
// The zero time yields (0, 0).
func WeekAndYearFromDate(date time.Time) (week, year int) {
	if date.IsZero() {
		return 0, 0
	}
	end := date.AddDate(0, 0, (7-int(date.Weekday()))%7)
	_, week = end.ISOWeek()
	return week, end.Year()
}

// WeekKey orders (week, year) pairs: year*100 + week.
func WeekKey(week, year int) int {
	return year*100 + week
}

// NextWeek returns the week after (week, year). Week 52 rolls over to week 1
// of the following year.
func NextWeek(week, year int) (int, int) {
	if week+1 > WeeksPerYear {
		return 1, year + 1
	}
	return week + 1, year
}

// PrevWeek returns the week before (week, year). Week 1 rolls back to week 52
// of the previous year.
func PrevWeek(week, year int) (int, int) {
	if week-1 < 1 {
		return WeeksPerYear, year - 1
	}
	return week - 1, year
}

// WeekRef identifies one week of requirement rows.
type WeekRef struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

// Key returns WeekKey for the reference.
func (w WeekRef) Key() int {
	return WeekKey(w.Week, w.Year)
}
