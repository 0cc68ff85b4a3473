package requirement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekAndYearFromDate(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		wantWeek int
		wantYear int
	}{
		{"zero", time.Time{}, 0, 0},
		{"monday week 1", date(2024, time.January, 1), 1, 2024},
		{"sunday closes its own week", date(2024, time.January, 7), 1, 2024},
		{"mid year saturday", date(2024, time.June, 15), 24, 2024},
		{"week ends in next year", date(2024, time.December, 30), 1, 2025},
		{"sunday in iso week 52 of previous year", date(2023, time.January, 1), 52, 2023},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, y := WeekAndYearFromDate(tt.date)
			assert.Equal(t, tt.wantWeek, w)
			assert.Equal(t, tt.wantYear, y)
		})
	}
}

func TestWeekKey_Ordering(t *testing.T) {
	assert.Equal(t, 202401, WeekKey(1, 2024))
	assert.Less(t, WeekKey(1, 2024), WeekKey(52, 2024))
	assert.Less(t, WeekKey(52, 2024), WeekKey(1, 2025))
}

func TestNextWeek(t *testing.T) {
	w, y := NextWeek(10, 2024)
	assert.Equal(t, 11, w)
	assert.Equal(t, 2024, y)

	w, y = NextWeek(52, 2024)
	assert.Equal(t, 1, w)
	assert.Equal(t, 2025, y)
}

func TestPrevWeek(t *testing.T) {
	w, y := PrevWeek(10, 2024)
	assert.Equal(t, 9, w)
	assert.Equal(t, 2024, y)

	w, y = PrevWeek(1, 2024)
	assert.Equal(t, 52, w)
	assert.Equal(t, 2023, y)
}
