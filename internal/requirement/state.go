package requirement

import (
	"slices"
	"time"

	"github.com/sells-group/inspection-cli/internal/model"
)

// State is the requirement collection of one inspection together with the
// dates bounding it. Transitions return a new State and never modify the
// receiver's rows.
type State struct {
	Rows      []model.ExecutionRequirement `json:"rows"`
	StartDate time.Time                    `json:"startDate"`
	MaxDate   time.Time                    `json:"maxDate"`
}

// NewState builds the state for an inspection and its stored rows.
func NewState(insp model.Inspection, rows []model.ExecutionRequirement) State {
	return State{
		Rows:      rows,
		StartDate: insp.StartDate,
		MaxDate:   insp.LastDate(),
	}
}

// MaxWeekKey is the WeekKey of the last week rows may be generated for.
// An unset MaxDate gives 0, which blocks all generation bounded by it.
func (s State) MaxWeekKey() int {
	return WeekKey(WeekAndYearFromDate(s.MaxDate))
}

// Weeks lists the weeks present in the state.
func (s State) Weeks() []WeekRef {
	return Weeks(s.Rows)
}

// Derive makes sure rows exist for the selected week. With no rows at all,
// the week of StartDate is generated instead. A selected week past
// MaxWeekKey, or one that already has rows, leaves the state unchanged.
func Derive(s State, week, year int) State {
	if len(s.Rows) == 0 {
		w, y := WeekAndYearFromDate(s.StartDate)
		if w == 0 {
			return s
		}
		s.Rows = GenerateForWeek(y, w, nil)
		return s
	}

	if week < 1 || len(RowsForWeek(s.Rows, week, year)) > 0 {
		return s
	}
	if WeekKey(week, year) > s.MaxWeekKey() {
		return s
	}

	generated := GenerateForWeek(year, week, ReferenceWeek(s.Rows, week, year))
	s.Rows = Sort(append(slices.Clone(s.Rows), generated...))
	return s
}

// AppendNextWeek generates the week following the last row. Nothing is
// appended when that week is past MaxWeekKey, and rows whose key already
// exists are skipped. An empty state is bootstrapped like Derive.
func AppendNextWeek(s State) State {
	if len(s.Rows) == 0 {
		return Derive(s, 0, 0)
	}

	last := s.Rows[len(s.Rows)-1]
	week, year := NextWeek(last.Week, last.Year)
	if WeekKey(week, year) > s.MaxWeekKey() {
		return s
	}

	existing := make(map[string]bool, len(s.Rows))
	for _, r := range s.Rows {
		existing[r.Key()] = true
	}

	rows := slices.Clone(s.Rows)
	for _, r := range GenerateForWeek(year, week, ReferenceWeek(s.Rows, week, year)) {
		if existing[r.Key()] {
			continue
		}
		existing[r.Key()] = true
		rows = append(rows, r)
	}
	s.Rows = rows
	return s
}

// RemoveWeek drops every row in the same (year, week) as rep.
func RemoveWeek(s State, rep model.ExecutionRequirement) State {
	rows := make([]model.ExecutionRequirement, 0, len(s.Rows))
	for _, r := range s.Rows {
		if !r.SameWeek(rep) {
			rows = append(rows, r)
		}
	}
	s.Rows = rows
	return s
}

// SetRequirement sets the requirement of the row matching target's week,
// year, area and equipment class. The value is stored as given.
func SetRequirement(s State, target model.ExecutionRequirement, value string) State {
	rows := slices.Clone(s.Rows)
	for i := range rows {
		if rows[i].Key() == target.Key() {
			rows[i].Requirement = value
		}
	}
	s.Rows = rows
	return s
}

// Find returns the row matching target's key.
func (s State) Find(target model.ExecutionRequirement) (model.ExecutionRequirement, bool) {
	for _, r := range s.Rows {
		if r.Key() == target.Key() {
			return r, true
		}
	}
	return model.ExecutionRequirement{}, false
}
