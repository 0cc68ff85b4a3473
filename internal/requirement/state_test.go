package requirement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inspection-cli/internal/model"
)

// newState spans ISO weeks 1..13 of 2024.
func newState(rows []model.ExecutionRequirement) State {
	return NewState(model.Inspection{
		StartDate: date(2024, 1, 3),
		EndDate:   date(2024, 3, 31),
	}, rows)
}

func TestState_MaxWeekKey(t *testing.T) {
	assert.Equal(t, 202413, newState(nil).MaxWeekKey())
	assert.Equal(t, 0, State{}.MaxWeekKey())
}

func TestDerive_BootstrapsFromStartDate(t *testing.T) {
	s := Derive(newState(nil), 7, 2024)
	require.Len(t, s.Rows, 18)
	assert.Equal(t, []WeekRef{{1, 2024}}, s.Weeks())
}

func TestDerive_ZeroStartDateProducesNothing(t *testing.T) {
	s := Derive(State{}, 1, 2024)
	assert.Empty(t, s.Rows)
}

func TestDerive_GeneratesSelectedWeekFromFollowingWeek(t *testing.T) {
	rows := append(weekWithValue(2024, 2, "20"), weekWithValue(2024, 4, "40")...)
	s := Derive(newState(rows), 3, 2024)

	require.Len(t, s.Rows, 54)
	assert.Equal(t, []WeekRef{{2, 2024}, {3, 2024}, {4, 2024}}, s.Weeks())
	for _, r := range RowsForWeek(s.Rows, 3, 2024) {
		assert.Equal(t, "40", r.Requirement)
	}
	assert.Equal(t, 3, s.Rows[18].Week, "rows sorted by week")
}

func TestDerive_FallsBackToPrecedingWeek(t *testing.T) {
	s := Derive(newState(weekWithValue(2024, 4, "40")), 5, 2024)
	for _, r := range RowsForWeek(s.Rows, 5, 2024) {
		assert.Equal(t, "40", r.Requirement)
	}
}

func TestDerive_NoAdjacentWeekDefaultsToZero(t *testing.T) {
	s := Derive(newState(weekWithValue(2024, 1, "10")), 9, 2024)
	week := RowsForWeek(s.Rows, 9, 2024)
	require.Len(t, week, 18)
	for _, r := range week {
		assert.Equal(t, "0", r.Requirement)
	}
}

func TestDerive_PastMaxWeekUnchanged(t *testing.T) {
	rows := weekWithValue(2024, 1, "10")
	s := Derive(newState(rows), 14, 2024)
	assert.Equal(t, rows, s.Rows)
}

func TestDerive_ExistingWeekUnchanged(t *testing.T) {
	rows := weekWithValue(2024, 1, "10")
	s := Derive(newState(rows), 1, 2024)
	assert.Equal(t, rows, s.Rows)
}

func TestDerive_DoesNotModifyInput(t *testing.T) {
	rows := weekWithValue(2024, 4, "40")
	_ = Derive(newState(rows), 3, 2024)
	assert.Len(t, rows, 18)
	assert.Equal(t, 4, rows[0].Week)
}

func TestAppendNextWeek(t *testing.T) {
	s := AppendNextWeek(newState(weekWithValue(2024, 12, "12")))
	require.Len(t, s.Rows, 36)
	assert.Equal(t, []WeekRef{{12, 2024}, {13, 2024}}, s.Weeks())
	for _, r := range RowsForWeek(s.Rows, 13, 2024) {
		assert.Equal(t, "12", r.Requirement, "copied from preceding week")
	}
}

func TestAppendNextWeek_BoundaryStop(t *testing.T) {
	rows := weekWithValue(2024, 13, "13")
	s := AppendNextWeek(newState(rows))
	assert.Equal(t, rows, s.Rows)
}

func TestAppendNextWeek_WrapsYear(t *testing.T) {
	st := NewState(model.Inspection{
		StartDate: date(2024, 12, 1),
		MaxDate:   date(2025, 3, 1),
	}, weekWithValue(2024, 52, "52"))

	s := AppendNextWeek(st)
	assert.Equal(t, []WeekRef{{52, 2024}, {1, 2025}}, s.Weeks())
}

func TestAppendNextWeek_NoDuplicates(t *testing.T) {
	// last row belongs to week 1 so the next week (2) is already present
	rows := append(weekWithValue(2024, 2, "20"), weekWithValue(2024, 1, "10")...)
	s := AppendNextWeek(newState(rows))

	assert.Len(t, s.Rows, 36)
	keys := make(map[string]int)
	for _, r := range s.Rows {
		keys[r.Key()]++
	}
	for k, n := range keys {
		assert.Equal(t, 1, n, "duplicate key %s", k)
	}
}

func TestAppendNextWeek_EmptyBootstraps(t *testing.T) {
	s := AppendNextWeek(newState(nil))
	assert.Equal(t, []WeekRef{{1, 2024}}, s.Weeks())
}

func TestRemoveWeek(t *testing.T) {
	rows := append(weekWithValue(2024, 1, "10"), weekWithValue(2024, 2, "20")...)
	rows = append(rows, weekWithValue(2025, 2, "x")...)
	s := newState(rows)

	rep := model.ExecutionRequirement{Area: model.AreaOther, EquipmentClass: 5, Week: 2, Year: 2024}
	out := RemoveWeek(s, rep)

	assert.Len(t, out.Rows, 36)
	assert.Equal(t, []WeekRef{{1, 2024}, {2, 2025}}, out.Weeks())
	assert.Len(t, s.Rows, 54, "input state untouched")
}

func TestSetRequirement(t *testing.T) {
	s := newState(weekWithValue(2024, 1, "10"))
	target := model.ExecutionRequirement{Area: model.AreaCenter, EquipmentClass: 4, Week: 1, Year: 2024}

	out := SetRequirement(s, target, "55.5")

	got, ok := out.Find(target)
	require.True(t, ok)
	assert.Equal(t, "55.5", got.Requirement)

	orig, _ := s.Find(target)
	assert.Equal(t, "10", orig.Requirement)

	changed := 0
	for i := range out.Rows {
		if out.Rows[i].Requirement != s.Rows[i].Requirement {
			changed++
		}
	}
	assert.Equal(t, 1, changed)
}

func TestSetRequirement_UnknownRowNoop(t *testing.T) {
	s := newState(weekWithValue(2024, 1, "10"))
	out := SetRequirement(s, model.ExecutionRequirement{Area: model.AreaCenter, EquipmentClass: 4, Week: 9, Year: 2024}, "1")
	assert.Equal(t, s.Rows, out.Rows)
}
