package requirement

import (
	"cmp"
	"slices"

	"github.com/sells-group/inspection-cli/internal/model"
)

// DefaultRequirement is the value of a generated row with nothing to copy from.
const DefaultRequirement = "0"

// GenerateForWeek produces the full set of rows for (year, week): both areas
// times every equipment class. Each requirement is copied from the row in
// copyFrom with the same area and class, or DefaultRequirement.
func GenerateForWeek(year, week int, copyFrom []model.ExecutionRequirement) []model.ExecutionRequirement {
	rows := make([]model.ExecutionRequirement, 0, model.RowsPerWeek)
	for _, area := range model.Areas {
		for class := model.MinEquipmentClass; class <= model.MaxEquipmentClass; class++ {
			value := DefaultRequirement
			for _, src := range copyFrom {
				if src.Area == area && src.EquipmentClass == class {
					value = src.Requirement
					break
				}
			}
			rows = append(rows, model.ExecutionRequirement{
				Area:           area,
				EquipmentClass: class,
				Week:           week,
				Year:           year,
				Requirement:    value,
			})
		}
	}
	return rows
}

// RowsForWeek returns the rows belonging to (week, year).
func RowsForWeek(rows []model.ExecutionRequirement, week, year int) []model.ExecutionRequirement {
	var out []model.ExecutionRequirement
	for _, r := range rows {
		if r.Week == week && r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// ReferenceWeek picks the rows to copy values from when generating
// (week, year): the following week if it has rows, else the preceding week,
// else nothing.
func ReferenceWeek(rows []model.ExecutionRequirement, week, year int) []model.ExecutionRequirement {
	nw, ny := NextWeek(week, year)
	if next := RowsForWeek(rows, nw, ny); len(next) > 0 {
		return next
	}
	pw, py := PrevWeek(week, year)
	return RowsForWeek(rows, pw, py)
}

// Sort orders rows by year, week, area and equipment class. The input is not modified.
func Sort(rows []model.ExecutionRequirement) []model.ExecutionRequirement {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b model.ExecutionRequirement) int {
		return cmp.Or(
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Week, b.Week),
			cmp.Compare(areaIndex(a.Area), areaIndex(b.Area)),
			cmp.Compare(a.EquipmentClass, b.EquipmentClass),
		)
	})
	return out
}

// Weeks lists the distinct weeks present in rows, in chronological order.
func Weeks(rows []model.ExecutionRequirement) []WeekRef {
	seen := make(map[int]bool)
	var weeks []WeekRef
	for _, r := range rows {
		ref := WeekRef{Week: r.Week, Year: r.Year}
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		weeks = append(weeks, ref)
	}
	slices.SortFunc(weeks, func(a, b WeekRef) int { return cmp.Compare(a.Key(), b.Key()) })
	return weeks
}

func areaIndex(a model.Area) int {
	if i := slices.Index(model.Areas, a); i >= 0 {
		return i
	}
	return len(model.Areas)
}
