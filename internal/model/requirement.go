package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Area is the operating area classification of a requirement row.
type Area string

const (
	AreaCenter Area = "CENTER"
	AreaOther  Area = "OTHER"
)

// Areas lists every operating area in display order.
var Areas = []Area{AreaCenter, AreaOther}

// Equipment classes are numbered 1..MaxEquipmentClass.
const (
	MinEquipmentClass = 1
	MaxEquipmentClass = 9
)

// RowsPerWeek is the number of requirement rows in a fully generated week.
const RowsPerWeek = 2 * MaxEquipmentClass

// ParseArea parses an area code case-insensitively.
func ParseArea(s string) (Area, error) {
	switch Area(strings.ToUpper(strings.TrimSpace(s))) {
	case AreaCenter:
		return AreaCenter, nil
	case AreaOther:
		return AreaOther, nil
	}
	return "", eris.Errorf("model: unknown area %q", s)
}

// ExecutionRequirement is the required share (percent, as text) of
// fleet-kilometers served by one emission class in one area for one week.
type ExecutionRequirement struct {
	Area           Area   `json:"area"`
	EquipmentClass int    `json:"equipmentClass"`
	Week           int    `json:"week"`
	Year           int    `json:"year"`
	Requirement    string `json:"requirement"`
}

// Key is the uniqueness key of the row: week, area, class and year concatenated.
func (r ExecutionRequirement) Key() string {
	return strconv.Itoa(r.Week) + string(r.Area) + strconv.Itoa(r.EquipmentClass) + strconv.Itoa(r.Year)
}

// SameWeek reports whether both rows belong to the same (year, week).
func (r ExecutionRequirement) SameWeek(o ExecutionRequirement) bool {
	return r.Year == o.Year && r.Week == o.Week
}
