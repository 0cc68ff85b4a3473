// Package export renders typed row collections as text tables and XLSX sheets.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/model"
)

// Column projects one cell of a row of type T.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Table is an ordered set of columns over T.
type Table[T any] struct {
	Columns []Column[T]
}

// Headers returns the column headers in order.
func (t Table[T]) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// Row projects item into one cell per column.
func (t Table[T]) Row(item T) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Value(item)
	}
	return out
}

// WriteText writes items as a tab-aligned text table.
func (t Table[T]) WriteText(w io.Writer, items []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Headers(), "\t")))
	for _, item := range items {
		fmt.Fprintln(tw, strings.Join(t.Row(item), "\t"))
	}
	return tw.Flush()
}

// RequirementTable lists execution requirement rows with localized headers.
func RequirementTable(loc i18n.Localizer) Table[model.ExecutionRequirement] {
	return Table[model.ExecutionRequirement]{Columns: []Column[model.ExecutionRequirement]{
		{Header: loc.Header(i18n.HeaderYear), Value: func(r model.ExecutionRequirement) string { return strconv.Itoa(r.Year) }},
		{Header: loc.Header(i18n.HeaderWeek), Value: func(r model.ExecutionRequirement) string { return strconv.Itoa(r.Week) }},
		{Header: loc.Header(i18n.HeaderArea), Value: func(r model.ExecutionRequirement) string { return loc.Area(r.Area) }},
		{Header: loc.Header(i18n.HeaderEquipmentClass), Value: func(r model.ExecutionRequirement) string { return strconv.Itoa(r.EquipmentClass) }},
		{Header: loc.Header(i18n.HeaderRequirement), Value: func(r model.ExecutionRequirement) string { return r.Requirement }},
	}}
}

// RuleTable lists contract rules with localized headers.
func RuleTable(loc i18n.Localizer) Table[model.ContractRule] {
	return Table[model.ContractRule]{Columns: []Column[model.ContractRule]{
		{Header: loc.Header(i18n.HeaderCategory), Value: func(r model.ContractRule) string { return r.Category }},
		{Header: loc.Header(i18n.HeaderName), Value: func(r model.ContractRule) string { return r.Name }},
		{Header: loc.Header(i18n.HeaderCondition), Value: func(r model.ContractRule) string { return r.Condition }},
		{Header: loc.Header(i18n.HeaderValue), Value: func(r model.ContractRule) string { return r.Value }},
	}}
}
