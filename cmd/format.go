package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/inspection-cli/internal/export"
	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/requirement"
	"github.com/sells-group/inspection-cli/internal/rules"
)

const dateLayout = "2006-01-02"

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, eris.Errorf("--%s: invalid date %q, want YYYY-MM-DD", name, value)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var contractTable = export.Table[model.Contract]{Columns: []export.Column[model.Contract]{
	{Header: "ID", Value: func(c model.Contract) string { return truncateID(c.ID) }},
	{Header: "Operator", Value: func(c model.Contract) string { return c.OperatorID }},
	{Header: "Unit", Value: func(c model.Contract) string { return c.ProcurementUnitID }},
	{Header: "Start", Value: func(c model.Contract) string { return formatDate(c.StartDate) }},
	{Header: "End", Value: func(c model.Contract) string { return formatDate(c.EndDate) }},
	{Header: "Rules", Value: func(c model.Contract) string { return fmt.Sprint(len(c.Rules)) }},
}}

var inspectionTable = export.Table[model.Inspection]{Columns: []export.Column[model.Inspection]{
	{Header: "ID", Value: func(i model.Inspection) string { return truncateID(i.ID) }},
	{Header: "Operator", Value: func(i model.Inspection) string { return i.OperatorID }},
	{Header: "Season", Value: func(i model.Inspection) string { return i.Season }},
	{Header: "Start", Value: func(i model.Inspection) string { return formatDate(i.StartDate) }},
	{Header: "End", Value: func(i model.Inspection) string { return formatDate(i.EndDate) }},
	{Header: "Max", Value: func(i model.Inspection) string { return formatDate(i.MaxDate) }},
}}

func formatContract(w io.Writer, c model.Contract, loc i18n.Localizer) error {
	fmt.Fprintf(w, "Contract %s\n", c.ID)
	fmt.Fprintf(w, "  Operator:  %s\n", c.OperatorID)
	fmt.Fprintf(w, "  Unit:      %s\n", c.ProcurementUnitID)
	fmt.Fprintf(w, "  Period:    %s .. %s\n", formatDate(c.StartDate), formatDate(c.EndDate))
	if c.Description != "" {
		fmt.Fprintf(w, "  About:     %s\n", c.Description)
	}
	fmt.Fprintln(w)
	if len(c.Rules) == 0 {
		fmt.Fprintln(w, "No rules.")
		return nil
	}
	return export.RuleTable(loc).WriteText(w, c.Rules)
}

func formatMergeReport(w io.Writer, report rules.MergeReport, loc i18n.Localizer) error {
	fmt.Fprintf(w, "%d rules, %d substituted, %d template rules not in contract\n",
		len(report.Rules), len(report.Substituted), len(report.Dropped))
	for _, key := range report.Substituted {
		fmt.Fprintf(w, "  updated  %s\n", key)
	}
	for _, d := range report.Dropped {
		fmt.Fprintf(w, "  skipped  %s\n", d.IdentityKey())
	}
	fmt.Fprintln(w)
	return export.RuleTable(loc).WriteText(w, report.Rules)
}

func formatState(w io.Writer, st requirement.State, loc i18n.Localizer) error {
	weeks := st.Weeks()
	fmt.Fprintf(w, "%d rows in %d weeks, generation allowed up to %d\n", len(st.Rows), len(weeks), st.MaxWeekKey())
	if len(st.Rows) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return export.RequirementTable(loc).WriteText(w, st.Rows)
}
