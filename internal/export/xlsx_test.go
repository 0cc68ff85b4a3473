package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/requirement"
)

func TestRequirementsXLSX_RoundTrip(t *testing.T) {
	rows := requirement.GenerateForWeek(2024, 7, []model.ExecutionRequirement{
		{Area: model.AreaOther, EquipmentClass: 2, Requirement: "12,5"},
	})

	path := filepath.Join(t.TempDir(), "req.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteXLSX(f, RequirementSheet, RequirementTable(i18n.Default()), rows))
	require.NoError(t, f.Close())

	got, err := ReadRequirementsXLSX(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func writeSheet(t *testing.T, data [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, cells := range data {
		writeRow(sheet, cells)
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadRequirementsXLSX_SkipsBlankRows(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"Year", "Week", "Area", "Class", "Req"},
		{"2024", "3", "CENTER", "1", "10"},
		{"", "", "", "", ""},
		{"2024", "3", "Övrigt", "9", "20"},
	})

	got, err := ReadRequirementsXLSX(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.AreaOther, got[1].Area)
	assert.Equal(t, "20", got[1].Requirement)
}

func TestReadRequirementsXLSX_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"short row", []string{"2024", "3"}, "expected 5 columns"},
		{"bad year", []string{"x", "3", "CENTER", "1", "10"}, "year"},
		{"bad area", []string{"2024", "3", "Suburb", "1", "10"}, "unknown area"},
		{"class out of range", []string{"2024", "3", "CENTER", "10", "10"}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSheet(t, [][]string{{"h"}, tt.row})
			_, err := ReadRequirementsXLSX(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadRequirementsXLSX_MissingFile(t *testing.T) {
	_, err := ReadRequirementsXLSX(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"))
	require.Error(t, err)
}

func TestWriteWorkbook_OneSheetPerEntry(t *testing.T) {
	table := RequirementTable(i18n.Default())
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWorkbook(f, table, []Sheet[model.ExecutionRequirement]{
		{Name: "2024-spring", Items: requirement.GenerateForWeek(2024, 10, nil)},
		{Name: "2024-autumn", Items: requirement.GenerateForWeek(2024, 40, nil)},
	}))
	require.NoError(t, f.Close())

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "2024-spring", wb.Sheets[0].Name)
	assert.Len(t, wb.Sheets[1].Rows, model.RowsPerWeek+1)
	assert.Equal(t, "Vuosi", wb.Sheets[1].Rows[0].Cells[0].String())
}
