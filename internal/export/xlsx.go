package export

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/model"
)

// RequirementSheet is the sheet name used for requirement exports.
const RequirementSheet = "Requirements"

// Sheet is one named sheet of a workbook.
type Sheet[T any] struct {
	Name  string
	Items []T
}

// WriteXLSX writes items as a single sheet with a header row.
func WriteXLSX[T any](w io.Writer, sheetName string, table Table[T], items []T) error {
	return WriteWorkbook(w, table, []Sheet[T]{{Name: sheetName, Items: items}})
}

// WriteWorkbook writes one sheet per entry, each with the table's header row.
func WriteWorkbook[T any](w io.Writer, table Table[T], sheets []Sheet[T]) error {
	f := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := f.AddSheet(s.Name)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", s.Name)
		}
		writeRow(sheet, table.Headers())
		for _, item := range s.Items {
			writeRow(sheet, table.Row(item))
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

// ReadRequirementsXLSX parses a sheet written with RequirementTable back
// into rows. The header row is skipped; areas may be codes or localized names.
func ReadRequirementsXLSX(ctx context.Context, path string) ([]model.ExecutionRequirement, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("export: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if s, ok := f.Sheet[RequirementSheet]; ok {
		sheet = s
	}

	var rows []model.ExecutionRequirement
	for i, row := range sheet.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "export: context cancelled")
		}
		if i == 0 {
			continue
		}
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		r, err := parseRequirementRow(cells)
		if err != nil {
			return nil, eris.Wrapf(err, "export: row %d", i+1)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = strings.TrimSpace(c.String())
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// parseRequirementRow reads cells in RequirementTable order: year, week,
// area, equipment class, requirement.
func parseRequirementRow(cells []string) (model.ExecutionRequirement, error) {
	if len(cells) < 5 {
		return model.ExecutionRequirement{}, eris.Errorf("expected 5 columns, got %d", len(cells))
	}
	year, err := strconv.Atoi(cells[0])
	if err != nil {
		return model.ExecutionRequirement{}, eris.Wrapf(err, "year %q", cells[0])
	}
	week, err := strconv.Atoi(cells[1])
	if err != nil {
		return model.ExecutionRequirement{}, eris.Wrapf(err, "week %q", cells[1])
	}
	area, err := i18n.ParseArea(cells[2])
	if err != nil {
		return model.ExecutionRequirement{}, err
	}
	class, err := strconv.Atoi(cells[3])
	if err != nil {
		return model.ExecutionRequirement{}, eris.Wrapf(err, "equipment class %q", cells[3])
	}
	if class < model.MinEquipmentClass || class > model.MaxEquipmentClass {
		return model.ExecutionRequirement{}, eris.Errorf("equipment class %d out of range", class)
	}
	return model.ExecutionRequirement{
		Area:           area,
		EquipmentClass: class,
		Week:           week,
		Year:           year,
		Requirement:    cells[4],
	}, nil
}
