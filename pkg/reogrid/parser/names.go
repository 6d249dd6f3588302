package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/models"
)

// PrintAreaName is the built-in defined name holding a sheet's print areas.
const PrintAreaName = "_xlnm.Print_Area"

// ReadDefinedNames reads the defined names of a workbook, both workbook and
// sheet scoped. References are resolved into areas where possible.
func ReadDefinedNames(f *excelize.File) []models.DefinedName {
	var names []models.DefinedName
	for _, dn := range f.GetDefinedName() {
		sheet, areas := parseAreaReference(dn.RefersTo)
		names = append(names, models.DefinedName{
			Name:     dn.Name,
			Scope:    dn.Scope,
			RefersTo: dn.RefersTo,
			Sheet:    sheet,
			Areas:    areas,
			Builtin:  strings.HasPrefix(strings.ToLower(dn.Name), "_xlnm."),
		})
	}
	return names
}

// ExtractPrintAreas extracts print areas from a workbook.
// Returns a map of sheet name to list of print areas.
func ExtractPrintAreas(f *excelize.File) map[string][]models.Area {
	result := make(map[string][]models.Area)
	for _, dn := range ReadDefinedNames(f) {
		if !strings.EqualFold(dn.Name, PrintAreaName) {
			continue
		}
		sheet := dn.Sheet
		if sheet == "" && dn.Scope != "Workbook" {
			sheet = dn.Scope
		}
		if sheet != "" && len(dn.Areas) > 0 {
			result[sheet] = append(result[sheet], dn.Areas...)
		}
	}
	return result
}

// parseAreaReference parses a reference string such as
// 'Sheet Name'!$A$1:$D$10,'Sheet Name'!$F$1:$F$4. The sheet of the first
// part is returned; parts that are not cell ranges are skipped.
func parseAreaReference(ref string) (string, []models.Area) {
	var areas []models.Area
	var sheetName string

	for _, part := range strings.Split(strings.TrimPrefix(ref, "="), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := address.ParseReference(part)
		if err != nil || parsed.Kind == address.NameRef {
			continue
		}
		if sheetName == "" {
			sheetName = parsed.Worksheet
		}
		areas = append(areas, rangeToArea(parsed.Range))
	}

	return sheetName, areas
}

// rangeToArea converts a zero-based range to 1-based bounds.
func rangeToArea(r address.Range) models.Area {
	return models.Area{
		R1: r.Start.Row + 1,
		C1: r.Start.Col + 1,
		R2: r.End.Row + 1,
		C2: r.End.Col + 1,
	}
}

// AreaToRange converts 1-based bounds to a zero-based range.
func AreaToRange(a models.Area) address.Range {
	return address.Range{
		Start: address.Position{Row: a.R1 - 1, Col: a.C1 - 1},
		End:   address.Position{Row: a.R2 - 1, Col: a.C2 - 1},
	}.Normalize()
}
