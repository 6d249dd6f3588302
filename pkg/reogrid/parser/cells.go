// Package parser reads workbook content from xlsx files.
package parser

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/models"
)

// ReadCells reads cell values and formulas from a sheet.
// It returns a slice of CellRow containing non-empty rows. Formula cells are
// included even when the file carries no cached value for them.
func ReadCells(f *excelize.File, sheetName string) ([]models.CellRow, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	var result []models.CellRow
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1 // 1-based row index
		cellMap := make(map[string]any)
		formulaMap := make(map[string]string)

		for colIdx, raw := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}
			text, err := f.GetCellFormula(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			text = strings.TrimPrefix(text, "=")
			if raw == "" && text == "" {
				continue
			}
			colStr := strconv.Itoa(colIdx + 1) // 1-based column index as string

			if text != "" {
				formulaMap[colStr] = text
			}
			if raw == "" {
				continue
			}
			typ, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			cellMap[colStr] = parseValue(raw, typ)
		}

		if len(cellMap) > 0 || len(formulaMap) > 0 {
			cellRow := models.CellRow{
				R: rowNum,
				C: cellMap,
			}
			if len(formulaMap) > 0 {
				cellRow.Formulas = formulaMap
			}
			result = append(result, cellRow)
		}
	}

	return result, nil
}

// ReadMergedRanges returns the merged cell ranges of a sheet.
func ReadMergedRanges(f *excelize.File, sheetName string) ([]address.Range, error) {
	cells, err := f.GetMergeCells(sheetName, true)
	if err != nil {
		return nil, err
	}
	ranges := make([]address.Range, 0, len(cells))
	for _, mc := range cells {
		r, err := address.ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// parseValue converts a raw cell value according to its stored type.
// Numbers become int64 when integral and float64 otherwise, booleans become
// bool and error cells become formula.ErrorValue.
func parseValue(s string, typ excelize.CellType) any {
	switch typ {
	case excelize.CellTypeBool:
		return s == "1" || s == "TRUE" || s == "true"
	case excelize.CellTypeError:
		if c := formula.FromString(s); c.Recognized {
			return c.Value
		}
		return s
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return s
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
