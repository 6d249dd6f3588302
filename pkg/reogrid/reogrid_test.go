package reogrid

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/models"
)

// writeFixture builds a two-sheet workbook whose formulas appear before
// their inputs in row-major order.
func writeFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("Data")
	require.NoError(t, err)

	require.NoError(t, f.SetCellFormula("Sheet1", "A1", "A2+1"))
	require.NoError(t, f.SetCellFormula("Sheet1", "A2", "A3*2"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", 5))
	require.NoError(t, f.SetCellFormula("Sheet1", "B1", "Data!A1+Rate"))
	require.NoError(t, f.SetCellFormula("Sheet1", "C1", "1/0"))
	require.NoError(t, f.SetCellFormula("Sheet1", "D1", "1+"))
	require.NoError(t, f.SetCellValue("Sheet1", "E1", "label"))
	require.NoError(t, f.MergeCell("Sheet1", "E1", "F2"))

	require.NoError(t, f.SetCellValue("Data", "A1", 100))
	require.NoError(t, f.SetCellValue("Data", "B1", 0.5))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{Name: "Rate", RefersTo: "Data!$B$1"}))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name: "_xlnm.Print_Area", RefersTo: "Sheet1!$A$1:$D$3", Scope: "Sheet1",
	}))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRecalculate(t *testing.T) {
	data, err := Recalculate(writeFixture(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "book.xlsx", data.BookName)
	assert.Equal(t, []string{"Sheet1", "Data"}, data.SheetOrder)

	sheet := data.Sheets["Sheet1"]
	require.Len(t, sheet.Rows, 3)
	row1 := sheet.Rows[0]
	assert.Equal(t, 1, row1.R)
	assert.Equal(t, 11.0, row1.C["1"])
	assert.Equal(t, 100.5, row1.C["2"])
	assert.Equal(t, formula.Div0, row1.C["3"])
	assert.Equal(t, formula.Name, row1.C["4"])
	assert.Equal(t, "label", row1.C["5"])
	assert.Equal(t, "A2+1", row1.Formulas["1"])
	assert.Equal(t, 10.0, sheet.Rows[1].C["1"])

	require.Len(t, sheet.FormulaErrors, 1)
	assert.Equal(t, "D1", sheet.FormulaErrors[0].Cell)
	assert.Equal(t, []string{"E1:F2"}, sheet.MergedRanges)
	assert.Equal(t, []models.Area{{R1: 1, C1: 1, R2: 3, C2: 4}}, sheet.PrintAreas)
	assert.Equal(t, "A1:E3", sheet.UsedRange)

	require.NotNil(t, data.Recalc)
	assert.Equal(t, 4, data.Recalc.Processed)
	assert.Equal(t, 50, data.Recalc.MaxDepth)
	assert.Len(t, data.Names, 2)
}

func TestRecalculateOptions(t *testing.T) {
	no := false
	var buf bytes.Buffer
	opts := Options{
		MaxDepth:          1,
		IncludeFormulas:   &no,
		IncludePrintAreas: &no,
		Logger:            slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	data, err := Recalculate(writeFixture(t), opts)
	require.NoError(t, err)

	sheet := data.Sheets["Sheet1"]
	assert.Nil(t, sheet.PrintAreas)
	for _, row := range sheet.Rows {
		assert.Nil(t, row.Formulas)
	}
	assert.Equal(t, 1, data.Recalc.MaxDepth)
	assert.Equal(t, 1, data.Recalc.DepthExceeded)
	assert.Contains(t, buf.String(), "defined name skipped")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"), DefaultOptions())
	assert.ErrorIs(t, err, ErrFileNotFound)

	bad := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err = Load(bad, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSaveWritesValuesAndKeepsFormulas(t *testing.T) {
	src := writeFixture(t)
	book, err := Load(src, DefaultOptions())
	require.NoError(t, err)
	book.Recalculate()

	dst := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Save(book.Workbook, src, dst))

	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		cell, value, formula string
	}{
		{"A1", "11", "A2+1"},
		{"A2", "10", "A3*2"},
		{"B1", "100.5", "Data!A1+Rate"},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue("Sheet1", tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.value, v, tt.cell)
		text, err := f.GetCellFormula("Sheet1", tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.formula, text, tt.cell)
	}

	reloaded, err := Load(dst, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 11.0, reloaded.Workbook.Sheet("Sheet1").Value("A1"))
}

func TestLoadError(t *testing.T) {
	err := NewLoadError("Sheet1", "cells", ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, `load error in sheet "Sheet1" (cells): invalid xlsx format`, err.Error())
	assert.Equal(t, "load error (names): invalid xlsx format", NewLoadError("", "names", ErrInvalidFormat).Error())
}
