package reogrid

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/models"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/parser"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/recalc"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/worksheet"
)

const workbookScope = "Workbook"

// Book is a workbook loaded from a file, together with the file metadata the
// in-memory model does not carry.
type Book struct {
	// Name is the file name (no path).
	Name string
	// Workbook is the in-memory model.
	Workbook *worksheet.Workbook
	// Names lists every defined name found in the file.
	Names []models.DefinedName
	// PrintAreas maps sheet name to its print areas.
	PrintAreas map[string][]models.Area
	// Stats holds the result of the last Recalculate call.
	Stats *recalc.Result

	opts Options
}

// Load reads an xlsx file into an in-memory workbook.
func Load(path string, opts Options) (*Book, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb, err := worksheet.NewWorkbook()
	if err != nil {
		return nil, err
	}
	log := opts.logger()

	for _, sheetName := range f.GetSheetList() {
		ws, err := wb.AddSheet(sheetName)
		if err != nil {
			return nil, NewLoadError(sheetName, "cells", err)
		}
		rows, err := parser.ReadCells(f, sheetName)
		if err != nil {
			return nil, NewLoadError(sheetName, "cells", err)
		}
		if err := fillSheet(ws, rows); err != nil {
			return nil, NewLoadError(sheetName, "cells", err)
		}

		merged, err := parser.ReadMergedRanges(f, sheetName)
		if err != nil {
			return nil, NewLoadError(sheetName, "merged_ranges", err)
		}
		for _, r := range merged {
			ws.Merge(r)
		}
	}

	names := parser.ReadDefinedNames(f)
	for _, dn := range names {
		if err := defineName(wb, dn); err != nil {
			log.Debug("defined name skipped", "name", dn.Name, "scope", dn.Scope, "error", err)
		}
	}

	book := &Book{
		Name:     filepath.Base(path),
		Workbook: wb,
		Names:    names,
		opts:     opts,
	}
	if opts.ShouldIncludePrintAreas() {
		book.PrintAreas = parser.ExtractPrintAreas(f)
	}
	return book, nil
}

func open(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return f, nil
}

// fillSheet stores rows in ws. Cached values are kept for formula cells
// until the next recalculation.
func fillSheet(ws *worksheet.Worksheet, rows []models.CellRow) error {
	for _, row := range rows {
		for col, v := range row.C {
			name, err := cellName(row.R, col)
			if err != nil {
				return err
			}
			if err := ws.SetValue(name, v); err != nil {
				return err
			}
		}
		for col, text := range row.Formulas {
			name, err := cellName(row.R, col)
			if err != nil {
				return err
			}
			if err := ws.SetFormula(name, text); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellName(row int, col string) (string, error) {
	c, err := strconv.Atoi(col)
	if err != nil {
		return "", err
	}
	return excelize.CoordinatesToCellName(c, row)
}

// defineName binds a file name to the model. Built-in names, names that do
// not refer to a single area, and sheet-scoped names pointing at another
// sheet are not bound.
func defineName(wb *worksheet.Workbook, dn models.DefinedName) error {
	if dn.Builtin {
		return errors.New("built-in name")
	}
	if len(dn.Areas) != 1 {
		return fmt.Errorf("%w: %q is not a single area", address.ErrInvalidReference, dn.RefersTo)
	}
	r := parser.AreaToRange(dn.Areas[0])

	if dn.Scope == "" || dn.Scope == workbookScope {
		if dn.Sheet == "" {
			return fmt.Errorf("%w: %q has no sheet", address.ErrInvalidReference, dn.RefersTo)
		}
		return wb.DefineName(dn.Name, dn.Sheet, r)
	}

	ws := wb.Sheet(dn.Scope)
	if ws == nil {
		return fmt.Errorf("unknown scope %q", dn.Scope)
	}
	if dn.Sheet != "" && wb.Sheet(dn.Sheet) != ws {
		return fmt.Errorf("%q refers to another sheet", dn.Name)
	}
	return ws.DefineName(dn.Name, r)
}

// Recalculate recomputes every formula of the book and records the result.
func (b *Book) Recalculate() recalc.Result {
	res := b.Workbook.Recalculate(b.opts.recalcOptions()...)
	b.Stats = &res
	return res
}

// Data builds the JSON result of the book.
func (b *Book) Data() *models.WorkbookData {
	data := &models.WorkbookData{
		BookName: b.Name,
		Sheets:   make(map[string]models.SheetData),
		Names:    b.Names,
	}
	for _, ws := range b.Workbook.Sheets() {
		data.SheetOrder = append(data.SheetOrder, ws.Name())
		data.Sheets[ws.Name()] = b.sheetData(ws)
	}
	if b.Stats != nil {
		data.Recalc = &models.RecalcStats{
			Processed:     b.Stats.Processed,
			Failed:        b.Stats.Failed,
			DepthExceeded: b.Stats.DepthExceeded,
			MaxDepth:      b.opts.maxDepth(),
		}
	}
	return data
}

func (b *Book) sheetData(ws *worksheet.Worksheet) models.SheetData {
	var sd models.SheetData
	byRow := make(map[int]*models.CellRow)
	var order []int

	for _, c := range ws.Cells() {
		parseErr := c.FormulaError()
		r := c.Row() + 1
		row, ok := byRow[r]
		if !ok {
			row = &models.CellRow{R: r, C: make(map[string]any)}
			byRow[r] = row
			order = append(order, r)
		}
		col := strconv.Itoa(c.Column() + 1)
		if v := c.Value(); v != nil {
			row.C[col] = v
		}
		if c.HasFormula() && b.opts.ShouldIncludeFormulas() {
			if row.Formulas == nil {
				row.Formulas = make(map[string]string)
			}
			row.Formulas[col] = c.Formula()
		}
		if parseErr != nil {
			sd.FormulaErrors = append(sd.FormulaErrors, models.FormulaError{
				Cell:    c.Name(),
				Formula: c.Formula(),
				Error:   parseErr.Error(),
			})
		}
	}

	for _, r := range order {
		sd.Rows = append(sd.Rows, *byRow[r])
	}
	if len(sd.Rows) > 0 {
		sd.UsedRange = ws.UsedRange().String()
	}
	for _, r := range ws.MergedRanges() {
		sd.MergedRanges = append(sd.MergedRanges, r.String())
	}
	sd.PrintAreas = b.PrintAreas[ws.Name()]
	return sd
}

// Recalculate loads an xlsx file, recomputes its formulas and returns the
// resulting values.
func Recalculate(path string, opts Options) (*models.WorkbookData, error) {
	book, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	book.Recalculate()
	return book.Data(), nil
}

// Save copies src to dst with the computed value of every formula cell of wb
// stored alongside its formula.
func Save(wb *worksheet.Workbook, src, dst string) error {
	f, err := open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, ws := range wb.Sheets() {
		if idx, err := f.GetSheetIndex(ws.Name()); err != nil || idx < 0 {
			return fmt.Errorf("sheet %q not found in %s", ws.Name(), src)
		}
		for _, c := range ws.Cells() {
			if !c.HasFormula() {
				continue
			}
			if err := writeFormulaCell(f, ws.Name(), c); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", ws.Name(), c.Name(), err)
			}
		}
	}
	return f.SaveAs(dst)
}

// writeFormulaCell stores the value first, as setting a value drops the
// formula of the cell.
func writeFormulaCell(f *excelize.File, sheet string, c *worksheet.Cell) error {
	var v any
	switch val := c.Value().(type) {
	case formula.ErrorValue:
		v = val.String()
	default:
		v = val
	}
	if err := f.SetCellValue(sheet, c.Name(), v); err != nil {
		return err
	}
	return f.SetCellFormula(sheet, c.Name(), c.Formula())
}
