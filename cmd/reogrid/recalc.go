package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/models"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/output"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/recalc"
)

type recalcFlags struct {
	outputPath  string
	writePath   string
	sheetsDir   string
	areasDir    string
	maxDepth    int
	noFormulas  bool
	noPrintArea bool
}

func newRecalcCmd(g *globalFlags) *cobra.Command {
	f := &recalcFlags{}
	cmd := &cobra.Command{
		Use:   "recalc [input.xlsx]",
		Short: "Recalculate every formula of a workbook and print the values as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecalc(cmd, g, f, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&f.writePath, "write", "", "Write a copy of the workbook with computed values to this path")
	cmd.Flags().StringVar(&f.sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().StringVar(&f.areasDir, "print-areas-dir", "", "Directory for per-print-area output files")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", recalc.DefaultMaxDepth, "Recursion ceiling for dependency recalculation")
	cmd.Flags().BoolVar(&f.noFormulas, "no-formulas", false, "Omit formula texts from the output")
	cmd.Flags().BoolVar(&f.noPrintArea, "no-print-areas", false, "Omit print areas from the output")
	return cmd
}

func runRecalc(cmd *cobra.Command, g *globalFlags, f *recalcFlags, inputPath string) error {
	if f.maxDepth < 1 {
		return fmt.Errorf("invalid max depth: %d (must be at least 1)", f.maxDepth)
	}
	includeFormulas := !f.noFormulas
	includePrintAreas := !f.noPrintArea

	opts := reogrid.DefaultOptions()
	opts.MaxDepth = f.maxDepth
	opts.IncludeFormulas = &includeFormulas
	opts.IncludePrintAreas = &includePrintAreas
	opts.Logger = g.logger(cmd.ErrOrStderr())

	book, err := reogrid.Load(inputPath, opts)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	res := book.Recalculate()
	opts.Logger.Info("workbook recalculated",
		"file", book.Name,
		"processed", res.Processed,
		"failed", res.Failed,
		"depth_exceeded", res.DepthExceeded)

	wb := book.Data()
	jsonData, err := output.WorkbookToJSON(wb, g.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if f.outputPath != "" {
		if err := os.WriteFile(f.outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if f.sheetsDir == "" && f.areasDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	}

	if f.sheetsDir != "" {
		if err := writeSheetFiles(wb, f.sheetsDir, g.pretty); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	if f.areasDir != "" {
		if !includePrintAreas {
			return fmt.Errorf("--print-areas-dir cannot be combined with --no-print-areas")
		}
		if err := writePrintAreaFiles(wb, f.areasDir, g.pretty); err != nil {
			return fmt.Errorf("failed to write print area files: %w", err)
		}
	}

	if f.writePath != "" {
		if err := reogrid.Save(book.Workbook, inputPath, f.writePath); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	return nil
}

func writeSheetFiles(wb *models.WorkbookData, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheetName := range wb.SheetOrder {
		sheet := wb.Sheets[sheetName]
		jsonData, err := output.SheetToJSON(&sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheetName+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

func writePrintAreaFiles(wb *models.WorkbookData, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheetName := range wb.SheetOrder {
		sheet := wb.Sheets[sheetName]
		for i, area := range sheet.PrintAreas {
			view := createPrintAreaView(wb.BookName, sheetName, sheet, area)
			jsonData, err := output.PrintAreaViewToJSON(&view, pretty)
			if err != nil {
				return err
			}

			filename := filepath.Join(dir, fmt.Sprintf("%s_area%d.json", sheetName, i+1))
			if err := os.WriteFile(filename, jsonData, 0644); err != nil {
				return err
			}
		}
	}

	return nil
}

func createPrintAreaView(bookName, sheetName string, sheet models.SheetData, area models.Area) models.PrintAreaView {
	view := models.PrintAreaView{
		BookName:  bookName,
		SheetName: sheetName,
		Area:      area,
	}

	// Keep the rows and columns within the area
	for _, row := range sheet.Rows {
		if row.R < area.R1 || row.R > area.R2 {
			continue
		}
		if clipped, ok := clipRow(row, area); ok {
			view.Rows = append(view.Rows, clipped)
		}
	}

	bounds := address.Range{
		Start: address.Position{Row: area.R1 - 1, Col: area.C1 - 1},
		End:   address.Position{Row: area.R2 - 1, Col: area.C2 - 1},
	}
	for _, text := range sheet.MergedRanges {
		r, err := address.ParseRange(text)
		if err != nil {
			continue
		}
		if _, ok := r.Intersect(bounds); ok {
			view.MergedRanges = append(view.MergedRanges, text)
		}
	}
	for _, fe := range sheet.FormulaErrors {
		pos, err := address.ParseCellName(fe.Cell)
		if err == nil && bounds.Contains(pos) {
			view.FormulaErrors = append(view.FormulaErrors, fe)
		}
	}

	return view
}

// clipRow drops the cells of row outside the area columns. It reports false
// when nothing is left.
func clipRow(row models.CellRow, area models.Area) (models.CellRow, bool) {
	out := models.CellRow{R: row.R, C: make(map[string]any)}
	for key, v := range row.C {
		if inColumns(key, area) {
			out.C[key] = v
		}
	}
	for key, text := range row.Formulas {
		if !inColumns(key, area) {
			continue
		}
		if out.Formulas == nil {
			out.Formulas = make(map[string]string)
		}
		out.Formulas[key] = text
	}
	return out, len(out.C) > 0 || len(out.Formulas) > 0
}

func inColumns(key string, area models.Area) bool {
	col, err := strconv.Atoi(key)
	return err == nil && col >= area.C1 && col <= area.C2
}
