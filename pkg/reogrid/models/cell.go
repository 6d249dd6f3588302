// Package models defines the JSON result structures of a workbook
// recalculation.
package models

// CellRow represents a single row of cells with their formulas.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column index (string, 1-based) to cell value.
	C map[string]any `json:"c"`
	// Formulas maps column index to formula text without the leading "=".
	Formulas map[string]string `json:"formulas,omitempty"`
}

// FormulaError describes a formula that could not be parsed.
type FormulaError struct {
	// Cell is the A1 name of the cell.
	Cell string `json:"cell"`
	// Formula is the formula text.
	Formula string `json:"formula"`
	// Error is the parse error message.
	Error string `json:"error"`
}
