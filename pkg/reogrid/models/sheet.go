package models

// SheetData represents the recalculated content of a single sheet.
type SheetData struct {
	// Rows contains the rows with cell values and formulas.
	Rows []CellRow `json:"rows,omitempty"`
	// UsedRange is the range covering every non-empty cell, e.g. "A1:D10".
	UsedRange string `json:"used_range,omitempty"`
	// MergedRanges lists the merged cell ranges.
	MergedRanges []string `json:"merged_ranges,omitempty"`
	// PrintAreas contains user-defined print areas.
	PrintAreas []Area `json:"print_areas,omitempty"`
	// FormulaErrors lists formulas that failed to parse.
	FormulaErrors []FormulaError `json:"formula_errors,omitempty"`
}
