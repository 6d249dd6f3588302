package models

// RecalcStats summarizes a recalculation pass.
type RecalcStats struct {
	Processed     int `json:"processed"`
	Failed        int `json:"failed"`
	DepthExceeded int `json:"depth_exceeded"`
	MaxDepth      int `json:"max_depth"`
}

// WorkbookData represents workbook-level container with per-sheet data.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// SheetOrder lists sheet names in workbook order.
	SheetOrder []string `json:"sheet_order"`
	// Sheets maps sheet name to SheetData.
	Sheets map[string]SheetData `json:"sheets"`
	// Names lists the defined names of the workbook.
	Names []DefinedName `json:"names,omitempty"`
	// Recalc holds the statistics of the pass that produced the values.
	Recalc *RecalcStats `json:"recalc,omitempty"`
}
