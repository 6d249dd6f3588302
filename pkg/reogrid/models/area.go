package models

// Area represents cell coordinate bounds.
type Area struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// DefinedName is a workbook or sheet scoped name read from the file.
type DefinedName struct {
	// Name is the defined name as written in the workbook.
	Name string `json:"name"`
	// Scope is "Workbook" or the name of the owning sheet.
	Scope string `json:"scope"`
	// RefersTo is the raw reference text.
	RefersTo string `json:"refers_to"`
	// Sheet is the sheet the reference points to, when it is a single area.
	Sheet string `json:"sheet,omitempty"`
	// Areas holds the referenced rectangles. Empty when RefersTo is not a
	// plain reference (a constant or a formula).
	Areas []Area `json:"areas,omitempty"`
	// Builtin marks names reserved by the file format such as
	// _xlnm.Print_Area.
	Builtin bool `json:"builtin,omitempty"`
}

// PrintAreaView represents a slice of a sheet restricted to a print area.
type PrintAreaView struct {
	// BookName is the workbook name owning the area.
	BookName string `json:"book_name"`
	// SheetName is the sheet name owning the area.
	SheetName string `json:"sheet_name"`
	// Area is the print area bounds.
	Area Area `json:"area"`
	// Rows contains the cells within the area bounds.
	Rows []CellRow `json:"rows,omitempty"`
	// MergedRanges lists the merged ranges intersecting the area.
	MergedRanges []string `json:"merged_ranges,omitempty"`
	// FormulaErrors lists the unparsable formulas inside the area.
	FormulaErrors []FormulaError `json:"formula_errors,omitempty"`
}
