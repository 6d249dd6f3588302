package worksheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/recalc"
)

// DefinedName is a workbook-scoped name bound to a range on one sheet.
type DefinedName struct {
	Name  string
	Sheet string
	Range address.Range
}

// Workbook is an ordered set of worksheets plus workbook-scoped names.
type Workbook struct {
	sheets []*Worksheet
	names  map[string]DefinedName
}

// NewWorkbook creates a workbook with the given sheets.
func NewWorkbook(sheetNames ...string) (*Workbook, error) {
	wb := &Workbook{names: make(map[string]DefinedName)}
	for _, name := range sheetNames {
		if _, err := wb.AddSheet(name); err != nil {
			return nil, err
		}
	}
	return wb, nil
}

// AddSheet appends a sheet. Sheet names are unique regardless of case.
func (wb *Workbook) AddSheet(name string) (*Worksheet, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "[]:*?/\\") {
		return nil, fmt.Errorf("%w: sheet %q", ErrInvalidName, name)
	}
	if wb.Sheet(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSheet, name)
	}
	ws := newWorksheet(wb, name)
	wb.sheets = append(wb.sheets, ws)
	return ws, nil
}

// Sheet returns the sheet with the given name, compared case-insensitively,
// or nil.
func (wb *Workbook) Sheet(name string) *Worksheet {
	if wb == nil {
		return nil
	}
	for _, ws := range wb.sheets {
		if strings.EqualFold(ws.name, name) {
			return ws
		}
	}
	return nil
}

// Sheets returns the sheets in workbook order.
func (wb *Workbook) Sheets() []*Worksheet {
	if wb == nil {
		return nil
	}
	return append([]*Worksheet(nil), wb.sheets...)
}

// Worksheets implements recalc.Workbook. A nil workbook has no sheets.
func (wb *Workbook) Worksheets() []recalc.Worksheet {
	if wb == nil {
		return nil
	}
	out := make([]recalc.Worksheet, len(wb.sheets))
	for i, ws := range wb.sheets {
		out[i] = ws
	}
	return out
}

// Worksheet implements recalc.Workbook.
func (wb *Workbook) Worksheet(name string) recalc.Worksheet {
	// A nil *Worksheet must not escape as a non-nil interface.
	if ws := wb.Sheet(name); ws != nil {
		return ws
	}
	return nil
}

// DefineName adds a workbook-scoped name for r on sheet.
func (wb *Workbook) DefineName(name, sheet string, r address.Range) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	ws := wb.Sheet(sheet)
	if ws == nil {
		return fmt.Errorf("%w: unknown sheet %q", ErrInvalidName, sheet)
	}
	wb.names[strings.ToUpper(name)] = DefinedName{Name: name, Sheet: ws.name, Range: r.Normalize()}
	return nil
}

// Names returns the workbook-scoped names sorted by name.
func (wb *Workbook) Names() []DefinedName {
	if wb == nil {
		return nil
	}
	out := make([]DefinedName, 0, len(wb.names))
	for _, dn := range wb.names {
		out = append(out, dn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Recalculate recomputes every formula of the workbook. It is a no-op on a
// nil workbook.
func (wb *Workbook) Recalculate(opts ...recalc.Option) recalc.Result {
	if wb == nil {
		return recalc.Result{}
	}
	return recalc.Update(wb, opts...)
}

// validName reports whether name can be used as a defined name: it must
// lex as a plain identifier and not look like a cell reference.
func validName(name string) bool {
	return address.QuoteIdentifier(name) == name
}
