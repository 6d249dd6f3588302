// Package worksheet is an in-memory workbook model: sheets of sparse cells,
// defined names and merged ranges. It supplies cell access to the
// recalculation engine and cell values to the formula evaluator.
package worksheet

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/recalc"
)

// Sentinel errors for workbook construction.
var (
	ErrDuplicateSheet = errors.New("worksheet already exists")
	ErrInvalidName    = errors.New("invalid name")
	ErrForeignCell    = errors.New("cell does not belong to this worksheet")
)

// Worksheet is one sheet of a Workbook.
type Worksheet struct {
	name   string
	book   *Workbook
	cells  map[address.Position]*Cell
	names  map[string]address.Range
	merged []address.Range
	// order lists every cell in row-major order; nil after a cell is added.
	order []*Cell
}

func newWorksheet(book *Workbook, name string) *Worksheet {
	return &Worksheet{
		name:  name,
		book:  book,
		cells: make(map[address.Position]*Cell),
		names: make(map[string]address.Range),
	}
}

// Name returns the sheet name.
func (ws *Worksheet) Name() string { return ws.name }

// Workbook returns the owning workbook.
func (ws *Worksheet) Workbook() *Workbook { return ws.book }

// Cell returns the cell at pos, creating it if needed.
func (ws *Worksheet) Cell(pos address.Position) *Cell {
	if c, ok := ws.cells[pos]; ok {
		return c
	}
	c := &Cell{pos: pos}
	ws.cells[pos] = c
	ws.order = nil
	return c
}

// Lookup returns the cell with the given A1 name, or nil if it does not exist.
func (ws *Worksheet) Lookup(name string) *Cell {
	pos, err := address.ParseCellName(name)
	if err != nil {
		return nil
	}
	return ws.cells[pos]
}

// SetValue stores a constant in the named cell, replacing any formula.
func (ws *Worksheet) SetValue(name string, v any) error {
	pos, err := address.ParseCellName(name)
	if err != nil {
		return err
	}
	ws.Cell(pos).setValue(v)
	return nil
}

// SetFormula stores a formula in the named cell. The formula is parsed
// lazily; its value is computed by Recalculate.
func (ws *Worksheet) SetFormula(name, text string) error {
	pos, err := address.ParseCellName(name)
	if err != nil {
		return err
	}
	ws.Cell(pos).setFormula(text)
	return nil
}

// Value returns the value of the named cell, or nil.
func (ws *Worksheet) Value(name string) any {
	if c := ws.Lookup(name); c != nil {
		return c.Value()
	}
	return nil
}

// Cells returns the non-empty cells in row-major order.
func (ws *Worksheet) Cells() []*Cell {
	out := make([]*Cell, 0, len(ws.cells))
	for _, c := range ws.sorted() {
		if !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

// sorted returns the row-major cell index, rebuilding it after cells were
// added.
func (ws *Worksheet) sorted() []*Cell {
	if ws.order != nil {
		return ws.order
	}
	order := make([]*Cell, 0, len(ws.cells))
	for _, c := range ws.cells {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i].pos, order[j].pos
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	ws.order = order
	return order
}

// Merge records r as a merged range.
func (ws *Worksheet) Merge(r address.Range) {
	ws.merged = append(ws.merged, r.Normalize())
}

// MergedRanges returns the merged ranges of the sheet.
func (ws *Worksheet) MergedRanges() []address.Range {
	return append([]address.Range(nil), ws.merged...)
}

// hiddenByMerge reports whether pos lies inside a merged range without
// being its top-left cell.
func (ws *Worksheet) hiddenByMerge(pos address.Position) bool {
	for _, r := range ws.merged {
		if r.Contains(pos) && pos != r.Start {
			return true
		}
	}
	return false
}

// DefineName adds a name scoped to this sheet.
func (ws *Worksheet) DefineName(name string, r address.Range) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	ws.names[strings.ToUpper(name)] = r.Normalize()
	return nil
}

// UsedRange returns the smallest range containing every non-empty cell. An
// empty sheet yields the range A1:A1.
func (ws *Worksheet) UsedRange() address.Range {
	first := true
	var r address.Range
	for pos, c := range ws.cells {
		if c.IsEmpty() {
			continue
		}
		if first {
			r = address.CellRange(pos)
			first = false
			continue
		}
		r.Start.Row = min(r.Start.Row, pos.Row)
		r.Start.Col = min(r.Start.Col, pos.Col)
		r.End.Row = max(r.End.Row, pos.Row)
		r.End.Col = max(r.End.Col, pos.Col)
	}
	return r
}

// IterateCells visits the existing cells of r in row-major order. Unless
// recurseMerged is set, cells covered by a merged range other than its
// top-left cell are skipped.
func (ws *Worksheet) IterateCells(r address.Range, recurseMerged bool, fn func(row, col int, c recalc.Cell) bool) bool {
	r = r.Normalize()
	cells := ws.sorted()
	i := sort.Search(len(cells), func(i int) bool { return cells[i].pos.Row >= r.Start.Row })
	for ; i < len(cells) && cells[i].pos.Row <= r.End.Row; i++ {
		c := cells[i]
		if c.pos.Col < r.Start.Col || c.pos.Col > r.End.Col || c.IsEmpty() {
			continue
		}
		if !recurseMerged && ws.hiddenByMerge(c.pos) {
			continue
		}
		if !fn(c.pos.Row, c.pos.Col, c) {
			return false
		}
	}
	return true
}

// CellOrNil returns the cell at row, col, or nil if there is none.
func (ws *Worksheet) CellOrNil(row, col int) recalc.Cell {
	c, ok := ws.cells[address.Position{Row: row, Col: col}]
	if !ok || c.IsEmpty() {
		return nil
	}
	return c
}

// NamedRange resolves name, looking at sheet-scoped names first and then at
// workbook names.
func (ws *Worksheet) NamedRange(name string) (recalc.Worksheet, address.Range, bool) {
	owner, r, ok := ws.resolveName(name)
	if !ok {
		return nil, address.Range{}, false
	}
	return owner, r, true
}

func (ws *Worksheet) resolveName(name string) (*Worksheet, address.Range, bool) {
	key := strings.ToUpper(name)
	if r, ok := ws.names[key]; ok {
		return ws, r, true
	}
	if ws.book == nil {
		return nil, address.Range{}, false
	}
	dn, ok := ws.book.names[key]
	if !ok {
		return nil, address.Range{}, false
	}
	owner := ws.book.Sheet(dn.Sheet)
	if owner == nil {
		return nil, address.Range{}, false
	}
	return owner, dn.Range, true
}

// RecalcCell evaluates the formula of c and stores the result.
func (ws *Worksheet) RecalcCell(c recalc.Cell) error {
	cell, ok := c.(*Cell)
	if !ok || ws.cells[cell.pos] != cell {
		return ErrForeignCell
	}
	tree := cell.FormulaTree()
	if tree == nil {
		return cell.parseErr
	}
	cell.value = formula.Evaluate(tree, evalContext{sheet: ws})
	return nil
}

// evalContext reads values for a formula that lives on sheet.
type evalContext struct {
	sheet *Worksheet
}

func (e evalContext) target(name string) *Worksheet {
	if name == "" || strings.EqualFold(name, e.sheet.name) {
		return e.sheet
	}
	if e.sheet.book == nil {
		return nil
	}
	return e.sheet.book.Sheet(name)
}

func (e evalContext) CellValue(sheet string, pos address.Position) any {
	ws := e.target(sheet)
	if ws == nil {
		return formula.Ref
	}
	if c, ok := ws.cells[pos]; ok {
		return c.value
	}
	return nil
}

func (e evalContext) RangeValues(sheet string, r address.Range) []any {
	ws := e.target(sheet)
	if ws == nil {
		return []any{formula.Ref}
	}
	var out []any
	ws.IterateCells(r, true, func(_, _ int, c recalc.Cell) bool {
		if v := c.(*Cell).value; v != nil {
			out = append(out, v)
		}
		return true
	})
	return out
}

func (e evalContext) ResolveName(sheet, name string) (string, address.Range, bool) {
	ws := e.target(sheet)
	if ws == nil {
		return "", address.Range{}, false
	}
	owner, r, ok := ws.resolveName(name)
	if !ok {
		return "", address.Range{}, false
	}
	return owner.name, r, true
}
