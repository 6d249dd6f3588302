// Package recalc recalculates every formula cell of a workbook so that each
// cell is computed after the cells its formula references.
package recalc

import (
	"fmt"
	"log/slog"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
)

// DefaultMaxDepth is the recursion ceiling for dependency recalculation.
const DefaultMaxDepth = 50

// Workbook is the collection of worksheets a pass walks.
type Workbook interface {
	Worksheets() []Worksheet
	// Worksheet returns the sheet with the given name, or nil.
	Worksheet(name string) Worksheet
}

// Worksheet gives the engine indexed access to cells.
type Worksheet interface {
	Name() string
	UsedRange() address.Range
	// IterateCells calls fn for every existing cell in r until fn returns
	// false. It reports whether the iteration ran to completion.
	IterateCells(r address.Range, recurseMerged bool, fn func(row, col int, c Cell) bool) bool
	// CellOrNil returns the cell at row, col, or nil.
	CellOrNil(row, col int) Cell
	// NamedRange resolves a defined name visible from this sheet and returns
	// the sheet the range lives on.
	NamedRange(name string) (Worksheet, address.Range, bool)
	// RecalcCell evaluates one cell's formula against current values.
	RecalcCell(c Cell) error
}

// Cell is a worksheet cell as seen by the engine.
type Cell interface {
	Row() int
	Column() int
	HasFormula() bool
	// FormulaTree returns the parsed formula, or nil when there is none.
	FormulaTree() formula.Node
}

// CellRef identifies a cell within a pass.
type CellRef struct {
	Sheet Worksheet
	Row   int
	Col   int
}

func (r CellRef) String() string {
	name := ""
	if r.Sheet != nil {
		name = r.Sheet.Name()
	}
	return fmt.Sprintf("%s!%s", name, address.Position{Row: r.Row, Col: r.Col})
}

// Result summarizes one pass.
type Result struct {
	// Processed counts distinct formula cells recalculated.
	Processed int `json:"processed"`
	// Failed counts RecalcCell calls that returned an error or panicked.
	Failed int `json:"failed"`
	// DepthExceeded counts cells whose dependencies were skipped because the
	// recursion ceiling was reached.
	DepthExceeded int `json:"depth_exceeded"`
}

// Option configures a pass.
type Option func(*Context)

// WithMaxDepth sets the recursion ceiling. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithLogger sets the logger for skipped and failed cells.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Context is the state of one recalculation pass: the cells already
// processed and the current recursion depth.
type Context struct {
	workbook  Workbook
	processed map[CellRef]struct{}
	depth     int
	maxDepth  int
	logger    *slog.Logger
	result    Result
}

// NewContext creates the state for a pass over wb.
func NewContext(wb Workbook, opts ...Option) *Context {
	c := &Context{
		workbook:  wb,
		processed: make(map[CellRef]struct{}),
		maxDepth:  DefaultMaxDepth,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result returns the statistics gathered so far.
func (c *Context) Result() Result {
	return c.result
}

// Depth returns the current recursion depth.
func (c *Context) Depth() int {
	return c.depth
}

// Update recalculates every formula cell of wb. A nil workbook, or one
// without worksheets, is a no-op.
func Update(wb Workbook, opts ...Option) Result {
	if wb == nil {
		return Result{}
	}
	c := NewContext(wb, opts...)
	for _, sheet := range wb.Worksheets() {
		if sheet == nil {
			continue
		}
		sheet.IterateCells(sheet.UsedRange(), true, func(_, _ int, cell Cell) bool {
			c.UpdateCellFormula(sheet, cell)
			return true
		})
	}
	c.logger.Debug("recalculation finished",
		"processed", c.result.Processed,
		"failed", c.result.Failed,
		"depth_exceeded", c.result.DepthExceeded)
	return c.result
}

// UpdateCellFormula recalculates the cells cell depends on, then cell itself.
// Cells without a formula and cells already processed are skipped. Beyond
// the recursion ceiling the dependencies are left as they are and only cell
// is recalculated.
func (c *Context) UpdateCellFormula(sheet Worksheet, cell Cell) {
	c.depth++
	defer func() { c.depth-- }()

	if cell == nil || !cell.HasFormula() {
		return
	}
	tree := cell.FormulaTree()
	if tree == nil {
		return
	}
	ref := CellRef{Sheet: sheet, Row: cell.Row(), Col: cell.Column()}
	if c.isProcessed(ref) {
		return
	}

	if c.depth <= c.maxDepth {
		for _, dep := range Dependencies(c.workbook, sheet, tree) {
			if !c.isProcessed(dep.Ref()) {
				c.UpdateCellFormula(dep.Sheet, dep.Cell)
			}
		}
	} else {
		c.result.DepthExceeded++
		c.logger.Debug("recursion ceiling reached, dependencies not updated",
			"cell", ref.String(), "depth", c.depth)
	}

	c.recalc(sheet, cell, ref)
}

func (c *Context) recalc(sheet Worksheet, cell Cell, ref CellRef) {
	defer func() {
		if r := recover(); r != nil {
			c.result.Failed++
			c.logger.Warn("cell recalculation panicked", "cell", ref.String(), "panic", r)
		}
		c.markProcessed(ref)
	}()

	if err := sheet.RecalcCell(cell); err != nil {
		c.result.Failed++
		c.logger.Warn("cell recalculation failed", "cell", ref.String(), "error", err)
	}
}

func (c *Context) isProcessed(ref CellRef) bool {
	_, ok := c.processed[ref]
	return ok
}

func (c *Context) markProcessed(ref CellRef) {
	if c.isProcessed(ref) {
		return
	}
	c.processed[ref] = struct{}{}
	c.result.Processed++
}
