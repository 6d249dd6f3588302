package worksheet

import (
	"fmt"
	"strings"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
)

// Cell holds a value and, optionally, the formula that produces it.
type Cell struct {
	pos     address.Position
	value   any
	formula string

	tree     formula.Node
	parsed   bool
	parseErr error
}

// Row returns the zero-based row index.
func (c *Cell) Row() int { return c.pos.Row }

// Column returns the zero-based column index.
func (c *Cell) Column() int { return c.pos.Col }

// Position returns the cell coordinate.
func (c *Cell) Position() address.Position { return c.pos }

// Name returns the A1 name of the cell.
func (c *Cell) Name() string { return c.pos.String() }

// Value returns the current value: float64, string, bool,
// formula.ErrorValue or nil.
func (c *Cell) Value() any { return c.value }

// Formula returns the formula text without the leading "=".
func (c *Cell) Formula() string { return c.formula }

// HasFormula reports whether the cell is computed by a formula.
func (c *Cell) HasFormula() bool { return c.formula != "" }

// FormulaTree returns the parsed formula, building it on first use. A
// formula that fails to parse has no tree; its value becomes #NAME? and the
// error is kept in FormulaError.
func (c *Cell) FormulaTree() formula.Node {
	if !c.HasFormula() {
		return nil
	}
	if !c.parsed {
		c.parsed = true
		c.tree, c.parseErr = formula.Parse(c.formula)
		if c.parseErr != nil {
			c.value = formula.Name
		}
	}
	return c.tree
}

// FormulaError returns the parse error of the formula, if any.
func (c *Cell) FormulaError() error {
	c.FormulaTree()
	return c.parseErr
}

// IsEmpty reports whether the cell has neither value nor formula.
func (c *Cell) IsEmpty() bool {
	return c.value == nil && !c.HasFormula()
}

func (c *Cell) setValue(v any) {
	c.value = normalizeValue(v)
	c.formula = ""
	c.resetTree()
}

func (c *Cell) setFormula(text string) {
	c.formula = strings.TrimPrefix(strings.TrimSpace(text), "=")
	c.resetTree()
}

func (c *Cell) resetTree() {
	c.tree = nil
	c.parsed = false
	c.parseErr = nil
}

// normalizeValue maps Go values onto the evaluator's value set.
func normalizeValue(v any) any {
	switch v := v.(type) {
	case nil, float64, string, bool, formula.ErrorValue:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return fmt.Sprint(v)
	}
}
