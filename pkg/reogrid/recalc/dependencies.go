package recalc

import (
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
)

// Dependency is a cell a formula references directly.
type Dependency struct {
	Sheet Worksheet
	Cell  Cell
}

// Ref returns the identity of the dependency.
func (d Dependency) Ref() CellRef {
	return CellRef{Sheet: d.Sheet, Row: d.Cell.Row(), Col: d.Cell.Column()}
}

// Dependencies returns the existing cells tree references, in breadth-first
// order without duplicates. Sheet-qualified references are resolved through
// wb; references to unknown sheets or empty cells contribute nothing.
func Dependencies(wb Workbook, sheet Worksheet, tree formula.Node) []Dependency {
	var deps []Dependency
	seen := make(map[CellRef]struct{})
	add := func(ws Worksheet, cell Cell) {
		if ws == nil || cell == nil {
			return
		}
		d := Dependency{Sheet: ws, Cell: cell}
		if _, ok := seen[d.Ref()]; ok {
			return
		}
		seen[d.Ref()] = struct{}{}
		deps = append(deps, d)
	}

	queue := []formula.Node{tree}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		switch n := n.(type) {
		case *formula.CellNode:
			if ws := resolveSheet(wb, sheet, n.Sheet); ws != nil {
				add(ws, ws.CellOrNil(n.Pos.Row, n.Pos.Col))
			}
		case *formula.RangeNode:
			if ws := resolveSheet(wb, sheet, n.Sheet); ws != nil {
				ws.IterateCells(n.Range, true, func(_, _ int, cell Cell) bool {
					add(ws, cell)
					return true
				})
			}
		case *formula.NameNode:
			ws := resolveSheet(wb, sheet, n.Sheet)
			if ws == nil {
				break
			}
			if owner, rng, ok := ws.NamedRange(n.Name); ok && owner != nil {
				owner.IterateCells(rng, true, func(_, _ int, cell Cell) bool {
					add(owner, cell)
					return true
				})
			}
		case *formula.NumberNode, *formula.StringNode, *formula.BoolNode, *formula.ErrorNode,
			*formula.UnaryNode, *formula.PostfixNode, *formula.BinaryNode,
			*formula.FunctionNode, *formula.UnionNode:
			// No direct reference; children are still walked.
		case nil:
			continue
		}

		queue = append(queue, formula.Children(n)...)
	}
	return deps
}

func resolveSheet(wb Workbook, current Worksheet, name string) Worksheet {
	if name == "" {
		return current
	}
	if wb == nil {
		return nil
	}
	return wb.Worksheet(name)
}
