// Package address implements the A1 and R1C1 reference grammars on top of
// the rule-based lexer and extracts the cell references a formula mentions.
package address

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet limits, as zero-based exclusive bounds.
const (
	MaxRows    = excelize.TotalRows
	MaxColumns = excelize.MaxColumns
)

// Position is a zero-based cell coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether the position lies inside the sheet limits.
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < MaxRows && p.Col >= 0 && p.Col < MaxColumns
}

func (p Position) String() string {
	name, err := CellName(p)
	if err != nil {
		return fmt.Sprintf("R%dC%d", p.Row+1, p.Col+1)
	}
	return name
}

// Range is an inclusive rectangle of cells.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// CellRange returns the range covering a single cell.
func CellRange(p Position) Range {
	return Range{Start: p, End: p}
}

// Normalize returns the range with Start at the top-left corner.
func (r Range) Normalize() Range {
	if r.Start.Row > r.End.Row {
		r.Start.Row, r.End.Row = r.End.Row, r.Start.Row
	}
	if r.Start.Col > r.End.Col {
		r.Start.Col, r.End.Col = r.End.Col, r.Start.Col
	}
	return r
}

// Rows returns the number of rows the range spans.
func (r Range) Rows() int {
	n := r.Normalize()
	return n.End.Row - n.Start.Row + 1
}

// Cols returns the number of columns the range spans.
func (r Range) Cols() int {
	n := r.Normalize()
	return n.End.Col - n.Start.Col + 1
}

// Contains reports whether p lies inside the range.
func (r Range) Contains(p Position) bool {
	n := r.Normalize()
	return p.Row >= n.Start.Row && p.Row <= n.End.Row &&
		p.Col >= n.Start.Col && p.Col <= n.End.Col
}

// Intersect returns the overlap of two ranges and whether they overlap.
func (r Range) Intersect(o Range) (Range, bool) {
	a, b := r.Normalize(), o.Normalize()
	out := Range{
		Start: Position{Row: max(a.Start.Row, b.Start.Row), Col: max(a.Start.Col, b.Start.Col)},
		End:   Position{Row: min(a.End.Row, b.End.Row), Col: min(a.End.Col, b.End.Col)},
	}
	if out.Start.Row > out.End.Row || out.Start.Col > out.End.Col {
		return Range{}, false
	}
	return out, true
}

func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// CellName converts a position to its A1 name (e.g. {0,0} -> "A1").
func CellName(p Position) (string, error) {
	return excelize.CoordinatesToCellName(p.Col+1, p.Row+1)
}

// ParseCellName converts an A1 name, with or without "$" markers, to a position.
func ParseCellName(name string) (Position, error) {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(name, "$", ""))
	if err != nil {
		return Position{}, err
	}
	return Position{Row: row - 1, Col: col - 1}, nil
}

// ParseRange converts "A1:B2", "A:B" or "1:2" to a range. A single cell name
// yields a one-cell range.
func ParseRange(text string) (Range, error) {
	left, right, found := strings.Cut(text, ":")
	if !found {
		p, err := ParseCellName(left)
		if err != nil {
			return Range{}, err
		}
		return CellRange(p), nil
	}

	left = strings.ReplaceAll(left, "$", "")
	right = strings.ReplaceAll(right, "$", "")

	switch {
	case isLetters(left) && isLetters(right):
		c1, err := excelize.ColumnNameToNumber(left)
		if err != nil {
			return Range{}, err
		}
		c2, err := excelize.ColumnNameToNumber(right)
		if err != nil {
			return Range{}, err
		}
		return Range{
			Start: Position{Row: 0, Col: c1 - 1},
			End:   Position{Row: MaxRows - 1, Col: c2 - 1},
		}.Normalize(), nil
	case isDigits(left) && isDigits(right):
		r1, err := parseRowNumber(left)
		if err != nil {
			return Range{}, err
		}
		r2, err := parseRowNumber(right)
		if err != nil {
			return Range{}, err
		}
		return Range{
			Start: Position{Row: r1 - 1, Col: 0},
			End:   Position{Row: r2 - 1, Col: MaxColumns - 1},
		}.Normalize(), nil
	}

	start, err := ParseCellName(left)
	if err != nil {
		return Range{}, err
	}
	end, err := ParseCellName(right)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}.Normalize(), nil
}

func parseRowNumber(s string) (int, error) {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
		if n > MaxRows {
			return 0, fmt.Errorf("row number exceeds maximum limit: %s", s)
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid row number: %s", s)
	}
	return n, nil
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
