package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/lexer"
)

type mapContext struct {
	cells map[string]map[address.Position]any
	names map[string]address.Range
}

func newMapContext() *mapContext {
	return &mapContext{
		cells: map[string]map[address.Position]any{"": {}},
		names: map[string]address.Range{},
	}
}

func (c *mapContext) set(sheet, cell string, v any) {
	pos, err := address.ParseCellName(cell)
	if err != nil {
		panic(err)
	}
	if c.cells[sheet] == nil {
		c.cells[sheet] = map[address.Position]any{}
	}
	c.cells[sheet][pos] = v
}

func (c *mapContext) CellValue(sheet string, pos address.Position) any {
	return c.cells[sheet][pos]
}

func (c *mapContext) RangeValues(sheet string, r address.Range) []any {
	var out []any
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if v, ok := c.cells[sheet][address.Position{Row: row, Col: col}]; ok && v != nil {
				out = append(out, v)
			}
		}
	}
	return out
}

func (c *mapContext) ResolveName(sheet, name string) (string, address.Range, bool) {
	r, ok := c.names[name]
	return "", r, ok
}

func TestFromString(t *testing.T) {
	canonical := map[string]ErrorValue{
		"#DIV/0!":       Div0,
		"#GETTING_DATA": GettingData,
		"#N/A":          NA,
		"#NAME?":        Name,
		"#NULL!":        Null,
		"#NUM!":         Num,
		"#REF!":         Ref,
		"#VALUE!":       Value,
	}
	for text, want := range canonical {
		got := FromString(text)
		assert.True(t, got.Recognized, text)
		assert.Equal(t, want, got.Value, text)
		assert.Equal(t, text, want.String())
	}
	assert.Len(t, ErrorValues(), len(canonical))

	for _, text := range []string{"#NOPE!", "#div/0!", "", "DIV/0", "#SPILL!"} {
		got := FromString(text)
		assert.False(t, got.Recognized, text)
		assert.Equal(t, ErrorValue(0), got.Value, text)
	}
	assert.False(t, ErrorValue(0).Valid())
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		formula string
		want    Node
	}{
		{
			formula: "=1+2*3",
			want: &BinaryNode{Op: "+", Left: &NumberNode{Value: 1},
				Right: &BinaryNode{Op: "*", Left: &NumberNode{Value: 2}, Right: &NumberNode{Value: 3}}},
		},
		{
			formula: "A1*2",
			want:    &BinaryNode{Op: "*", Left: &CellNode{Pos: address.Position{}}, Right: &NumberNode{Value: 2}},
		},
		{
			formula: "SUM(A1:B2, 'My Sheet'!C3)",
			want: &FunctionNode{Name: "SUM", Args: []Node{
				&RangeNode{Range: address.Range{End: address.Position{Row: 1, Col: 1}}},
				&CellNode{Sheet: "My Sheet", Pos: address.Position{Row: 2, Col: 2}},
			}},
		},
		{
			formula: "-TaxRate%",
			want:    &UnaryNode{Op: "-", Operand: &PostfixNode{Op: "%", Operand: &NameNode{Name: "TaxRate"}}},
		},
		{
			formula: `IF(true, "a", #N/A)`,
			want: &FunctionNode{Name: "IF", Args: []Node{
				&BoolNode{Value: true}, &StringNode{Value: "a"}, &ErrorNode{Value: NA},
			}},
		},
		{
			formula: "(1-2)-3",
			want: &BinaryNode{Op: "-",
				Left:  &BinaryNode{Op: "-", Left: &NumberNode{Value: 1}, Right: &NumberNode{Value: 2}},
				Right: &NumberNode{Value: 3}},
		},
		{
			formula: "NOW()",
			want:    &FunctionNode{Name: "NOW"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := Parse(tt.formula)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptyFormula)
	_, err = Parse("=")
	assert.ErrorIs(t, err, ErrEmptyFormula)

	_, err = Parse("=1 + ~")
	var pe *lexer.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 5, pe.Offset)

	for _, text := range []string{"=1+", "=SUM(1,", "=(1", "=#SPILL!"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrInvalidFormula, text)
	}
}

func TestChildren(t *testing.T) {
	tree := MustParse("SUM(A1, B1*2) + C1")
	var cells []address.Position
	Walk(tree, func(n Node) bool {
		if c, ok := n.(*CellNode); ok {
			cells = append(cells, c.Pos)
		}
		return true
	})
	assert.Equal(t, []address.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}, cells)
	assert.Nil(t, Children(&NumberNode{Value: 1}))
	assert.Nil(t, Children(nil))
}

func TestEvaluate(t *testing.T) {
	ctx := newMapContext()
	ctx.set("", "A1", 5.0)
	ctx.set("", "A2", 10.0)
	ctx.set("", "A3", "text")
	ctx.set("", "A4", true)
	ctx.set("", "B1", Div0)
	ctx.set("Other", "A1", 7.0)
	ctx.names["Rate"] = address.CellRange(address.Position{Row: 0, Col: 0})
	ctx.names["Values"] = address.Range{End: address.Position{Row: 3, Col: 0}}

	tests := []struct {
		formula string
		want    any
	}{
		{"=1+2*3", 7.0},
		{"=-2^2", 4.0},
		{"=2^3^2", 64.0},
		{"=50%", 0.5},
		{"=A1*2", 10.0},
		{"=A1+Z99", 5.0},
		{"=Z99", 0.0},
		{"=Other!A1+1", 8.0},
		{"=SUM(A1:A4)", 15.0},
		{"=SUM(A1, TRUE, \"2\")", 8.0},
		{"=AVERAGE(A1:A2)", 7.5},
		{"=MIN(A1:A2, 3)", 3.0},
		{"=MAX(Values)", 10.0},
		{"=COUNT(A1:A4)", 2.0},
		{"=IF(A1>3, \"big\", \"small\")", "big"},
		{"=IF(A1>30, 1)", false},
		{"=ABS(-3)", 3.0},
		{"=CONCATENATE(\"x\", A1, TRUE)", "x5TRUE"},
		{"=\"a\" & 1.5", "a1.5"},
		{"=Rate*2", 10.0},
		{"=\"abc\"=\"ABC\"", true},
		{"=1<\"a\"", true},
		{"=AND(A1>1, A2>1)", true},
		{"=OR(FALSE, A1<1)", false},
		{"=NOT(A4)", false},
		{"=ROUND(3.14159, 2)", 3.14},
		{"=SUM({1,2;3,4})", 10.0},
		{"=SUM((A1,A2))", 15.0},
		{"=SUM(A1:A2 A2:A3)", 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			n, err := Parse(tt.formula)
			require.NoError(t, err)
			got := Evaluate(n, ctx)
			if f, ok := tt.want.(float64); ok {
				assert.InDelta(t, f, got, 1e-9)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	ctx := newMapContext()
	ctx.set("", "A1", 5.0)
	ctx.set("", "A3", "text")
	ctx.set("", "B1", Div0)

	tests := []struct {
		formula string
		want    ErrorValue
	}{
		{"=1/0", Div0},
		{"=A3+1", Value},
		{"=B1+1", Div0},
		{"=SUM(A1, B1)", Div0},
		{"=NOSUCH(1)", Name},
		{"=Missing", Name},
		{"=ABS(1, 2)", Value},
		{"=AVERAGE(A3)", Value},
		{"=AVERAGE(A3:A3)", Div0},
		{"=A1:A3", Value},
		{"=(-1)^0.5", Num},
		{"=A1:A2 C1:C2", Null},
		{"=#REF!", Ref},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got := Evaluate(MustParse(tt.formula), ctx)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupFunction(t *testing.T) {
	_, ok := LookupFunction("sum")
	assert.True(t, ok)
	_, ok = LookupFunction("_xlfn.CONCATENATE")
	assert.True(t, ok)
	_, ok = LookupFunction("VLOOKUP")
	assert.False(t, ok)
	assert.Contains(t, Functions(), "AVERAGE")
	assert.NotContains(t, Functions(), "ARRAY")
}
