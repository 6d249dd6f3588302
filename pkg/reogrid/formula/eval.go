package formula

import (
	"math"
	"strconv"
	"strings"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
)

// Context supplies cell values to the evaluator. Sheet names are as written
// in the formula; an empty sheet means the sheet that owns the formula.
//
// Evaluated values are float64, string, bool, ErrorValue, or nil for a blank
// cell. References to more than one cell evaluate to a []any of the
// non-blank values.
type Context interface {
	CellValue(sheet string, pos address.Position) any
	RangeValues(sheet string, r address.Range) []any
	ResolveName(sheet, name string) (string, address.Range, bool)
}

// Evaluate computes the value of a formula tree. The result is a single
// value; blank results become 0.
func Evaluate(n Node, ctx Context) any {
	v := scalar(eval(n, ctx))
	if v == nil {
		return 0.0
	}
	return v
}

func eval(n Node, ctx Context) any {
	switch n := n.(type) {
	case *NumberNode:
		return n.Value
	case *StringNode:
		return n.Value
	case *BoolNode:
		return n.Value
	case *ErrorNode:
		return n.Value
	case *CellNode:
		return ctx.CellValue(n.Sheet, n.Pos)
	case *RangeNode:
		return ctx.RangeValues(n.Sheet, n.Range)
	case *NameNode:
		sheet, rng, ok := ctx.ResolveName(n.Sheet, n.Name)
		if !ok {
			return Name
		}
		if rng.Start == rng.End {
			return ctx.CellValue(sheet, rng.Start)
		}
		return ctx.RangeValues(sheet, rng)
	case *UnaryNode:
		x, e := toNumber(eval(n.Operand, ctx))
		if e != 0 {
			return e
		}
		if n.Op == "-" {
			return -x
		}
		return x
	case *PostfixNode:
		x, e := toNumber(eval(n.Operand, ctx))
		if e != 0 {
			return e
		}
		return x / 100
	case *BinaryNode:
		if n.Op == " " {
			return intersect(n, ctx)
		}
		return binary(n.Op, eval(n.Left, ctx), eval(n.Right, ctx))
	case *FunctionNode:
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			args[i] = eval(arg, ctx)
		}
		return call(n.Name, args)
	case *UnionNode:
		var out []any
		for _, item := range n.Items {
			switch v := eval(item, ctx).(type) {
			case []any:
				out = append(out, v...)
			case nil:
			default:
				out = append(out, v)
			}
		}
		return out
	case nil:
		return nil
	default:
		return Value
	}
}

// scalar reduces a reference value to one cell, as a single-cell range
// behaves like that cell.
func scalar(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	default:
		return Value
	}
}

func intersect(n *BinaryNode, ctx Context) any {
	left, lok := refRange(n.Left)
	right, rok := refRange(n.Right)
	if !lok || !rok || left.sheet != right.sheet {
		return Value
	}
	rng, ok := left.rng.Intersect(right.rng)
	if !ok {
		return Null
	}
	return ctx.RangeValues(left.sheet, rng)
}

type sheetRange struct {
	sheet string
	rng   address.Range
}

func refRange(n Node) (sheetRange, bool) {
	switch n := n.(type) {
	case *CellNode:
		return sheetRange{sheet: n.Sheet, rng: address.CellRange(n.Pos)}, true
	case *RangeNode:
		return sheetRange{sheet: n.Sheet, rng: n.Range}, true
	default:
		return sheetRange{}, false
	}
}

func binary(op string, lv, rv any) any {
	lv, rv = scalar(lv), scalar(rv)
	if e, ok := lv.(ErrorValue); ok {
		return e
	}
	if e, ok := rv.(ErrorValue); ok {
		return e
	}

	switch op {
	case "&":
		return toText(lv) + toText(rv)
	case "=", "<>", "<", ">", "<=", ">=":
		return compareOp(op, compare(lv, rv))
	}

	x, e := toNumber(lv)
	if e != 0 {
		return e
	}
	y, e := toNumber(rv)
	if e != 0 {
		return e
	}

	var r float64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "/":
		if y == 0 {
			return Div0
		}
		r = x / y
	case "^":
		r = math.Pow(x, y)
	default:
		return Value
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Num
	}
	return r
}

func compareOp(op string, c int) bool {
	switch op {
	case "=":
		return c == 0
	case "<>":
		return c != 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	default:
		return c >= 0
	}
}

// compare orders values the way spreadsheets do: numbers before text before
// logicals, text case-insensitively. A blank takes the type of the other side.
func compare(a, b any) int {
	if a == nil {
		a = blankLike(b)
	}
	if b == nil {
		b = blankLike(a)
	}

	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(strings.ToLower(x), strings.ToLower(b.(string)))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return 0
}

func blankLike(v any) any {
	switch v.(type) {
	case string:
		return ""
	case bool:
		return false
	default:
		return 0.0
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case float64:
		return 0
	case string:
		return 1
	case bool:
		return 2
	default:
		return 3
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// toNumber coerces a value to a number. The second result is non-zero when
// the value is or produces an error.
func toNumber(v any) (float64, ErrorValue) {
	switch v := scalar(v).(type) {
	case nil:
		return 0, 0
	case float64:
		return v, 0
	case bool:
		if v {
			return 1, 0
		}
		return 0, 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, Value
		}
		return f, 0
	case ErrorValue:
		return 0, v
	default:
		return 0, Value
	}
}

func toText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return v
	case ErrorValue:
		return v.String()
	default:
		return ""
	}
}

func toBool(v any) (bool, ErrorValue) {
	switch v := scalar(v).(type) {
	case nil:
		return false, 0
	case bool:
		return v, 0
	case float64:
		return v != 0, 0
	case string:
		switch strings.ToUpper(v) {
		case "TRUE":
			return true, 0
		case "FALSE":
			return false, 0
		}
		return false, Value
	case ErrorValue:
		return false, v
	default:
		return false, Value
	}
}
