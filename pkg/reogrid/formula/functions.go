package formula

import (
	"math"
	"sort"
	"strings"
)

// Function is a built-in spreadsheet function. MaxArgs < 0 means no upper
// limit.
type Function struct {
	MinArgs int
	MaxArgs int
	Call    func(args []any) any
}

// functions is the registry of supported functions, keyed by upper-case name.
var functions = map[string]Function{
	"SUM":         {MinArgs: 1, MaxArgs: -1, Call: sum},
	"AVERAGE":     {MinArgs: 1, MaxArgs: -1, Call: average},
	"MIN":         {MinArgs: 1, MaxArgs: -1, Call: minOf},
	"MAX":         {MinArgs: 1, MaxArgs: -1, Call: maxOf},
	"COUNT":       {MinArgs: 0, MaxArgs: -1, Call: count},
	"IF":          {MinArgs: 2, MaxArgs: 3, Call: ifFunc},
	"ABS":         {MinArgs: 1, MaxArgs: 1, Call: abs},
	"CONCATENATE": {MinArgs: 1, MaxArgs: -1, Call: concatenate},
	"AND":         {MinArgs: 1, MaxArgs: -1, Call: and},
	"OR":          {MinArgs: 1, MaxArgs: -1, Call: or},
	"NOT":         {MinArgs: 1, MaxArgs: 1, Call: not},
	"ROUND":       {MinArgs: 2, MaxArgs: 2, Call: round},
	// Array constants arrive from the tokenizer as these pseudo functions.
	"ARRAY":    {MinArgs: 0, MaxArgs: -1, Call: flatten},
	"ARRAYROW": {MinArgs: 0, MaxArgs: -1, Call: flatten},
}

// Functions returns the names of the supported functions, sorted.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		if name != "ARRAY" && name != "ARRAYROW" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LookupFunction returns the built-in function with the given name.
func LookupFunction(name string) (Function, bool) {
	name = strings.TrimPrefix(strings.ToUpper(name), "_XLFN.")
	fn, ok := functions[name]
	return fn, ok
}

func call(name string, args []any) any {
	fn, ok := LookupFunction(name)
	if !ok {
		return Name
	}
	if len(args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(args) > fn.MaxArgs) {
		return Value
	}
	return fn.Call(args)
}

// numbers collects the numeric arguments of an aggregate. Direct arguments
// are coerced; values that come from references count only when they are
// numbers.
func numbers(args []any) ([]float64, ErrorValue) {
	var out []float64
	for _, arg := range args {
		if list, ok := arg.([]any); ok {
			for _, v := range list {
				switch v := v.(type) {
				case float64:
					out = append(out, v)
				case ErrorValue:
					return nil, v
				}
			}
			continue
		}
		if arg == nil {
			continue
		}
		x, e := toNumber(arg)
		if e != 0 {
			return nil, e
		}
		out = append(out, x)
	}
	return out, 0
}

func sum(args []any) any {
	nums, e := numbers(args)
	if e != 0 {
		return e
	}
	total := 0.0
	for _, x := range nums {
		total += x
	}
	return total
}

func average(args []any) any {
	nums, e := numbers(args)
	if e != 0 {
		return e
	}
	if len(nums) == 0 {
		return Div0
	}
	total := 0.0
	for _, x := range nums {
		total += x
	}
	return total / float64(len(nums))
}

func minOf(args []any) any {
	nums, e := numbers(args)
	if e != 0 {
		return e
	}
	if len(nums) == 0 {
		return 0.0
	}
	m := nums[0]
	for _, x := range nums[1:] {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(args []any) any {
	nums, e := numbers(args)
	if e != 0 {
		return e
	}
	if len(nums) == 0 {
		return 0.0
	}
	m := nums[0]
	for _, x := range nums[1:] {
		m = math.Max(m, x)
	}
	return m
}

func count(args []any) any {
	n := 0
	for _, arg := range args {
		if list, ok := arg.([]any); ok {
			for _, v := range list {
				if _, ok := v.(float64); ok {
					n++
				}
			}
			continue
		}
		if arg == nil {
			continue
		}
		if _, e := toNumber(arg); e == 0 {
			n++
		}
	}
	return float64(n)
}

func ifFunc(args []any) any {
	cond, e := toBool(args[0])
	if e != 0 {
		return e
	}
	if cond {
		return scalar(args[1])
	}
	if len(args) < 3 {
		return false
	}
	return scalar(args[2])
}

func abs(args []any) any {
	x, e := toNumber(args[0])
	if e != 0 {
		return e
	}
	return math.Abs(x)
}

func concatenate(args []any) any {
	var sb strings.Builder
	for _, arg := range args {
		v := scalar(arg)
		if e, ok := v.(ErrorValue); ok {
			return e
		}
		sb.WriteString(toText(v))
	}
	return sb.String()
}

// logicals collects boolean arguments; text in references is skipped.
func logicals(args []any) ([]bool, ErrorValue) {
	var out []bool
	for _, arg := range args {
		if list, ok := arg.([]any); ok {
			for _, v := range list {
				switch v := v.(type) {
				case bool:
					out = append(out, v)
				case float64:
					out = append(out, v != 0)
				case ErrorValue:
					return nil, v
				}
			}
			continue
		}
		b, e := toBool(arg)
		if e != 0 {
			return nil, e
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, Value
	}
	return out, 0
}

func and(args []any) any {
	values, e := logicals(args)
	if e != 0 {
		return e
	}
	for _, v := range values {
		if !v {
			return false
		}
	}
	return true
}

func or(args []any) any {
	values, e := logicals(args)
	if e != 0 {
		return e
	}
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

func not(args []any) any {
	b, e := toBool(args[0])
	if e != 0 {
		return e
	}
	return !b
}

func round(args []any) any {
	x, e := toNumber(args[0])
	if e != 0 {
		return e
	}
	digits, e := toNumber(args[1])
	if e != 0 {
		return e
	}
	p := math.Pow(10, math.Trunc(digits))
	return math.Round(x*p) / p
}

func flatten(args []any) any {
	var out []any
	for _, arg := range args {
		if list, ok := arg.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, arg)
	}
	return out
}
