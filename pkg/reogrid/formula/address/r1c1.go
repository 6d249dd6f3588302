package address

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/lexer"
)

const (
	r1c1CellPattern  = `(?i:R(?:\[[-+]?[0-9]+\]|[0-9]+)?C(?:\[[-+]?[0-9]+\]|[0-9]+\b|\b))`
	r1c1RangePattern = r1c1CellPattern + `:` + r1c1CellPattern
)

var r1c1CellRe = regexp.MustCompile(
	`^(?i:R(?:\[([-+]?[0-9]+)\]|([0-9]+))?C(?:\[([-+]?[0-9]+)\]|([0-9]+))?)$`)

// R1C1Address is the payload of an R1C1 cell token. Each axis is either
// absolute, relative, or neither, in which case it means the current
// row or column.
type R1C1Address struct {
	AbsoluteRow    *int `json:"absolute_row,omitempty"`
	AbsoluteColumn *int `json:"absolute_column,omitempty"`
	RelativeRow    *int `json:"relative_row,omitempty"`
	RelativeColumn *int `json:"relative_column,omitempty"`
}

// Resolve returns the zero-based position the address refers to from base.
func (a R1C1Address) Resolve(base Position) Position {
	p := base
	switch {
	case a.AbsoluteRow != nil:
		p.Row = *a.AbsoluteRow - 1
	case a.RelativeRow != nil:
		p.Row = base.Row + *a.RelativeRow
	}
	switch {
	case a.AbsoluteColumn != nil:
		p.Col = *a.AbsoluteColumn - 1
	case a.RelativeColumn != nil:
		p.Col = base.Col + *a.RelativeColumn
	}
	return p
}

func (a R1C1Address) String() string {
	var sb strings.Builder
	sb.WriteByte('R')
	writeAxis(&sb, a.AbsoluteRow, a.RelativeRow)
	sb.WriteByte('C')
	writeAxis(&sb, a.AbsoluteColumn, a.RelativeColumn)
	return sb.String()
}

func writeAxis(sb *strings.Builder, abs, rel *int) {
	switch {
	case abs != nil:
		sb.WriteString(strconv.Itoa(*abs))
	case rel != nil:
		fmt.Fprintf(sb, "[%d]", *rel)
	}
}

// R1C1Range is the payload of an R1C1 range token.
type R1C1Range struct {
	Start R1C1Address `json:"start"`
	End   R1C1Address `json:"end"`
}

// R1C1Reference is a cell reference found in an R1C1 formula.
type R1C1Reference struct {
	Address R1C1Address `json:"address"`
	Text    string      `json:"text"`
	Start   int         `json:"start"`
	Length  int         `json:"length"`
}

// ParseR1C1 parses a single R1C1 cell reference such as "R[1]C[-1]".
func ParseR1C1(text string) (R1C1Address, error) {
	groups := r1c1CellRe.FindStringSubmatch(text)
	if groups == nil {
		return R1C1Address{}, fmt.Errorf("invalid R1C1 reference: %q", text)
	}
	return buildR1C1(groups[1], groups[2], groups[3], groups[4])
}

func buildR1C1(relRow, absRow, relCol, absCol string) (R1C1Address, error) {
	var a R1C1Address
	var err error
	if a.RelativeRow, err = optionalInt(relRow); err != nil {
		return R1C1Address{}, err
	}
	if a.AbsoluteRow, err = optionalInt(absRow); err != nil {
		return R1C1Address{}, err
	}
	if a.RelativeColumn, err = optionalInt(relCol); err != nil {
		return R1C1Address{}, err
	}
	if a.AbsoluteColumn, err = optionalInt(absCol); err != nil {
		return R1C1Address{}, err
	}
	if a.AbsoluteRow != nil && (*a.AbsoluteRow < 1 || *a.AbsoluteRow > MaxRows) {
		return R1C1Address{}, fmt.Errorf("row number out of range: %d", *a.AbsoluteRow)
	}
	if a.AbsoluteColumn != nil && (*a.AbsoluteColumn < 1 || *a.AbsoluteColumn > MaxColumns) {
		return R1C1Address{}, fmt.Errorf("column number out of range: %d", *a.AbsoluteColumn)
	}
	return a, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

type r1c1CellRule struct {
	lexer.PatternRule
}

func (r r1c1CellRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	relRow, _, _ := m.Group("r1c1_rel_row")
	absRow, _, _ := m.Group("r1c1_abs_row")
	relCol, _, _ := m.Group("r1c1_rel_col")
	absCol, _, _ := m.Group("r1c1_abs_col")

	addr, err := buildR1C1(relRow, absRow, relCol, absCol)
	if err != nil {
		return lexer.Token{}, false
	}
	token.Value = addr
	return token, true
}

type r1c1RangeRule struct {
	lexer.PatternRule
}

func (r r1c1RangeRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	value, ok := parseR1C1Range(token.Text)
	if !ok {
		return lexer.Token{}, false
	}
	token.Value = value
	return token, true
}

type r1c1UnionRule struct {
	lexer.PatternRule
}

func (r r1c1UnionRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	parts := strings.Fields(token.Text)
	ranges := make([]R1C1Range, 0, len(parts))
	for _, part := range parts {
		value, ok := parseR1C1Range(part)
		if !ok {
			return lexer.Token{}, false
		}
		ranges = append(ranges, value)
	}
	token.Value = ranges
	return token, true
}

func parseR1C1Range(text string) (R1C1Range, bool) {
	left, right, found := strings.Cut(text, ":")
	if !found {
		return R1C1Range{}, false
	}
	start, err := ParseR1C1(left)
	if err != nil {
		return R1C1Range{}, false
	}
	end, err := ParseR1C1(right)
	if err != nil {
		return R1C1Range{}, false
	}
	return R1C1Range{Start: start, End: end}, true
}

// R1C1Rules returns the ordered R1C1 rule list for a decimal separator.
func R1C1Rules(sep string) []lexer.Rule {
	rules := []lexer.Rule{
		lexer.NewPatternRule(lexer.String, "r1c1_string", stringPattern),
		r1c1UnionRule{lexer.NewPatternRule(lexer.UnionRanges, "r1c1_union",
			r1c1RangePattern+`(?:\s+`+r1c1RangePattern+`)+`)},
		r1c1RangeRule{lexer.NewPatternRule(lexer.Range, "r1c1_range", r1c1RangePattern)},
		r1c1CellRule{lexer.NewPatternRule(lexer.Cell, "r1c1_cell",
			`(?i:R(?:\[(?P<r1c1_rel_row>[-+]?[0-9]+)\]|(?P<r1c1_abs_row>[0-9]+))?`+
				`C(?:\[(?P<r1c1_rel_col>[-+]?[0-9]+)\]|(?P<r1c1_abs_col>[0-9]+)\b|\b))`)},
	}
	return append(rules, literalRules("r1c1_", sep)...)
}

// R1C1Grammar tokenizes formulas written in R1C1 notation.
type R1C1Grammar struct {
	*lexer.Grammar
}

// NewR1C1Grammar builds an R1C1 grammar whose number rule uses the decimal
// separator of the given locale.
func NewR1C1Grammar(tag language.Tag) *R1C1Grammar {
	return &R1C1Grammar{Grammar: lexer.MustCompile(R1C1Rules(DecimalSeparator(tag)))}
}

var defaultR1C1 = sync.OnceValue(func() *R1C1Grammar {
	return NewR1C1Grammar(language.English)
})

// DefaultR1C1 returns the shared R1C1 grammar for the invariant culture.
func DefaultR1C1() *R1C1Grammar {
	return defaultR1C1()
}

// EnumerateR1C1 yields the cell references of an R1C1 formula using the
// default grammar.
func EnumerateR1C1(formula string) iter.Seq2[R1C1Reference, error] {
	return DefaultR1C1().Enumerate(formula)
}

// Enumerate lazily yields the R1C1 cell references of formula. Other tokens
// are skipped. A lexical error is yielded once and ends the sequence.
func (g *R1C1Grammar) Enumerate(formula string) iter.Seq2[R1C1Reference, error] {
	return func(yield func(R1C1Reference, error) bool) {
		for tok, err := range g.Scan(formula) {
			if err != nil {
				yield(R1C1Reference{}, err)
				return
			}
			if tok.Kind != lexer.Cell {
				continue
			}
			addr, ok := tok.Value.(R1C1Address)
			if !ok {
				continue
			}
			ref := R1C1Reference{Address: addr, Text: tok.Text, Start: tok.Start, Length: tok.Length}
			if !yield(ref, nil) {
				return
			}
		}
	}
}
