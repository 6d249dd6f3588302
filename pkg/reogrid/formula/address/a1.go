package address

import (
	"iter"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/lexer"
)

const (
	a1CellPattern  = `\$?[A-Za-z]{1,3}\$?[0-9]+`
	a1RangePattern = `(?:` + a1CellPattern + `:` + a1CellPattern + `\b` +
		`|\$?[A-Za-z]{1,3}:\$?[A-Za-z]{1,3}\b` +
		`|\$?[0-9]+:\$?[0-9]+\b)`
)

// A1Address is the payload of an A1 cell token.
type A1Address struct {
	Position    Position `json:"position"`
	ColAbsolute bool     `json:"col_absolute,omitempty"`
	RowAbsolute bool     `json:"row_absolute,omitempty"`
}

// A1Reference is a cell reference found in an A1 formula.
type A1Reference struct {
	A1Address
	// Worksheet is set when the cell is qualified with a sheet name.
	Worksheet *string `json:"worksheet,omitempty"`
	// Text is the source text, including the sheet qualifier if present.
	Text   string `json:"text"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

type a1CellRule struct {
	lexer.PatternRule
}

func (r a1CellRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	colText, _, _ := m.Group("a1_col")
	rowText, _, _ := m.Group("a1_row")

	col, err := excelize.ColumnNameToNumber(colText)
	if err != nil {
		return lexer.Token{}, false
	}
	row, err := strconv.Atoi(rowText)
	if err != nil || row < 1 || row > MaxRows {
		return lexer.Token{}, false
	}

	token.Value = A1Address{
		Position:    Position{Row: row - 1, Col: col - 1},
		ColAbsolute: m.Has("a1_col_abs"),
		RowAbsolute: m.Has("a1_row_abs"),
	}
	return token, true
}

type a1RangeRule struct {
	lexer.PatternRule
}

func (r a1RangeRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	rng, err := ParseRange(token.Text)
	if err != nil {
		return lexer.Token{}, false
	}
	token.Value = rng
	return token, true
}

type a1UnionRule struct {
	lexer.PatternRule
}

func (r a1UnionRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	parts := strings.Fields(token.Text)
	ranges := make([]Range, 0, len(parts))
	for _, part := range parts {
		rng, err := ParseRange(part)
		if err != nil {
			return lexer.Token{}, false
		}
		ranges = append(ranges, rng)
	}
	token.Value = ranges
	return token, true
}

// A1Rules returns the ordered A1 rule list for a decimal separator.
func A1Rules(sep string) []lexer.Rule {
	rules := []lexer.Rule{
		lexer.NewPatternRule(lexer.String, "a1_string", stringPattern),
		a1UnionRule{lexer.NewPatternRule(lexer.UnionRanges, "a1_union",
			a1RangePattern+`(?:\s+`+a1RangePattern+`)+`)},
		a1RangeRule{lexer.NewPatternRule(lexer.Range, "a1_range", a1RangePattern)},
		a1CellRule{lexer.NewPatternRule(lexer.Cell, "a1_cell",
			`(?P<a1_col_abs>\$)?(?P<a1_col>[A-Za-z]{1,3})(?P<a1_row_abs>\$)?(?P<a1_row>[0-9]+)\b`)},
	}
	return append(rules, literalRules("a1_", sep)...)
}

// A1Grammar tokenizes formulas written in A1 notation.
type A1Grammar struct {
	*lexer.Grammar
}

// NewA1Grammar builds an A1 grammar whose number rule uses the decimal
// separator of the given locale.
func NewA1Grammar(tag language.Tag) *A1Grammar {
	return &A1Grammar{Grammar: lexer.MustCompile(A1Rules(DecimalSeparator(tag)))}
}

var defaultA1 = sync.OnceValue(func() *A1Grammar {
	return NewA1Grammar(language.English)
})

// DefaultA1 returns the shared A1 grammar for the invariant culture.
func DefaultA1() *A1Grammar {
	return defaultA1()
}

// EnumerateA1 yields the cell references of an A1 formula using the default
// grammar.
func EnumerateA1(formula string) iter.Seq2[A1Reference, error] {
	return DefaultA1().Enumerate(formula)
}

// Enumerate yields the cell references of formula in source order. A cell
// preceded by an identifier and "!" carries that identifier as its worksheet
// and its span covers the qualifier. A lexical error is yielded alone, before
// any reference.
func (g *A1Grammar) Enumerate(formula string) iter.Seq2[A1Reference, error] {
	return func(yield func(A1Reference, error) bool) {
		tokens, err := g.Tokenize(formula)
		if err != nil {
			yield(A1Reference{}, err)
			return
		}

		for i, tok := range tokens {
			if tok.Kind != lexer.Cell {
				continue
			}
			// LOG10( and similar function names look like cells.
			if i+1 < len(tokens) && tokens[i+1].Is(lexer.Operator, "(") {
				continue
			}
			addr, ok := tok.Value.(A1Address)
			if !ok {
				continue
			}

			ref := A1Reference{
				A1Address: addr,
				Text:      tok.Text,
				Start:     tok.Start,
				Length:    tok.Length,
			}
			if i >= 2 && tokens[i-2].Kind == lexer.Identifier && tokens[i-1].Is(lexer.Operator, "!") {
				sheet := UnquoteIdentifier(tokens[i-2].Text)
				ref.Worksheet = &sheet
				ref.Start = tokens[i-2].Start
				ref.Length = tok.End() - ref.Start
				ref.Text = formula[ref.Start:tok.End()]
			}

			if !yield(ref, nil) {
				return
			}
		}
	}
}
