// Package lexer provides a rule-driven tokenizer for spreadsheet formulas.
//
// A dialect is described by an ordered list of rules. The rules become the
// rule set of a participle lexer, tried in order at each offset, and every
// scan step reports the first rule that matched.
package lexer

// TokenKind classifies a lexical token.
type TokenKind int

const (
	// Error marks input that no earlier rule recognized.
	Error TokenKind = iota
	// String is a double-quoted literal with "" escapes.
	String
	// UnionRanges is a whitespace separated list of ranges (A1:B2 C3:D4).
	UnionRanges
	// Range is a pair of cell addresses joined by a colon.
	Range
	// Cell is a single cell address in the dialect of the grammar.
	Cell
	// Operator is punctuation: arithmetic, comparison, separators, parentheses.
	Operator
	// Number is a numeric literal.
	Number
	// True is the TRUE literal.
	True
	// False is the FALSE literal.
	False
	// Identifier is a bare or single-quoted name (function, sheet, named range).
	Identifier
	// ErrorLiteral is an in-sheet error constant such as #DIV/0!.
	ErrorLiteral
)

var kindNames = map[TokenKind]string{
	Error:        "Error",
	String:       "String",
	UnionRanges:  "UnionRanges",
	Range:        "Range",
	Cell:         "Cell",
	Operator:     "Operator",
	Number:       "Number",
	True:         "True",
	False:        "False",
	Identifier:   "Identifier",
	ErrorLiteral: "ErrorLiteral",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is one classified span of a formula. Value holds the structured
// payload a rule attached to the token (a parsed number, an address, ...).
type Token struct {
	Kind   TokenKind
	Text   string
	Start  int
	Length int
	Value  any
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Start + t.Length
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}
