package lexer

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

// spaceChars is the set matched by \s in RE2 syntax.
const spaceChars = "\t\n\f\r "

// spaceSymbol names the whitespace rule placed ahead of every grammar.
const spaceSymbol = "Space"

// Grammar is an ordered rule list compiled into a participle lexer
// definition. A Grammar is immutable and may be shared; scanning state lives
// in Lexer.
type Grammar struct {
	rules []Rule
	def   *plexer.StatefulDefinition
	// types maps a participle token type to its rule index; whitespace maps
	// to -1.
	types map[plexer.TokenType]int
	// groups holds each rule's own anchored pattern for decoding sub-groups.
	groups []*regexp.Regexp
}

// Compile builds a grammar from rules in declaration order, preceded by a
// whitespace rule. Rules are tried in order and the first one matching at
// the current offset wins.
func Compile(rules []Rule) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	simple := make([]plexer.SimpleRule, 0, len(rules)+1)
	simple = append(simple, plexer.SimpleRule{Name: spaceSymbol, Pattern: `\s+`})
	groups := make([]*regexp.Regexp, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, rule := range rules {
		if seen[rule.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Name())
		}
		seen[rule.Name()] = true

		re, err := regexp.Compile(`^(?:` + rule.Pattern() + `)`)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		groups[i] = re
		simple = append(simple, plexer.SimpleRule{Name: symbolName(i), Pattern: rule.Pattern()})
	}

	def, err := plexer.NewSimple(simple)
	if err != nil {
		return nil, err
	}

	symbols := def.Symbols()
	types := make(map[plexer.TokenType]int, len(rules)+1)
	types[symbols[spaceSymbol]] = -1
	for i := range rules {
		types[symbols[symbolName(i)]] = i
	}

	return &Grammar{
		rules:  append([]Rule(nil), rules...),
		def:    def,
		types:  types,
		groups: groups,
	}, nil
}

// symbolName is the participle symbol of the i-th rule. Rule names are kept
// out of the lexer definition so any name a dialect picks is accepted.
func symbolName(i int) string {
	return fmt.Sprintf("Rule%d", i)
}

// MustCompile is like Compile but panics on error.
func MustCompile(rules []Rule) *Grammar {
	g, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return g
}

// Rules returns the rules in the order they are tried.
func (g *Grammar) Rules() []Rule {
	return append([]Rule(nil), g.rules...)
}

// NewLexer returns a scanner over this grammar. A Lexer is not safe for
// concurrent use; create one per tokenization.
func (g *Grammar) NewLexer() *Lexer {
	return &Lexer{grammar: g}
}

// Scan tokenizes input lazily. When a span matches no rule the sequence
// yields a *ParseError and stops.
func (g *Grammar) Scan(input string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := g.NewLexer()
		ok := l.Reset(input)
		for ok {
			token := l.GetToken()
			if token.Kind == Error {
				yield(Token{}, NewParseError(input, token.Start))
				return
			}
			if !yield(token, nil) {
				return
			}
			ok = l.NextToken()
		}
		if rest := l.pending(); rest >= 0 {
			yield(Token{}, NewParseError(input, rest))
		}
	}
}

// Tokenize returns every token of input, or a *ParseError and no tokens.
func (g *Grammar) Tokenize(input string) ([]Token, error) {
	var tokens []Token
	for token, err := range g.Scan(input) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Match is the current match of a Lexer: the span one rule recognized, with
// the sub-groups of that rule's pattern. Offsets are absolute within the
// input.
type Match struct {
	grammar *Grammar
	input   string
	rule    int
	// loc holds submatch offsets of the rule's pattern, absolute.
	loc []int
}

// Group returns the text and start offset of the named group. The name of
// the matched rule stands for the whole span.
func (m Match) Group(name string) (string, int, bool) {
	if m.loc == nil {
		return "", -1, false
	}
	if name == m.grammar.rules[m.rule].Name() {
		return m.input[m.loc[0]:m.loc[1]], m.loc[0], true
	}
	idx := m.grammar.groups[m.rule].SubexpIndex(name)
	if idx < 0 || 2*idx+1 >= len(m.loc) {
		return "", -1, false
	}
	start, end := m.loc[2*idx], m.loc[2*idx+1]
	if start < 0 {
		return "", -1, false
	}
	return m.input[start:end], start, true
}

// Has reports whether the named group participated in the match.
func (m Match) Has(name string) bool {
	_, _, ok := m.Group(name)
	return ok
}

// Input returns the full text being scanned.
func (m Match) Input() string {
	return m.input
}

// Lexer walks the token stream of one input at a time. Whitespace tokens
// are folded into the token that follows them.
type Lexer struct {
	grammar   *Grammar
	input     string
	stream    plexer.Lexer
	committed int
	// consumed is the offset just past the last token read from stream.
	consumed int
	matched  bool
	rule     int
	space    int
	start    int
	end      int
}

// Reset rewinds the lexer to the start of input and reads the first token.
func (l *Lexer) Reset(input string) bool {
	l.input = input
	l.committed = 0
	l.consumed = 0
	l.stream = nil
	stream, err := l.grammar.def.LexString("", input)
	if err != nil {
		l.matched = false
		return false
	}
	l.stream = stream
	return l.match()
}

// NextToken commits the current token and reads the next one. It returns
// false once the input is consumed or nothing matches.
func (l *Lexer) NextToken() bool {
	if !l.matched {
		return false
	}
	l.committed = l.end
	return l.match()
}

func (l *Lexer) match() bool {
	l.matched = false
	if l.stream == nil {
		return false
	}
	l.space = l.consumed
	for {
		tok, err := l.stream.Next()
		if err != nil || tok.Type == plexer.EOF {
			l.stream = nil
			return false
		}
		end := tok.Pos.Offset + len(tok.Value)
		l.consumed = end
		rule, ok := l.grammar.types[tok.Type]
		if !ok || rule < 0 {
			continue
		}
		l.matched = true
		l.rule = rule
		l.start = tok.Pos.Offset
		l.end = end
		return true
	}
}

// pending returns the offset of the first unconsumed non-space character, or
// -1 when only whitespace remains.
func (l *Lexer) pending() int {
	if l.committed >= len(l.input) {
		return -1
	}
	rest := l.input[l.committed:]
	trimmed := strings.TrimLeft(rest, spaceChars)
	if trimmed == "" {
		return -1
	}
	return l.committed + len(rest) - len(trimmed)
}

// GetToken classifies the current match. The rules are asked in order and
// the first one that accepts the match produces the token. A match no rule
// accepts, or no match at all, is reported as an Error token.
func (l *Lexer) GetToken() Token {
	if !l.matched {
		return Token{Kind: Error, Start: l.committed}
	}
	m := Match{grammar: l.grammar, input: l.input, rule: l.rule, loc: l.submatch()}
	for _, rule := range l.grammar.rules {
		if token, ok := rule.TryParse(m); ok {
			return token
		}
	}
	return Token{Kind: Error, Text: l.input[l.start:l.end], Start: l.start, Length: l.Length()}
}

// submatch re-runs the matched rule's own pattern at the token offset so the
// rule can read its sub-groups. The span is the one the lexer reported.
func (l *Lexer) submatch() []int {
	loc := l.grammar.groups[l.rule].FindStringSubmatchIndex(l.input[l.start:])
	if loc == nil || loc[1] != l.end-l.start {
		return []int{l.start, l.end}
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += l.start
		}
	}
	return loc
}

// Start returns the offset of the current token, after leading whitespace.
func (l *Lexer) Start() int {
	if !l.matched {
		return l.committed
	}
	return l.start
}

// Length returns the length of the current token without leading whitespace.
func (l *Lexer) Length() int {
	if !l.matched {
		return 0
	}
	return l.end - l.start
}

// CommittedLength returns how much of the input has been consumed by tokens
// before the current one.
func (l *Lexer) CommittedLength() int {
	return l.committed
}

// Whitespace returns the whitespace skipped before the current token.
func (l *Lexer) Whitespace() string {
	if !l.matched {
		return ""
	}
	return l.input[l.space:l.start]
}
