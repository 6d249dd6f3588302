package lexer

// Rule recognizes one kind of token. Pattern is a regular expression fragment
// matched at the current offset; named groups inside it can be read back from
// the Match. TryParse inspects a match and returns a token when the match
// belongs to the rule called Name.
type Rule interface {
	Kind() TokenKind
	Name() string
	Pattern() string
	TryParse(m Match) (Token, bool)
}

// PatternRule is a Rule that turns its matched group into a plain token.
// Dialect rules embed it and override TryParse to attach a payload.
type PatternRule struct {
	kind    TokenKind
	name    string
	pattern string
}

// NewPatternRule creates a rule of the given kind.
func NewPatternRule(kind TokenKind, name, pattern string) PatternRule {
	return PatternRule{kind: kind, name: name, pattern: pattern}
}

// Kind returns the kind of token the rule produces.
func (r PatternRule) Kind() TokenKind { return r.kind }

// Name returns the rule name; it also names the whole span in a Match.
func (r PatternRule) Name() string { return r.name }

// Pattern returns the regular expression fragment the rule matches.
func (r PatternRule) Pattern() string { return r.pattern }

// TryParse returns the matched group as a token of the rule's kind.
func (r PatternRule) TryParse(m Match) (Token, bool) {
	text, start, ok := m.Group(r.name)
	if !ok {
		return Token{}, false
	}
	return Token{Kind: r.kind, Text: text, Start: start, Length: len(text)}, true
}
