package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() []Rule {
	return []Rule{
		NewPatternRule(String, "string", `"(?:[^"]|"")*"`),
		NewPatternRule(Range, "range", `[A-Z]+[0-9]+:[A-Z]+[0-9]+`),
		NewPatternRule(Cell, "cell", `[A-Z]+[0-9]+\b`),
		NewPatternRule(Number, "number", `[0-9]+(?:\.[0-9]*)?`),
		NewPatternRule(Operator, "operator", `[-+*/(),:!&=]`),
		NewPatternRule(Identifier, "identifier", `[A-Za-z_][A-Za-z0-9_.]*`),
		NewPatternRule(Error, "error", `(?s:.)`),
	}
}

func TestCompile(t *testing.T) {
	t.Run("empty rule list", func(t *testing.T) {
		_, err := Compile(nil)
		assert.ErrorIs(t, err, ErrNoRules)
	})

	t.Run("duplicate rule name", func(t *testing.T) {
		rules := []Rule{
			NewPatternRule(Number, "num", `[0-9]+`),
			NewPatternRule(Identifier, "num", `[a-z]+`),
		}
		_, err := Compile(rules)
		assert.ErrorIs(t, err, ErrDuplicateRule)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := Compile([]Rule{NewPatternRule(Number, "num", `[0-9`)})
		assert.Error(t, err)
	})

	t.Run("rules keep declaration order", func(t *testing.T) {
		g := MustCompile(testRules())
		names := make([]string, 0, len(g.Rules()))
		for _, r := range g.Rules() {
			names = append(names, r.Name())
		}
		assert.Equal(t, []string{"string", "range", "cell", "number", "operator", "identifier", "error"}, names)
	})
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile(nil) })
}

func TestTokenize(t *testing.T) {
	g := MustCompile(testRules())

	tests := []struct {
		name  string
		input string
		kinds []TokenKind
		texts []string
	}{
		{
			name:  "arithmetic",
			input: "A1+B2*3",
			kinds: []TokenKind{Cell, Operator, Cell, Operator, Number},
			texts: []string{"A1", "+", "B2", "*", "3"},
		},
		{
			name:  "range before cell",
			input: "SUM(A1:B2)",
			kinds: []TokenKind{Identifier, Operator, Range, Operator},
			texts: []string{"SUM", "(", "A1:B2", ")"},
		},
		{
			name:  "string with escaped quote",
			input: `"a""b" & C3`,
			kinds: []TokenKind{String, Operator, Cell},
			texts: []string{`"a""b"`, "&", "C3"},
		},
		{
			name:  "leading and trailing whitespace",
			input: "  1.5 + 2  ",
			kinds: []TokenKind{Number, Operator, Number},
			texts: []string{"1.5", "+", "2"},
		},
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "whitespace only",
			input: " \t ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := g.Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, len(tt.kinds))
			for i, tok := range tokens {
				assert.Equal(t, tt.kinds[i], tok.Kind, "token %d", i)
				assert.Equal(t, tt.texts[i], tok.Text, "token %d", i)
				assert.Equal(t, tt.input[tok.Start:tok.End()], tok.Text, "token %d span", i)
			}
		})
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	g := MustCompile(testRules())
	inputs := []string{
		"A1+B2",
		"  SUM( A1:B2 , 3 ) ",
		`"x y" & Name_1`,
		"\tfoo.bar(1, 2.)\n",
	}

	for _, input := range inputs {
		tokens, err := g.Tokenize(input)
		require.NoError(t, err, input)

		var sb strings.Builder
		prev := 0
		for _, tok := range tokens {
			gap := input[prev:tok.Start]
			assert.Empty(t, strings.TrimSpace(gap), "only whitespace between tokens in %q", input)
			sb.WriteString(gap)
			sb.WriteString(tok.Text)
			prev = tok.End()
		}
		sb.WriteString(input[prev:])
		assert.Equal(t, input, sb.String())
	}
}

func TestTokenizeError(t *testing.T) {
	g := MustCompile(testRules())

	tests := []struct {
		input  string
		offset int
	}{
		{input: "A1 + ?", offset: 5},
		{input: "#", offset: 0},
		{input: "1 ~ 2", offset: 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := g.Tokenize(tt.input)
			assert.Nil(t, tokens)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.offset, pe.Offset)
			assert.Equal(t, tt.input, pe.Input)
		})
	}
}

func TestTokenizeWithoutCatchAll(t *testing.T) {
	g := MustCompile([]Rule{NewPatternRule(Number, "number", `[0-9]+`)})

	_, err := g.Tokenize("12 x")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Offset)
}

func TestScanStopsEarly(t *testing.T) {
	g := MustCompile(testRules())
	count := 0
	for tok, err := range g.Scan("A1+B2+C3") {
		require.NoError(t, err)
		count++
		if tok.Text == "B2" {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestLexerState(t *testing.T) {
	g := MustCompile(testRules())
	l := g.NewLexer()

	require.True(t, l.Reset("A1  + 2"))
	assert.Equal(t, 0, l.Start())
	assert.Equal(t, 2, l.Length())
	assert.Equal(t, 0, l.CommittedLength())
	assert.Equal(t, Token{Kind: Cell, Text: "A1", Start: 0, Length: 2}, l.GetToken())

	require.True(t, l.NextToken())
	assert.Equal(t, 2, l.CommittedLength())
	assert.Equal(t, 4, l.Start())
	assert.Equal(t, 1, l.Length())
	assert.Equal(t, "  ", l.Whitespace())
	assert.True(t, l.GetToken().Is(Operator, "+"))

	require.True(t, l.NextToken())
	assert.True(t, l.GetToken().Is(Number, "2"))

	assert.False(t, l.NextToken())
	assert.False(t, l.NextToken())
	assert.Equal(t, 7, l.CommittedLength())

	// A lexer can be reused for another input.
	require.True(t, l.Reset("B1"))
	assert.Equal(t, 0, l.CommittedLength())
	assert.True(t, l.GetToken().Is(Cell, "B1"))
}

func TestFirstRuleWins(t *testing.T) {
	// Both rules match "ABC"; the one declared first is reported.
	g := MustCompile([]Rule{
		NewPatternRule(Identifier, "word", `[A-Z]+`),
		NewPatternRule(Cell, "letters", `[A-Z]+`),
	})
	tokens, err := g.Tokenize("ABC")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, Identifier, tokens[0].Kind)
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "UnionRanges", UnionRanges.String())
	assert.Equal(t, "ErrorLiteral", ErrorLiteral.String())
	assert.Equal(t, "Unknown", TokenKind(99).String())
}

// pairRule reads its two sub-groups back from the match.
type pairRule struct {
	PatternRule
}

func (r pairRule) TryParse(m Match) (Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return Token{}, false
	}
	key, _, _ := m.Group("key")
	value, start, _ := m.Group("value")
	token.Value = [2]any{key, start}
	if value == "" {
		return Token{}, false
	}
	return token, true
}

func TestMatchGroups(t *testing.T) {
	g := MustCompile([]Rule{
		pairRule{NewPatternRule(Identifier, "pair", `(?P<key>[a-z]+)=(?P<value>[0-9]*)`)},
		NewPatternRule(Number, "number", `[0-9]+`),
		NewPatternRule(Identifier, "Space", `[a-z]+`),
	})

	tokens, err := g.Tokenize(" ab=12 7 cd=3")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, [2]any{"ab", 4}, tokens[0].Value)
	assert.True(t, tokens[1].Is(Number, "7"))
	assert.Equal(t, [2]any{"cd", 12}, tokens[2].Value)

	// A rule that rejects its own match surfaces as a syntax error.
	_, err = g.Tokenize("1 x=")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Offset)

	// A rule may share its name with the internal whitespace symbol.
	tokens, err = g.Tokenize("xyz")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].Is(Identifier, "xyz"))
}
