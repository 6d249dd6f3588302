package address

import (
	"strings"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/lexer"
)

// Fragments shared by both dialects.
const (
	stringPattern       = `"(?:[^"]|"")*"`
	errorLiteralPattern = `#[A-Za-z0-9_/]+[!?]?`
	operatorPattern     = `<>|<=|>=|[-+*/^&%=<>:!,;(){}@]`
	identifierPattern   = `'(?:[^']|'')+'|[A-Za-z_\\\p{L}][\w.\p{L}]*`
	truePattern         = `(?i:TRUE)\b`
	falsePattern        = `(?i:FALSE)\b`
	anyPattern          = `(?s:.)`
)

// literalRules returns the rules both dialects place after their address
// rules, ending with the catch-all that turns anything else into an Error.
func literalRules(prefix, sep string) []lexer.Rule {
	return []lexer.Rule{
		newNumberRule(prefix+"number", sep),
		lexer.NewPatternRule(lexer.True, prefix+"true", truePattern),
		lexer.NewPatternRule(lexer.False, prefix+"false", falsePattern),
		lexer.NewPatternRule(lexer.ErrorLiteral, prefix+"error_literal", errorLiteralPattern),
		lexer.NewPatternRule(lexer.Operator, prefix+"operator", operatorPattern),
		lexer.NewPatternRule(lexer.Identifier, prefix+"identifier", identifierPattern),
		lexer.NewPatternRule(lexer.Error, prefix+"error", anyPattern),
	}
}

// UnquoteIdentifier strips the single quotes around a sheet or name
// identifier and collapses doubled quotes.
func UnquoteIdentifier(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// QuoteIdentifier quotes a sheet name when it is not a plain identifier.
func QuoteIdentifier(s string) string {
	plain := s != ""
	for i, c := range s {
		isLetter := c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c > 127
		if !isLetter && (i == 0 || (c != '.' && (c < '0' || c > '9'))) {
			plain = false
			break
		}
	}
	if plain {
		if _, err := ParseCellName(s); err == nil {
			plain = false
		}
	}
	if plain {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
