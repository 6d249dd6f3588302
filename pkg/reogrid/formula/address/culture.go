package address

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/lexer"
)

// DecimalSeparator returns the decimal separator used by the given locale.
func DecimalSeparator(tag language.Tag) string {
	s := message.NewPrinter(tag).Sprintf("%.1f", 1.5)
	sep := strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
	if sep == "" || !utf8.ValidString(sep) {
		return "."
	}
	return sep
}

type numberRule struct {
	lexer.PatternRule
	sep string
}

// newNumberRule builds the number rule for a decimal separator. The
// separator is fixed for the lifetime of the grammar.
func newNumberRule(name, sep string) numberRule {
	q := regexp.QuoteMeta(sep)
	pattern := `(?:[0-9]+(?:` + q + `[0-9]*)?|` + q + `[0-9]+)(?:[eE][+-]?[0-9]+)?`
	return numberRule{
		PatternRule: lexer.NewPatternRule(lexer.Number, name, pattern),
		sep:         sep,
	}
}

func (r numberRule) TryParse(m lexer.Match) (lexer.Token, bool) {
	token, ok := r.PatternRule.TryParse(m)
	if !ok {
		return token, false
	}
	v, err := strconv.ParseFloat(strings.Replace(token.Text, r.sep, ".", 1), 64)
	if err != nil {
		return lexer.Token{}, false
	}
	token.Value = v
	return token, true
}
