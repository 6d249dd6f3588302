package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidReference indicates text that is neither a cell, a range nor a name.
var ErrInvalidReference = errors.New("invalid reference")

var namePattern = regexp.MustCompile(`^[A-Za-z_\\\p{L}][\w.\p{L}]*$`)

// RefKind classifies a reference operand.
type RefKind int

const (
	// CellRef is a single cell such as A1.
	CellRef RefKind = iota
	// RangeRef is a rectangle such as A1:B2, A:B or 1:2.
	RangeRef
	// NameRef is a defined name.
	NameRef
)

func (k RefKind) String() string {
	switch k {
	case CellRef:
		return "cell"
	case RangeRef:
		return "range"
	case NameRef:
		return "name"
	default:
		return "unknown"
	}
}

// Reference is a classified reference operand, optionally sheet-qualified.
type Reference struct {
	Kind      RefKind `json:"kind"`
	Worksheet string  `json:"worksheet,omitempty"`
	Range     Range   `json:"range"`
	Name      string  `json:"name,omitempty"`
}

func (r Reference) String() string {
	var target string
	if r.Kind == NameRef {
		target = r.Name
	} else {
		target = r.Range.String()
	}
	if r.Worksheet == "" {
		return target
	}
	return QuoteIdentifier(r.Worksheet) + "!" + target
}

// ParseReference classifies a reference operand: A1, $A$1, A1:B2, A:B, 1:2,
// Sheet1!A1, 'My Sheet'!A1:B2, Name or Sheet1!Name.
func ParseReference(text string) (Reference, error) {
	sheet, rest, err := SplitSheet(strings.TrimSpace(text))
	if err != nil {
		return Reference{}, err
	}
	if rest == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, text)
	}

	if rng, err := ParseRange(rest); err == nil {
		kind := RangeRef
		if !strings.Contains(rest, ":") {
			kind = CellRef
		}
		return Reference{Kind: kind, Worksheet: sheet, Range: rng}, nil
	}

	if namePattern.MatchString(rest) {
		return Reference{Kind: NameRef, Worksheet: sheet, Name: rest}, nil
	}
	return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, text)
}

// SplitSheet separates an optional sheet qualifier from a reference. Quoted
// sheet names are unescaped.
func SplitSheet(text string) (sheet, rest string, err error) {
	if strings.HasPrefix(text, "'") {
		for i := 1; i < len(text); i++ {
			if text[i] != '\'' {
				continue
			}
			if i+1 < len(text) && text[i+1] == '\'' {
				i++
				continue
			}
			if i+1 >= len(text) || text[i+1] != '!' {
				return "", "", fmt.Errorf("%w: %q", ErrInvalidReference, text)
			}
			return UnquoteIdentifier(text[:i+1]), text[i+2:], nil
		}
		return "", "", fmt.Errorf("%w: unterminated sheet name in %q", ErrInvalidReference, text)
	}

	if idx := strings.LastIndex(text, "!"); idx >= 0 {
		return text[:idx], text[idx+1:], nil
	}
	return "", text, nil
}
