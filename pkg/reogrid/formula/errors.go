package formula

import "errors"

// ErrorValue is one of the standard in-sheet formula errors.
type ErrorValue int

// The zero ErrorValue is not a valid error.
const (
	Div0 ErrorValue = iota + 1
	GettingData
	NA
	Name
	Null
	Num
	Ref
	Value
)

var errorTexts = map[ErrorValue]string{
	Div0:        "#DIV/0!",
	GettingData: "#GETTING_DATA",
	NA:          "#N/A",
	Name:        "#NAME?",
	Null:        "#NULL!",
	Num:         "#NUM!",
	Ref:         "#REF!",
	Value:       "#VALUE!",
}

var errorsByText = func() map[string]ErrorValue {
	m := make(map[string]ErrorValue, len(errorTexts))
	for v, text := range errorTexts {
		m[text] = v
	}
	return m
}()

// String returns the canonical text of the error, e.g. "#DIV/0!".
func (e ErrorValue) String() string {
	if text, ok := errorTexts[e]; ok {
		return text
	}
	return "#UNKNOWN!"
}

// MarshalText encodes the error as its canonical text.
func (e ErrorValue) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Valid reports whether e is one of the standard errors.
func (e ErrorValue) Valid() bool {
	_, ok := errorTexts[e]
	return ok
}

// ErrorValues returns every standard error in declaration order.
func ErrorValues() []ErrorValue {
	return []ErrorValue{Div0, GettingData, NA, Name, Null, Num, Ref, Value}
}

// ErrorConstant is the classification of an error-literal candidate.
// Value is meaningful only when Recognized is true.
type ErrorConstant struct {
	Recognized bool       `json:"recognized"`
	Value      ErrorValue `json:"value,omitempty"`
}

// FromString classifies text as a standard error. The match is exact and
// case-sensitive; anything else is unrecognized, which is not an error.
func FromString(text string) ErrorConstant {
	if v, ok := errorsByText[text]; ok {
		return ErrorConstant{Recognized: true, Value: v}
	}
	return ErrorConstant{}
}

// Sentinel errors for formula parsing.
var (
	// ErrEmptyFormula indicates a formula with no expression.
	ErrEmptyFormula = errors.New("empty formula")
	// ErrInvalidFormula indicates a formula that does not form an expression.
	ErrInvalidFormula = errors.New("invalid formula")
)
