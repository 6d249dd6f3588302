package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/efp"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
)

// Binding strength of infix operators; higher binds tighter.
var precedence = map[string]int{
	"=": 1, "<>": 1, "<": 1, ">": 1, "<=": 1, ">=": 1,
	"&": 2,
	"+": 3, "-": 3,
	"*": 4, "/": 4,
	"^": 5,
	",": 6,
	" ": 7,
}

// Parse builds an expression tree from formula text, with or without the
// leading "=". Lexical errors are reported as *lexer.ParseError.
func Parse(text string) (Node, error) {
	text = strings.TrimSpace(text)
	if strings.TrimSpace(strings.TrimPrefix(text, "=")) == "" {
		return nil, ErrEmptyFormula
	}

	// Reject characters the reference grammar does not know before building.
	if _, err := address.DefaultA1().Tokenize(text); err != nil {
		return nil, err
	}

	ps := efp.ExcelParser()
	tokens := ps.Parse(text)
	// efp reports the leading "=" as an infix operator.
	if len(tokens) > 0 && tokens[0].TType == efp.TokenTypeOperatorInfix && tokens[0].TValue == "=" {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyFormula
	}

	p := &treeBuilder{tokens: tokens}
	n, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek().TValue)
	}
	return n, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Node {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

type treeBuilder struct {
	tokens []efp.Token
	pos    int
}

func (p *treeBuilder) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *treeBuilder) peek() efp.Token {
	if p.done() {
		return efp.Token{}
	}
	return p.tokens[p.pos]
}

func (p *treeBuilder) next() efp.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *treeBuilder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at token %d", ErrInvalidFormula, fmt.Sprintf(format, args...), p.pos)
}

// infixOp returns the operator text of an infix token, if the token is one.
func infixOp(t efp.Token) (string, bool) {
	if t.TType != efp.TokenTypeOperatorInfix {
		return "", false
	}
	switch t.TSubType {
	case efp.TokenSubTypeIntersection:
		return " ", true
	case efp.TokenSubTypeUnion:
		return ",", true
	}
	if _, ok := precedence[t.TValue]; ok {
		return t.TValue, true
	}
	return "", false
}

func (p *treeBuilder) expression(minPrec int) (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for !p.done() {
		op, ok := infixOp(p.peek())
		if !ok {
			break
		}
		prec := precedence[op]
		if prec < minPrec {
			break
		}
		p.next()

		right, err := p.expression(prec + 1)
		if err != nil {
			return nil, err
		}
		if op == "," {
			left = joinUnion(left, right)
			continue
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func joinUnion(left, right Node) Node {
	if u, ok := left.(*UnionNode); ok {
		u.Items = append(u.Items, right)
		return u
	}
	return &UnionNode{Items: []Node{left, right}}
}

func (p *treeBuilder) unary() (Node, error) {
	t := p.peek()
	if t.TType == efp.TokenTypeOperatorPrefix {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: t.TValue, Operand: operand}, nil
	}

	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.peek().TType == efp.TokenTypeOperatorPostfix {
		n = &PostfixNode{Op: p.next().TValue, Operand: n}
	}
	return n, nil
}

func (p *treeBuilder) primary() (Node, error) {
	if p.done() {
		return nil, p.errorf("unexpected end of formula")
	}
	t := p.next()

	switch t.TType {
	case efp.TokenTypeOperand:
		return operand(t)
	case efp.TokenTypeFunction:
		if t.TSubType != efp.TokenSubTypeStart {
			return nil, p.errorf("unexpected %q", ")")
		}
		return p.function(strings.ToUpper(t.TValue))
	case efp.TokenTypeSubexpression:
		if t.TSubType != efp.TokenSubTypeStart {
			return nil, p.errorf("unexpected %q", ")")
		}
		n, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if end := p.next(); end.TType != efp.TokenTypeSubexpression || end.TSubType != efp.TokenSubTypeStop {
			return nil, p.errorf("missing %q", ")")
		}
		return n, nil
	default:
		return nil, p.errorf("unexpected %q", t.TValue)
	}
}

func (p *treeBuilder) function(name string) (Node, error) {
	fn := &FunctionNode{Name: name}
	if isFunctionStop(p.peek()) {
		p.next()
		return fn, nil
	}

	for {
		arg, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)

		t := p.next()
		switch {
		case t.TType == efp.TokenTypeArgument:
			continue
		case isFunctionStop(t):
			return fn, nil
		default:
			return nil, p.errorf("unterminated call to %s", name)
		}
	}
}

func isFunctionStop(t efp.Token) bool {
	return t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStop
}

func operand(t efp.Token) (Node, error) {
	switch t.TSubType {
	case efp.TokenSubTypeNumber:
		v, err := strconv.ParseFloat(t.TValue, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrInvalidFormula, t.TValue)
		}
		return &NumberNode{Value: v}, nil
	case efp.TokenSubTypeText:
		return &StringNode{Value: t.TValue}, nil
	case efp.TokenSubTypeLogical:
		return &BoolNode{Value: t.TValue == "TRUE"}, nil
	case efp.TokenSubTypeError:
		ec := FromString(t.TValue)
		if !ec.Recognized {
			return nil, fmt.Errorf("%w: unsupported error literal %q", ErrInvalidFormula, t.TValue)
		}
		return &ErrorNode{Value: ec.Value}, nil
	case efp.TokenSubTypeRange:
		return reference(t.TValue)
	default:
		return nil, fmt.Errorf("%w: unexpected operand %q", ErrInvalidFormula, t.TValue)
	}
}

func reference(text string) (Node, error) {
	switch {
	case strings.EqualFold(text, "TRUE"):
		return &BoolNode{Value: true}, nil
	case strings.EqualFold(text, "FALSE"):
		return &BoolNode{Value: false}, nil
	}

	// efp drops the quotes around sheet names, so split on the last "!".
	sheet, rest := "", text
	if idx := strings.LastIndex(text, "!"); idx >= 0 {
		sheet, rest = text[:idx], text[idx+1:]
	}
	ref, err := address.ParseReference(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormula, err)
	}

	switch ref.Kind {
	case address.CellRef:
		return &CellNode{Sheet: sheet, Pos: ref.Range.Start}, nil
	case address.RangeRef:
		return &RangeNode{Sheet: sheet, Range: ref.Range}, nil
	default:
		return &NameNode{Sheet: sheet, Name: ref.Name}, nil
	}
}
