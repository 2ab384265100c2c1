package expr

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"qdirac/internal/scalar"
)

// SyntaxError reports a malformed expression and the byte offset at which
// parsing stopped.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads an expression in the plain syntax produced by String.
//
//	|0⟩ |01>        kets; a multi-digit binary label is a tensor of basis kets
//	⟨0| <1|         bras; ⟨0|1⟩ is an inner product
//	H CX B0         capitalised identifiers are operator symbols
//	RX(theta)       a capitalised identifier with scalar arguments is a gate
//	theta θ pi i    lower-case identifiers are scalars; i and pi are constants
//	sqrt cos sin exp
//	+ - * / ^       * may be omitted between adjacent operands
//	@ ⊗             tensor product, binding tighter than *
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, input: input}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("unexpected %s", t)}
	}
	return e, nil
}

// MustParse is Parse that panics on error. Intended for tests and tables.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokKet
	tokBra
	tokOp
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokKet:
		return fmt.Sprintf("ket |%s⟩", t.text)
	case tokBra:
		return fmt.Sprintf("bra ⟨%s|", t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

func isLabelRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		r, w := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += w

		case r == '|':
			label, end, ok := scanLabel(input, i+w, ">⟩")
			if !ok {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated ket"}
			}
			toks = append(toks, token{kind: tokKet, text: label, pos: i})
			i = end

		case r == '<' || r == '⟨':
			label, end, ok := scanLabel(input, i+w, "|")
			if !ok {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated bra"}
			}
			toks = append(toks, token{kind: tokBra, text: label, pos: i})
			i = end
			// ⟨a|b⟩ shares the bar between bra and ket
			if klabel, kend, ok := scanLabel(input, i, ">⟩"); ok {
				toks = append(toks, token{kind: tokKet, text: klabel, pos: i})
				i = kend
			}

		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(input) && (input[i] == '.' || (input[i] >= '0' && input[i] <= '9')) {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: input[start:i], pos: start})

		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(input) {
				r, w := utf8.DecodeRuneInString(input[i:])
				if !isLabelRune(r) {
					break
				}
				i += w
			}
			toks = append(toks, token{kind: tokIdent, text: input[start:i], pos: start})

		case strings.ContainsRune("+-*/^@⊗(),·", r):
			text := string(r)
			if r == '·' {
				text = "*"
			}
			if r == '⊗' {
				text = "@"
			}
			toks = append(toks, token{kind: tokOp, text: text, pos: i})
			i += w

		default:
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(input)}), nil
}

// scanLabel reads label runes from start up to one of the terminators and
// returns the label and the offset just past the terminator.
func scanLabel(input string, start int, terminators string) (string, int, bool) {
	i := start
	for i < len(input) {
		r, w := utf8.DecodeRuneInString(input[i:])
		if strings.ContainsRune(terminators, r) {
			if i == start {
				return "", 0, false
			}
			return input[start:i], i + w, true
		}
		if !isLabelRune(r) {
			return "", 0, false
		}
		i += w
	}
	return "", 0, false
}

type parser struct {
	toks  []token
	pos   int
	input string
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) expect(text string) error {
	if !p.isOp(text) {
		t := p.peek()
		return &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("expected %q, found %s", text, t)}
	}
	p.next()
	return nil
}

func (p *parser) sum() (Expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.isOp("+") || p.isOp("-") {
		neg := p.next().text == "-"
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		if neg {
			right = Scale(right, scalar.Int(-1))
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return AddOf(terms...), nil
}

func (p *parser) startsOperand() bool {
	t := p.peek()
	switch t.kind {
	case tokNumber, tokIdent, tokKet, tokBra:
		return true
	case tokOp:
		return t.text == "("
	}
	return false
}

func (p *parser) product() (Expr, error) {
	left, err := p.tensor()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for {
		switch {
		case p.isOp("*"):
			p.next()
		case p.isOp("/"):
			t := p.next()
			d, err := p.tensor()
			if err != nil {
				return nil, err
			}
			n, ok := d.(*Num)
			if !ok {
				return nil, &SyntaxError{Offset: t.pos, Msg: "divisor must be a scalar"}
			}
			inv, ok := n.v.Inv()
			if !ok {
				return nil, &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("cannot divide by %s", n)}
			}
			factors = append(factors, N(inv))
			continue
		case p.startsOperand():
		default:
			return MulOf(factors...), nil
		}
		right, err := p.tensor()
		if err != nil {
			return nil, err
		}
		factors = append(factors, right)
	}
}

func (p *parser) tensor() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("@") {
		return left, nil
	}
	factors := []Expr{left}
	for p.isOp("@") {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		factors = append(factors, right)
	}
	return TensorOf(factors...), nil
}

func (p *parser) unary() (Expr, error) {
	switch {
	case p.isOp("-"):
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Scale(x, scalar.Int(-1)), nil
	case p.isOp("+"):
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	t := p.next()
	e, err := p.unary()
	if err != nil {
		return nil, err
	}
	n, ok := e.(*Num)
	if !ok {
		return nil, &SyntaxError{Offset: t.pos, Msg: "exponent must be a scalar"}
	}
	if b, ok := base.(*Num); ok {
		return scalarPow(b.v, n.v, t.pos)
	}
	return PowOf(base, n.v), nil
}

func scalarPow(b, e scalar.Value, pos int) (Expr, error) {
	if k, ok := e.Int64(); ok {
		if v, ok := b.Pow(int(k)); ok {
			return N(v), nil
		}
	}
	if e.Equal(scalar.Frac(1, 2)) {
		if r, ok := b.Rat(); ok {
			return N(scalar.SqrtRat(r)), nil
		}
	}
	return nil, &SyntaxError{Offset: pos, Msg: fmt.Sprintf("unsupported scalar power %s^%s", b, e)}
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("bad number %q", t.text)}
		}
		return N(scalar.Rat(r)), nil

	case tokKet:
		return basisProduct(t.text, func(l string) Expr { return KetOf(l) }), nil

	case tokBra:
		return basisProduct(t.text, func(l string) Expr { return BraOf(l) }), nil

	case tokIdent:
		return p.ident(t)

	case tokOp:
		if t.text == "(" {
			e, err := p.sum()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	}
	return nil, &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf("unexpected %s", t)}
}

// basisProduct turns a multi-digit binary label into a tensor product of
// single-qubit basis states.
func basisProduct(label string, mk func(string) Expr) Expr {
	if len(label) < 2 || strings.Trim(label, "01") != "" {
		return mk(label)
	}
	factors := make([]Expr, len(label))
	for i := range label {
		factors[i] = mk(label[i : i+1])
	}
	return TensorOf(factors...)
}

func (p *parser) ident(t token) (Expr, error) {
	name := t.text
	switch name {
	case "i":
		return N(scalar.I()), nil
	case "pi", scalar.PiName:
		return N(scalar.Pi()), nil
	case "sqrt", "cos", "sin", "exp":
		arg, err := p.scalarArg(t)
		if err != nil {
			return nil, err
		}
		switch name {
		case "cos":
			return N(scalar.Cos(arg)), nil
		case "sin":
			return N(scalar.Sin(arg)), nil
		case "exp":
			return N(scalar.Exp(arg)), nil
		}
		r, ok := arg.Rat()
		if !ok {
			return nil, &SyntaxError{Offset: t.pos, Msg: "sqrt of a non-rational value"}
		}
		return N(scalar.SqrtRat(r)), nil
	}

	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) {
		return N(scalar.Symbol(name)), nil
	}
	if !p.isOp("(") {
		return S(name), nil
	}

	// Name(args): a gate when every argument is scalar, otherwise the
	// operator applied to a single parenthesised operand.
	open := p.next()
	var args []Expr
	for {
		a, err := p.sum()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	params := make([]scalar.Value, 0, len(args))
	for _, a := range args {
		n, ok := a.(*Num)
		if !ok {
			if len(args) == 1 {
				return MulOf(S(name), a), nil
			}
			return nil, &SyntaxError{Offset: open.pos, Msg: fmt.Sprintf("gate %s takes scalar arguments", name)}
		}
		params = append(params, n.v)
	}
	return GateOf(name, params...), nil
}

func (p *parser) scalarArg(fn token) (scalar.Value, error) {
	if err := p.expect("("); err != nil {
		return scalar.Value{}, err
	}
	a, err := p.sum()
	if err != nil {
		return scalar.Value{}, err
	}
	if err := p.expect(")"); err != nil {
		return scalar.Value{}, err
	}
	n, ok := a.(*Num)
	if !ok {
		return scalar.Value{}, &SyntaxError{Offset: fn.pos, Msg: fmt.Sprintf("%s takes a scalar argument", fn.text)}
	}
	return n.v, nil
}
