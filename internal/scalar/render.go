package scalar

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// String renders v in the plain syntax accepted by the expression parser,
// e.g. "sqrt(2)/2" or "cos(θ/2) - i*sin(θ/2)".
func (v Value) String() string {
	return v.join(func(t term) string { return t.plain() })
}

// LaTeX renders v as a LaTeX math fragment.
func (v Value) LaTeX() string {
	return v.join(func(t term) string { return t.latex() })
}

func (v Value) join(render func(term) string) string {
	if len(v.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range v.terms {
		s := render(t)
		if i > 0 {
			if strings.HasPrefix(s, "-") {
				sb.WriteString(" - ")
				s = s[1:]
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// coefficient describes how the Gaussian rational of a term is printed.
// When both parts are non-zero the pair is rendered as a parenthesised sum
// and the sign stays inside.
type coefficient struct {
	neg      bool
	num, den *big.Int
	imag     bool
	pair     *Value
}

func (t term) coefficient() coefficient {
	switch {
	case t.im.Sign() == 0:
		return coefficient{neg: t.re.Sign() < 0, num: new(big.Int).Abs(t.re.Num()), den: t.re.Denom()}
	case t.re.Sign() == 0:
		return coefficient{neg: t.im.Sign() < 0, num: new(big.Int).Abs(t.im.Num()), den: t.im.Denom(), imag: true}
	}
	pair := Value{terms: []term{
		mkTerm(t.re, new(big.Rat), 1, nil),
		mkTerm(new(big.Rat), t.im, 1, nil),
	}}
	return coefficient{pair: &pair, num: big.NewInt(1), den: big.NewInt(1)}
}

func (t term) plain() string {
	c := t.coefficient()
	var pieces []string
	if c.pair != nil {
		pieces = append(pieces, "("+c.pair.String()+")")
	} else {
		if c.num.Cmp(big.NewInt(1)) != 0 {
			pieces = append(pieces, c.num.String())
		}
		if c.imag {
			pieces = append(pieces, "i")
		}
	}
	if t.radical != 1 {
		pieces = append(pieces, "sqrt("+strconv.FormatInt(t.radical, 10)+")")
	}
	for _, p := range t.mono {
		pieces = append(pieces, p.plain())
	}
	s := strings.Join(pieces, "*")
	if s == "" {
		s = "1"
	}
	if c.den.Cmp(big.NewInt(1)) != 0 {
		s += "/" + c.den.String()
	}
	if c.neg {
		s = "-" + s
	}
	return s
}

func (t term) latex() string {
	c := t.coefficient()
	var pieces []string
	if c.pair != nil {
		pieces = append(pieces, `\left(`+c.pair.LaTeX()+`\right)`)
	} else {
		if c.num.Cmp(big.NewInt(1)) != 0 {
			pieces = append(pieces, c.num.String())
		}
		if c.imag {
			pieces = append(pieces, "i")
		}
	}
	if t.radical != 1 {
		pieces = append(pieces, `\sqrt{`+strconv.FormatInt(t.radical, 10)+`}`)
	}
	for _, p := range t.mono {
		pieces = append(pieces, p.latex())
	}
	s := strings.Join(pieces, " ")
	if s == "" {
		s = "1"
	}
	if c.den.Cmp(big.NewInt(1)) != 0 {
		s = `\frac{` + s + `}{` + c.den.String() + `}`
	}
	if c.neg {
		s = "-" + s
	}
	return s
}

func (p power) plain() string {
	s := p.key
	if p.exp != 1 {
		s += "^" + strconv.Itoa(p.exp)
	}
	return s
}

func (p power) latex() string {
	var s string
	a := p.atom
	switch {
	case a.arg == nil:
		s = LaTeXName(a.name)
	case a.name == "exp":
		s = `e^{` + a.arg.LaTeX() + `}`
	case a.name == "cos" || a.name == "sin":
		s = `\` + a.name + `{\left(` + a.arg.LaTeX() + ` \right)}`
	default:
		s = `\operatorname{` + a.name + `}{\left(` + a.arg.LaTeX() + ` \right)}`
	}
	if p.exp != 1 {
		s = "{" + s + "}^{" + strconv.Itoa(p.exp) + "}"
	}
	return s
}

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"theta": `\theta`, "phi": `\phi`, "psi": `\psi`, "lambda": `\lambda`,
	"mu": `\mu`, "omega": `\omega`, "pi": `\pi`,
	"α": `\alpha`, "β": `\beta`, "γ": `\gamma`, "δ": `\delta`,
	"θ": `\theta`, "φ": `\phi`, "ψ": `\psi`, "λ": `\lambda`,
	"μ": `\mu`, "ω": `\omega`, "π": `\pi`,
}

// LaTeXName renders an identifier: Greek names become their macro and a
// trailing run of digits becomes a subscript ("B0" -> "B_{0}").
func LaTeXName(name string) string {
	base := strings.TrimRightFunc(name, unicode.IsDigit)
	sub := name[len(base):]
	if base == "" {
		base, sub = name, ""
	}
	if g, ok := greek[base]; ok {
		base = g
	}
	if sub == "" {
		return base
	}
	return base + "_{" + sub + "}"
}
