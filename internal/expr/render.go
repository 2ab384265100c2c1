package expr

import (
	"strings"

	"qdirac/internal/scalar"
)

// Plain rendering is re-parseable by Parse. Kets and bras use the
// mathematical angle brackets ⟨ ⟩.

func (n *Num) String() string { return n.v.String() }
func (s *Sym) String() string { return s.name }
func (k *Ket) String() string { return "|" + k.label + "⟩" }
func (b *Bra) String() string { return "⟨" + b.label + "|" }

func (o *Outer) String() string { return o.ket.String() + o.bra.String() }

func (i *Inner) String() string { return "⟨" + i.bra.label + "|" + i.ket.label + "⟩" }

func (a *Add) String() string {
	return joinSigned(a.terms, func(e Expr) string { return e.String() })
}

func (m *Mul) String() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		parts[i] = f.String()
		if f.Kind() == KindAdd {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return coeffPrefix(m.coeff, m.coeff.String, "(", ")", "*") + strings.Join(parts, "*")
}

func (t *Tensor) String() string {
	parts := make([]string, len(t.factors))
	for i, f := range t.factors {
		parts[i] = f.String()
		if k := f.Kind(); k == KindAdd || k == KindMul {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, "⊗")
}

func (p *Pow) String() string {
	base := p.base.String()
	if needsGroup(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if n, ok := p.exp.Int64(); !ok || n < 0 {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (g *Gate) String() string {
	parts := make([]string, len(g.params))
	for i, v := range g.params {
		parts[i] = v.String()
	}
	return g.name + "(" + strings.Join(parts, ", ") + ")"
}

func (n *Num) LaTeX() string { return n.v.LaTeX() }
func (s *Sym) LaTeX() string { return scalar.LaTeXName(s.name) }

func (k *Ket) LaTeX() string {
	return `{\left|` + scalar.LaTeXName(k.label) + `\right\rangle }`
}

func (b *Bra) LaTeX() string {
	return `{\left\langle ` + scalar.LaTeXName(b.label) + `\right|}`
}

func (o *Outer) LaTeX() string { return o.ket.LaTeX() + o.bra.LaTeX() }

func (i *Inner) LaTeX() string {
	return `\left\langle ` + scalar.LaTeXName(i.bra.label) + ` \middle| ` + scalar.LaTeXName(i.ket.label) + ` \right\rangle`
}

func (a *Add) LaTeX() string {
	return joinSigned(a.terms, func(e Expr) string { return e.LaTeX() })
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		parts[i] = f.LaTeX()
		if f.Kind() == KindAdd {
			parts[i] = `\left(` + parts[i] + `\right)`
		}
	}
	return coeffPrefix(m.coeff, m.coeff.LaTeX, `\left(`, `\right)`, " ") + strings.Join(parts, " ")
}

func (t *Tensor) LaTeX() string {
	parts := make([]string, len(t.factors))
	for i, f := range t.factors {
		if k := f.Kind(); k == KindAdd || k == KindMul {
			parts[i] = `\left(` + f.LaTeX() + `\right)`
		} else {
			parts[i] = "{" + f.LaTeX() + "}"
		}
	}
	return strings.Join(parts, `\otimes `)
}

func (p *Pow) LaTeX() string {
	base := p.base.LaTeX()
	if needsGroup(p.base) {
		base = `\left(` + base + `\right)`
	}
	return "{" + base + "}^{" + p.exp.LaTeX() + "}"
}

func (g *Gate) LaTeX() string {
	parts := make([]string, len(g.params))
	for i, v := range g.params {
		parts[i] = v.LaTeX()
	}
	return `\mathrm{` + g.name + `}\left(` + strings.Join(parts, ", ") + `\right)`
}

func needsGroup(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Tensor, *Outer, *Inner:
		return true
	case *Num:
		return v.v.Len() > 1 || v.v.Negative()
	}
	return false
}

// coeffPrefix renders the coefficient of a product followed by sep. A unit
// coefficient renders as nothing and -1 as a bare minus sign.
func coeffPrefix(c scalar.Value, render func() string, open, closing, sep string) string {
	switch {
	case c.IsOne():
		return ""
	case c.Equal(scalar.Int(-1)):
		return "-"
	}
	s := render()
	if c.Len() > 1 {
		s = open + s + closing
	}
	return s + sep
}

func joinSigned(terms []Expr, render func(Expr) string) string {
	var sb strings.Builder
	for i, t := range terms {
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
