// Package expr defines the Dirac-notation expression tree.
//
// Every node is immutable and every constructor returns a normalised tree:
// nested sums and products are flattened, numeric factors collect into a
// single product coefficient, an adjacent ket·bra becomes an outer product
// and an adjacent bra·ket an inner product, sums merge like terms, and tensor
// products pull scalar factors out front. Two expressions built from the
// same value therefore compare Equal structurally.
package expr

import (
	"sort"

	"qdirac/internal/scalar"
)

// Kind identifies the concrete type of an Expr.
type Kind int

const (
	KindNum Kind = iota
	KindSym
	KindKet
	KindBra
	KindOuter
	KindInner
	KindAdd
	KindMul
	KindTensor
	KindPow
	KindGate
)

var kindNames = [...]string{"num", "sym", "ket", "bra", "outer", "inner", "add", "mul", "tensor", "pow", "gate"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Expr is a node of the expression tree. The set of implementations is
// closed; callers switch on the concrete pointer types.
type Expr interface {
	Kind() Kind
	String() string
	LaTeX() string
	Equal(other Expr) bool
}

// Num is an exact scalar.
type Num struct{ v scalar.Value }

// Sym is a named non-commutative symbol, usually a gate name such as H.
type Sym struct{ name string }

// Ket is |label⟩.
type Ket struct{ label string }

// Bra is ⟨label|.
type Bra struct{ label string }

// Outer is |ket⟩⟨bra|.
type Outer struct {
	ket *Ket
	bra *Bra
}

// Inner is ⟨bra|ket⟩.
type Inner struct {
	bra *Bra
	ket *Ket
}

// Add is a sum of at least two terms in canonical order.
type Add struct{ terms []Expr }

// Mul is coeff times an ordered, non-commutative product of factors. The
// factors never contain a Num or a Mul.
type Mul struct {
	coeff   scalar.Value
	factors []Expr
}

// Tensor is an ordered tensor product of at least two factors, leftmost
// factor acting on qubit 0.
type Tensor struct{ factors []Expr }

// Pow is base raised to a scalar exponent.
type Pow struct {
	base Expr
	exp  scalar.Value
}

// Gate is a named gate carrying scalar parameters, e.g. RX(θ).
type Gate struct {
	name   string
	params []scalar.Value
}

func (*Num) Kind() Kind    { return KindNum }
func (*Sym) Kind() Kind    { return KindSym }
func (*Ket) Kind() Kind    { return KindKet }
func (*Bra) Kind() Kind    { return KindBra }
func (*Outer) Kind() Kind  { return KindOuter }
func (*Inner) Kind() Kind  { return KindInner }
func (*Add) Kind() Kind    { return KindAdd }
func (*Mul) Kind() Kind    { return KindMul }
func (*Tensor) Kind() Kind { return KindTensor }
func (*Pow) Kind() Kind    { return KindPow }
func (*Gate) Kind() Kind   { return KindGate }

// ============================================================
// Leaf constructors and accessors
// ============================================================

// N wraps a scalar.
func N(v scalar.Value) *Num { return &Num{v: v} }

// Int returns the integer n as an expression.
func Int(n int64) *Num { return N(scalar.Int(n)) }

// Value returns the wrapped scalar.
func (n *Num) Value() scalar.Value { return n.v }

// S returns the symbol name.
func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Name() string { return s.name }

// KetOf returns |label⟩.
func KetOf(label string) *Ket { return &Ket{label: label} }

func (k *Ket) Label() string { return k.label }

// IsBasis reports whether k is |0⟩ or |1⟩.
func (k *Ket) IsBasis() bool { return k.label == "0" || k.label == "1" }

// Dagger returns ⟨label|.
func (k *Ket) Dagger() *Bra { return BraOf(k.label) }

// BraOf returns ⟨label|.
func BraOf(label string) *Bra { return &Bra{label: label} }

func (b *Bra) Label() string { return b.label }

// Dagger returns |label⟩.
func (b *Bra) Dagger() *Ket { return KetOf(b.label) }

// OuterOf returns |k⟩⟨b|.
func OuterOf(k *Ket, b *Bra) *Outer { return &Outer{ket: k, bra: b} }

func (o *Outer) Ket() *Ket { return o.ket }
func (o *Outer) Bra() *Bra { return o.bra }

// InnerOf returns ⟨b|k⟩.
func InnerOf(b *Bra, k *Ket) *Inner { return &Inner{bra: b, ket: k} }

func (i *Inner) Bra() *Bra { return i.bra }
func (i *Inner) Ket() *Ket { return i.ket }

// GateOf returns a parameterised gate application.
func GateOf(name string, params ...scalar.Value) *Gate {
	return &Gate{name: name, params: append([]scalar.Value(nil), params...)}
}

func (g *Gate) Name() string { return g.name }

// Params returns a copy of the gate parameters.
func (g *Gate) Params() []scalar.Value { return append([]scalar.Value(nil), g.params...) }

// Terms returns a copy of the addends.
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

// Coeff returns the scalar coefficient of the product.
func (m *Mul) Coeff() scalar.Value { return m.coeff }

// Factors returns a copy of the non-scalar factors.
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// Factors returns a copy of the tensor factors.
func (t *Tensor) Factors() []Expr { return append([]Expr(nil), t.factors...) }

// Len returns the number of tensor factors.
func (t *Tensor) Len() int { return len(t.factors) }

func (p *Pow) Base() Expr        { return p.base }
func (p *Pow) Exp() scalar.Value { return p.exp }

// ============================================================
// Normalising constructors
// ============================================================

// AddOf returns the canonical sum of terms.
func AddOf(terms ...Expr) Expr {
	type group struct {
		coeff scalar.Value
		rest  Expr
		key   string
	}
	var constant scalar.Value
	var groups []*group
	index := map[string]*group{}

	var visit func(Expr)
	visit = func(t Expr) {
		switch v := t.(type) {
		case *Add:
			for _, s := range v.terms {
				visit(s)
			}
		case *Num:
			constant = constant.Add(v.v)
		default:
			c, rest := Split(t)
			k := rest.String()
			if g, ok := index[k]; ok {
				g.coeff = g.coeff.Add(c)
				return
			}
			g := &group{coeff: c, rest: rest, key: k}
			index[k] = g
			groups = append(groups, g)
		}
	}
	for _, t := range terms {
		visit(t)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].key < groups[j].key })
	var out []Expr
	if !constant.IsZero() {
		out = append(out, N(constant))
	}
	for _, g := range groups {
		if !g.coeff.IsZero() {
			out = append(out, Scale(g.rest, g.coeff))
		}
	}
	switch len(out) {
	case 0:
		return Int(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// MulOf returns the canonical product of factors, in order.
func MulOf(factors ...Expr) Expr {
	coeff := scalar.One()
	var flat []Expr
	var visit func(Expr)
	visit = func(f Expr) {
		switch v := f.(type) {
		case *Mul:
			coeff = coeff.Mul(v.coeff)
			for _, g := range v.factors {
				visit(g)
			}
		case *Num:
			coeff = coeff.Mul(v.v)
		default:
			flat = append(flat, f)
		}
	}
	for _, f := range factors {
		visit(f)
	}
	if coeff.IsZero() {
		return Int(0)
	}

	merged := make([]Expr, 0, len(flat))
	for _, f := range flat {
		if n := len(merged); n > 0 {
			switch last := merged[n-1].(type) {
			case *Ket:
				if b, ok := f.(*Bra); ok {
					merged[n-1] = OuterOf(last, b)
					continue
				}
			case *Bra:
				if k, ok := f.(*Ket); ok {
					merged[n-1] = InnerOf(last, k)
					continue
				}
			}
		}
		merged = append(merged, f)
	}

	// inner products are scalars and commute to the front
	ordered := make([]Expr, 0, len(merged))
	for _, f := range merged {
		if f.Kind() == KindInner {
			ordered = append(ordered, f)
		}
	}
	for _, f := range merged {
		if f.Kind() != KindInner {
			ordered = append(ordered, f)
		}
	}

	switch {
	case len(ordered) == 0:
		return N(coeff)
	case len(ordered) == 1 && coeff.IsOne():
		return ordered[0]
	}
	return &Mul{coeff: coeff, factors: ordered}
}

// TensorOf returns the canonical tensor product of factors. Nested tensors
// flatten, factor coefficients move out front and a zero factor makes the
// whole product zero.
func TensorOf(factors ...Expr) Expr {
	coeff := scalar.One()
	var flat []Expr
	zero := false
	var visit func(Expr)
	visit = func(f Expr) {
		switch v := f.(type) {
		case *Tensor:
			for _, g := range v.factors {
				visit(g)
			}
		case *Mul:
			coeff = coeff.Mul(v.coeff)
			if len(v.factors) == 1 {
				visit(v.factors[0])
				return
			}
			flat = append(flat, &Mul{coeff: scalar.One(), factors: v.factors})
		case *Num:
			if v.v.IsZero() {
				zero = true
			}
			flat = append(flat, f)
		default:
			flat = append(flat, f)
		}
	}
	for _, f := range factors {
		visit(f)
	}
	if zero || coeff.IsZero() {
		return Int(0)
	}
	if len(flat) == 1 {
		return Scale(flat[0], coeff)
	}
	return Scale(&Tensor{factors: flat}, coeff)
}

// PowOf returns base^exp. Exponent 0 gives 1 and exponent 1 gives base.
func PowOf(base Expr, exp scalar.Value) Expr {
	if exp.IsZero() {
		return Int(1)
	}
	if exp.IsOne() {
		return base
	}
	if n, ok := base.(*Num); ok {
		if k, ok := exp.Int64(); ok {
			if v, ok := n.v.Pow(int(k)); ok {
				return N(v)
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

// Scale returns c·e.
func Scale(e Expr, c scalar.Value) Expr {
	if c.IsOne() {
		return e
	}
	return MulOf(N(c), e)
}

// Split separates e into its scalar coefficient and the remaining
// operator part. For a Num the rest is Int(1).
func Split(e Expr) (scalar.Value, Expr) {
	switch v := e.(type) {
	case *Num:
		return v.v, Int(1)
	case *Mul:
		if len(v.factors) == 1 {
			return v.coeff, v.factors[0]
		}
		return v.coeff, &Mul{coeff: scalar.One(), factors: v.factors}
	}
	return scalar.One(), e
}

// IsZero reports whether e is the number 0.
func IsZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.v.IsZero()
}

// ============================================================
// Structural equality
// ============================================================

func (n *Num) Equal(o Expr) bool {
	m, ok := o.(*Num)
	return ok && n.v.Equal(m.v)
}

func (s *Sym) Equal(o Expr) bool {
	t, ok := o.(*Sym)
	return ok && s.name == t.name
}

func (k *Ket) Equal(o Expr) bool {
	j, ok := o.(*Ket)
	return ok && k.label == j.label
}

func (b *Bra) Equal(o Expr) bool {
	c, ok := o.(*Bra)
	return ok && b.label == c.label
}

func (x *Outer) Equal(o Expr) bool {
	y, ok := o.(*Outer)
	return ok && x.ket.Equal(y.ket) && x.bra.Equal(y.bra)
}

func (x *Inner) Equal(o Expr) bool {
	y, ok := o.(*Inner)
	return ok && x.bra.Equal(y.bra) && x.ket.Equal(y.ket)
}

func (a *Add) Equal(o Expr) bool {
	b, ok := o.(*Add)
	return ok && equalAll(a.terms, b.terms)
}

func (m *Mul) Equal(o Expr) bool {
	n, ok := o.(*Mul)
	return ok && m.coeff.Equal(n.coeff) && equalAll(m.factors, n.factors)
}

func (t *Tensor) Equal(o Expr) bool {
	u, ok := o.(*Tensor)
	return ok && equalAll(t.factors, u.factors)
}

func (p *Pow) Equal(o Expr) bool {
	q, ok := o.(*Pow)
	return ok && p.base.Equal(q.base) && p.exp.Equal(q.exp)
}

func (g *Gate) Equal(o Expr) bool {
	h, ok := o.(*Gate)
	if !ok || g.name != h.name || len(g.params) != len(h.params) {
		return false
	}
	for i := range g.params {
		if !g.params[i].Equal(h.params[i]) {
			return false
		}
	}
	return true
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
