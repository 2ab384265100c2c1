// Package scalar implements the exact coefficients that appear in bra-ket
// expressions.
//
// A Value is a finite sum of terms. Each term is a Gaussian rational
// (re + im·i, both math/big.Rat) times the square root of a square-free
// integer times a monomial over symbols and elementary function atoms
// (cos, sin, exp). Every constructor returns the canonical form, so two
// Values are equal exactly when their terms are equal.
package scalar

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// PiName is the symbol name used for π.
const PiName = "π"

// Value is an immutable exact scalar. The zero value is 0.
type Value struct {
	terms []term
}

type term struct {
	re, im  *big.Rat
	radical int64 // square-free, >= 1
	mono    monomial
	key     string
}

// atom is a symbol (arg == nil) or a named function applied to a Value.
type atom struct {
	name string
	arg  *Value
}

type power struct {
	atom atom
	exp  int
	key  string
}

type monomial []power

func mkTerm(re, im *big.Rat, radical int64, mono monomial) term {
	return term{re: re, im: im, radical: radical, mono: mono, key: mono.key() + "#" + strconv.FormatInt(radical, 10)}
}

func (a atom) key() string {
	if a.arg == nil {
		return a.name
	}
	return a.name + "(" + a.arg.String() + ")"
}

func (m monomial) key() string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, len(m))
	for i, p := range m {
		parts[i] = p.key
		if p.exp != 1 {
			parts[i] += "^" + strconv.Itoa(p.exp)
		}
	}
	return strings.Join(parts, "*")
}

func mulMono(a, b monomial) monomial {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(monomial, 0, len(a)+len(b))
	out = append(out, a...)
	for _, p := range b {
		merged := false
		for i := range out {
			if out[i].key == p.key {
				out[i].exp += p.exp
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func (t term) isZero() bool { return t.re.Sign() == 0 && t.im.Sign() == 0 }

func mulTerm(a, b term) term {
	re := new(big.Rat).Sub(new(big.Rat).Mul(a.re, b.re), new(big.Rat).Mul(a.im, b.im))
	im := new(big.Rat).Add(new(big.Rat).Mul(a.re, b.im), new(big.Rat).Mul(a.im, b.re))
	g := gcd(a.radical, b.radical)
	radical := (a.radical / g) * (b.radical / g)
	if g != 1 {
		f := new(big.Rat).SetInt64(g)
		re.Mul(re, f)
		im.Mul(im, f)
	}
	return mkTerm(re, im, radical, mulMono(a.mono, b.mono))
}

func normalize(ts []term) Value {
	index := make(map[string]int, len(ts))
	merged := make([]term, 0, len(ts))
	for _, t := range ts {
		if i, ok := index[t.key]; ok {
			m := merged[i]
			merged[i] = mkTerm(new(big.Rat).Add(m.re, t.re), new(big.Rat).Add(m.im, t.im), m.radical, m.mono)
			continue
		}
		index[t.key] = len(merged)
		merged = append(merged, t)
	}
	kept := make([]term, 0, len(merged))
	for _, t := range merged {
		if !t.isZero() {
			kept = append(kept, t)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].key < kept[j].key })
	if len(kept) == 0 {
		return Value{}
	}
	return Value{terms: kept}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// squareFree splits n > 0 into outside²·inside with inside square-free.
func squareFree(n int64) (outside, inside int64) {
	outside, inside = 1, 1
	for p := int64(2); p*p <= n; p++ {
		for n%(p*p) == 0 {
			n /= p * p
			outside *= p
		}
		if n%p == 0 {
			n /= p
			inside *= p
		}
	}
	return outside, inside * n
}

// ============================================================
// Constructors
// ============================================================

func fromRat(r *big.Rat) Value {
	if r.Sign() == 0 {
		return Value{}
	}
	return Value{terms: []term{mkTerm(r, new(big.Rat), 1, nil)}}
}

func fromAtom(a atom) Value {
	p := power{atom: a, exp: 1, key: a.key()}
	return Value{terms: []term{mkTerm(big.NewRat(1, 1), new(big.Rat), 1, monomial{p})}}
}

// Int returns the integer n.
func Int(n int64) Value { return fromRat(new(big.Rat).SetInt64(n)) }

// One returns 1.
func One() Value { return Int(1) }

// Zero returns 0.
func Zero() Value { return Value{} }

// Frac returns p/q. It panics when q is zero.
func Frac(p, q int64) Value {
	if q == 0 {
		panic("scalar: denominator is zero")
	}
	return fromRat(big.NewRat(p, q))
}

// Rat returns a copy of r as a Value.
func Rat(r *big.Rat) Value { return fromRat(new(big.Rat).Set(r)) }

// I returns the imaginary unit.
func I() Value {
	return Value{terms: []term{mkTerm(new(big.Rat), big.NewRat(1, 1), 1, nil)}}
}

// Symbol returns a named scalar placeholder such as θ.
func Symbol(name string) Value { return fromAtom(atom{name: name}) }

// Pi returns the symbol π.
func Pi() Value { return Symbol(PiName) }

// Sqrt returns the principal square root of n.
func Sqrt(n int64) Value { return SqrtRat(new(big.Rat).SetInt64(n)) }

// SqrtRat returns the principal square root of r. Negative radicands give
// imaginary results. It panics when the reduced radicand does not fit in an
// int64.
func SqrtRat(r *big.Rat) Value {
	if r.Sign() == 0 {
		return Value{}
	}
	mag := new(big.Rat).Abs(r)
	// sqrt(p/q) = sqrt(p·q)/q
	pq := new(big.Int).Mul(mag.Num(), mag.Denom())
	if !pq.IsInt64() {
		panic("scalar: radicand too large")
	}
	out, in := squareFree(pq.Int64())
	coeff := new(big.Rat).SetFrac(big.NewInt(out), mag.Denom())
	if r.Sign() < 0 {
		return Value{terms: []term{mkTerm(new(big.Rat), coeff, in, nil)}}
	}
	return Value{terms: []term{mkTerm(coeff, new(big.Rat), in, nil)}}
}

// ============================================================
// Arithmetic
// ============================================================

// Add returns v + o.
func (v Value) Add(o Value) Value {
	if len(o.terms) == 0 {
		return v
	}
	if len(v.terms) == 0 {
		return o
	}
	ts := make([]term, 0, len(v.terms)+len(o.terms))
	ts = append(ts, v.terms...)
	ts = append(ts, o.terms...)
	return normalize(ts)
}

// Neg returns -v.
func (v Value) Neg() Value {
	ts := make([]term, len(v.terms))
	for i, t := range v.terms {
		ts[i] = mkTerm(new(big.Rat).Neg(t.re), new(big.Rat).Neg(t.im), t.radical, t.mono)
	}
	return Value{terms: ts}
}

// Sub returns v - o.
func (v Value) Sub(o Value) Value { return v.Add(o.Neg()) }

// Mul returns v·o.
func (v Value) Mul(o Value) Value {
	if len(v.terms) == 0 || len(o.terms) == 0 {
		return Value{}
	}
	ts := make([]term, 0, len(v.terms)*len(o.terms))
	var folded []Value
	for _, a := range v.terms {
		for _, b := range o.terms {
			t := mulTerm(a, b)
			if expCount(t.mono) > 1 {
				folded = append(folded, foldExp(t))
				continue
			}
			ts = append(ts, t)
		}
	}
	out := normalize(ts)
	for _, f := range folded {
		out = out.Add(f)
	}
	return out
}

func expCount(m monomial) int {
	n := 0
	for _, p := range m {
		if p.atom.name == "exp" && p.atom.arg != nil {
			n += p.exp
		}
	}
	return n
}

// foldExp rewrites exp(a)^j·exp(b)^k in t as exp(j·a + k·b).
func foldExp(t term) Value {
	var arg Value
	rest := make(monomial, 0, len(t.mono))
	for _, p := range t.mono {
		if p.atom.name == "exp" && p.atom.arg != nil {
			arg = arg.Add(p.atom.arg.Mul(Int(int64(p.exp))))
			continue
		}
		rest = append(rest, p)
	}
	base := Value{terms: []term{mkTerm(t.re, t.im, t.radical, rest)}}
	return base.Mul(Exp(arg))
}

// Inv returns 1/v. Only single-term constants (no symbols or functions) are
// invertible; ok is false otherwise.
func (v Value) Inv() (inv Value, ok bool) {
	if len(v.terms) != 1 || len(v.terms[0].mono) != 0 {
		return Value{}, false
	}
	t := v.terms[0]
	// 1/((a+bi)·√r) = (a-bi)·√r / ((a²+b²)·r)
	den := new(big.Rat).Add(new(big.Rat).Mul(t.re, t.re), new(big.Rat).Mul(t.im, t.im))
	den.Mul(den, new(big.Rat).SetInt64(t.radical))
	re := new(big.Rat).Quo(t.re, den)
	im := new(big.Rat).Neg(new(big.Rat).Quo(t.im, den))
	return Value{terms: []term{mkTerm(re, im, t.radical, nil)}}, true
}

// Quo returns v/o when o is invertible.
func (v Value) Quo(o Value) (Value, bool) {
	inv, ok := o.Inv()
	if !ok {
		return Value{}, false
	}
	return v.Mul(inv), true
}

// Pow returns v^n. Negative n requires v to be invertible.
func (v Value) Pow(n int) (Value, bool) {
	base := v
	if n < 0 {
		inv, ok := v.Inv()
		if !ok {
			return Value{}, false
		}
		base, n = inv, -n
	}
	out := One()
	for i := 0; i < n; i++ {
		out = out.Mul(base)
	}
	return out, true
}

// ============================================================
// Predicates and accessors
// ============================================================

// IsZero reports whether v is 0.
func (v Value) IsZero() bool { return len(v.terms) == 0 }

// IsOne reports whether v is 1.
func (v Value) IsOne() bool {
	r, ok := v.Rat()
	return ok && r.Cmp(big.NewRat(1, 1)) == 0
}

// IsConstant reports whether v contains no symbols or function atoms.
func (v Value) IsConstant() bool {
	for _, t := range v.terms {
		if len(t.mono) != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of terms in v.
func (v Value) Len() int { return len(v.terms) }

// Rat returns v as a rational number when it is one.
func (v Value) Rat() (*big.Rat, bool) {
	if len(v.terms) == 0 {
		return new(big.Rat), true
	}
	if len(v.terms) != 1 {
		return nil, false
	}
	t := v.terms[0]
	if len(t.mono) != 0 || t.radical != 1 || t.im.Sign() != 0 {
		return nil, false
	}
	return new(big.Rat).Set(t.re), true
}

// Int64 returns v as an integer when it is one.
func (v Value) Int64() (int64, bool) {
	r, ok := v.Rat()
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// Negative reports whether the leading term of v has a negative sign.
func (v Value) Negative() bool {
	if len(v.terms) == 0 {
		return false
	}
	t := v.terms[0]
	if s := t.re.Sign(); s != 0 {
		return s < 0
	}
	return t.im.Sign() < 0
}

// Equal reports whether v and o have the same canonical form.
func (v Value) Equal(o Value) bool {
	if len(v.terms) != len(o.terms) {
		return false
	}
	for i := range v.terms {
		a, b := v.terms[i], o.terms[i]
		if a.key != b.key || a.re.Cmp(b.re) != 0 || a.im.Cmp(b.im) != 0 {
			return false
		}
	}
	return true
}
