package scalar

import (
	"math"
	"math/big"
	"math/cmplx"
)

// Cos returns cos(x). Rational multiples of π with denominator 1, 2, 3, 4 or
// 6 evaluate exactly; anything else stays symbolic.
func Cos(x Value) Value {
	if x.IsZero() {
		return One()
	}
	if q, ok := x.piMultiple(); ok {
		if v, ok := cosPi(q); ok {
			return v
		}
	}
	if x.Negative() {
		x = x.Neg()
	}
	return fromAtom(atom{name: "cos", arg: &x})
}

// Sin returns sin(x), exact at the same angles as Cos.
func Sin(x Value) Value {
	if x.IsZero() {
		return Value{}
	}
	if q, ok := x.piMultiple(); ok {
		if v, ok := sinPi(q); ok {
			return v
		}
	}
	if x.Negative() {
		n := x.Neg()
		return fromAtom(atom{name: "sin", arg: &n}).Neg()
	}
	return fromAtom(atom{name: "sin", arg: &x})
}

// Exp returns e^x. Purely imaginary multiples of π at the exact angles
// evaluate through Euler's formula.
func Exp(x Value) Value {
	if x.IsZero() {
		return One()
	}
	if q, ok := x.imagPiMultiple(); ok {
		c, okc := cosPi(q)
		s, oks := sinPi(q)
		if okc && oks {
			return c.Add(I().Mul(s))
		}
	}
	return fromAtom(atom{name: "exp", arg: &x})
}

func apply(name string, arg Value) Value {
	switch name {
	case "cos":
		return Cos(arg)
	case "sin":
		return Sin(arg)
	case "exp":
		return Exp(arg)
	}
	return fromAtom(atom{name: name, arg: &arg})
}

// piMultiple returns q when v == q·π for rational q.
func (v Value) piMultiple() (*big.Rat, bool) {
	t, ok := v.piTerm()
	if !ok || t.im.Sign() != 0 {
		return nil, false
	}
	return t.re, true
}

// imagPiMultiple returns q when v == q·i·π for rational q.
func (v Value) imagPiMultiple() (*big.Rat, bool) {
	t, ok := v.piTerm()
	if !ok || t.re.Sign() != 0 {
		return nil, false
	}
	return t.im, true
}

func (v Value) piTerm() (term, bool) {
	if len(v.terms) != 1 {
		return term{}, false
	}
	t := v.terms[0]
	if t.radical != 1 || len(t.mono) != 1 {
		return term{}, false
	}
	p := t.mono[0]
	if p.exp != 1 || p.atom.arg != nil || p.atom.name != PiName {
		return term{}, false
	}
	return t, true
}

// cosPi evaluates cos(q·π) exactly on the 30° and 45° grids.
func cosPi(q *big.Rat) (Value, bool) {
	k := new(big.Rat).Mul(q, big.NewRat(12, 1))
	if !k.IsInt() || !k.Num().IsInt64() {
		return Value{}, false
	}
	n := k.Num().Int64() % 24
	if n < 0 {
		n += 24
	}
	if n > 12 {
		n = 24 - n
	}
	half := Frac(1, 2)
	switch n {
	case 0:
		return Int(1), true
	case 2:
		return Sqrt(3).Mul(half), true
	case 3:
		return Sqrt(2).Mul(half), true
	case 4:
		return half, true
	case 6:
		return Value{}, true
	case 8:
		return half.Neg(), true
	case 9:
		return Sqrt(2).Mul(half).Neg(), true
	case 10:
		return Sqrt(3).Mul(half).Neg(), true
	case 12:
		return Int(-1), true
	}
	return Value{}, false
}

func sinPi(q *big.Rat) (Value, bool) {
	return cosPi(new(big.Rat).Sub(big.NewRat(1, 2), q))
}

// Substitute replaces every occurrence of the symbol name with w and
// re-evaluates the function atoms that contain it.
func (v Value) Substitute(name string, w Value) Value {
	out := Value{}
	for _, t := range v.terms {
		acc := Value{terms: []term{mkTerm(t.re, t.im, t.radical, nil)}}
		for _, p := range t.mono {
			f := p.atom.substitute(name, w)
			for k := 0; k < p.exp; k++ {
				acc = acc.Mul(f)
			}
		}
		out = out.Add(acc)
	}
	return out
}

func (a atom) substitute(name string, w Value) Value {
	if a.arg == nil {
		if a.name == name {
			return w
		}
		return fromAtom(a)
	}
	return apply(a.name, a.arg.Substitute(name, w))
}

// Symbols returns the free symbol names in v, π excluded.
func (v Value) Symbols() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(Value)
	walk = func(x Value) {
		for _, t := range x.terms {
			for _, p := range t.mono {
				if p.atom.arg != nil {
					walk(*p.atom.arg)
					continue
				}
				if p.atom.name != PiName && !seen[p.atom.name] {
					seen[p.atom.name] = true
					out = append(out, p.atom.name)
				}
			}
		}
	}
	walk(v)
	return out
}

// Complex evaluates v numerically. ok is false when v has free symbols.
func (v Value) Complex() (c complex128, ok bool) {
	for _, t := range v.terms {
		re, _ := t.re.Float64()
		im, _ := t.im.Float64()
		x := complex(re, im) * complex(math.Sqrt(float64(t.radical)), 0)
		for _, p := range t.mono {
			a, ok := p.atom.complex()
			if !ok {
				return 0, false
			}
			for k := 0; k < p.exp; k++ {
				x *= a
			}
		}
		c += x
	}
	return c, true
}

func (a atom) complex() (complex128, bool) {
	if a.arg == nil {
		if a.name == PiName {
			return complex(math.Pi, 0), true
		}
		return 0, false
	}
	x, ok := a.arg.Complex()
	if !ok {
		return 0, false
	}
	switch a.name {
	case "cos":
		return cmplx.Cos(x), true
	case "sin":
		return cmplx.Sin(x), true
	case "exp":
		return cmplx.Exp(x), true
	}
	return 0, false
}
