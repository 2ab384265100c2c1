package expr

import "qdirac/internal/scalar"

// Walk visits e and its children depth-first, pre-order. Returning false
// from fn stops the descent into that node's children.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, c := range children(e) {
		Walk(c, fn)
	}
}

func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Tensor:
		return v.factors
	case *Pow:
		return []Expr{v.base}
	case *Outer:
		return []Expr{v.ket, v.bra}
	case *Inner:
		return []Expr{v.bra, v.ket}
	}
	return nil
}

// Rewrite rebuilds e bottom-up, replacing every node x with fn(x) after its
// children have been rewritten. The normalising constructors run on each
// rebuilt node.
func Rewrite(e Expr, fn func(Expr) Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Rewrite(t, fn)
		}
		return fn(AddOf(terms...))
	case *Mul:
		factors := make([]Expr, 0, len(v.factors)+1)
		factors = append(factors, N(v.coeff))
		for _, f := range v.factors {
			factors = append(factors, Rewrite(f, fn))
		}
		return fn(MulOf(factors...))
	case *Tensor:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = Rewrite(f, fn)
		}
		return fn(TensorOf(factors...))
	case *Pow:
		return fn(PowOf(Rewrite(v.base, fn), v.exp))
	}
	return fn(e)
}

// Substitute replaces every subtree equal to from with to.
func Substitute(e, from, to Expr) Expr {
	return Rewrite(e, func(x Expr) Expr {
		if x.Equal(from) {
			return to
		}
		return x
	})
}

// SubstituteScalar replaces the scalar symbol name with v in every
// coefficient, exponent and gate parameter of e.
func SubstituteScalar(e Expr, name string, v scalar.Value) Expr {
	switch x := e.(type) {
	case *Num:
		return N(x.v.Substitute(name, v))
	case *Gate:
		params := make([]scalar.Value, len(x.params))
		for i, p := range x.params {
			params[i] = p.Substitute(name, v)
		}
		return GateOf(x.name, params...)
	case *Add:
		terms := make([]Expr, len(x.terms))
		for i, t := range x.terms {
			terms[i] = SubstituteScalar(t, name, v)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, 0, len(x.factors)+1)
		factors = append(factors, N(x.coeff.Substitute(name, v)))
		for _, f := range x.factors {
			factors = append(factors, SubstituteScalar(f, name, v))
		}
		return MulOf(factors...)
	case *Tensor:
		factors := make([]Expr, len(x.factors))
		for i, f := range x.factors {
			factors[i] = SubstituteScalar(f, name, v)
		}
		return TensorOf(factors...)
	case *Pow:
		return PowOf(SubstituteScalar(x.base, name, v), x.exp.Substitute(name, v))
	}
	return e
}
