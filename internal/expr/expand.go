package expr

import (
	"errors"
	"fmt"
)

// ErrTensorShape is returned by ExpandTensor when a product combines tensor
// products of different widths, or a tensor product with a bare operator.
var ErrTensorShape = errors.New("expr: incompatible tensor product shapes")

// Expand distributes products over sums and unrolls non-negative integer
// powers of sums. Tensor products are left intact apart from expanding
// their factors.
func Expand(e Expr) Expr {
	out, _ := expand(e, false)
	return out
}

// ExpandTensor is Expand plus distribution of tensor products over sums in
// any factor and factor-wise merging of products of equal-width tensor
// products: (A⊗B)·(C⊗D) = (A·C)⊗(B·D).
func ExpandTensor(e Expr) (Expr, error) {
	return expand(e, true)
}

func expand(e Expr, tensor bool) (Expr, error) {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			x, err := expand(t, tensor)
			if err != nil {
				return nil, err
			}
			terms[i] = x
		}
		return AddOf(terms...), nil

	case *Mul:
		partials := [][]Expr{nil}
		for _, f := range v.factors {
			x, err := expand(f, tensor)
			if err != nil {
				return nil, err
			}
			partials = distribute(partials, x)
		}
		terms := make([]Expr, 0, len(partials))
		for _, p := range partials {
			var t Expr
			if tensor {
				var err error
				if t, err = mergeTensors(p); err != nil {
					return nil, err
				}
			} else {
				t = MulOf(p...)
			}
			terms = append(terms, Scale(t, v.coeff))
		}
		return AddOf(terms...), nil

	case *Tensor:
		if !tensor {
			factors := make([]Expr, len(v.factors))
			for i, f := range v.factors {
				factors[i] = Expand(f)
			}
			return TensorOf(factors...), nil
		}
		partials := [][]Expr{nil}
		for _, f := range v.factors {
			x, err := expand(f, true)
			if err != nil {
				return nil, err
			}
			partials = distribute(partials, x)
		}
		terms := make([]Expr, len(partials))
		for i, p := range partials {
			terms[i] = TensorOf(p...)
		}
		return AddOf(terms...), nil

	case *Pow:
		base, err := expand(v.base, tensor)
		if err != nil {
			return nil, err
		}
		n, ok := v.exp.Int64()
		if !ok || n < 0 || base.Kind() != KindAdd {
			return PowOf(base, v.exp), nil
		}
		factors := make([]Expr, n)
		for i := range factors {
			factors[i] = base
		}
		return expand(MulOf(factors...), tensor)
	}
	return e, nil
}

// distribute appends x to every partial product, forking once per addend
// when x is a sum.
func distribute(partials [][]Expr, x Expr) [][]Expr {
	add, ok := x.(*Add)
	if !ok {
		for i := range partials {
			partials[i] = append(partials[i], x)
		}
		return partials
	}
	out := make([][]Expr, 0, len(partials)*len(add.terms))
	for _, p := range partials {
		for _, t := range add.terms {
			q := make([]Expr, len(p), len(p)+1)
			copy(q, p)
			out = append(out, append(q, t))
		}
	}
	return out
}

// mergeTensors multiplies factors, combining tensor products factor-wise.
// Inner products and scalars ride along as coefficients.
func mergeTensors(factors []Expr) (Expr, error) {
	prod := MulOf(factors...)
	m, ok := prod.(*Mul)
	if !ok {
		return prod, nil
	}
	var scalars []Expr
	var tensors []*Tensor
	width := -1
	ops := 0
	for _, f := range m.factors {
		switch t := f.(type) {
		case *Inner:
			scalars = append(scalars, t)
		case *Tensor:
			if width >= 0 && t.Len() != width {
				return nil, fmt.Errorf("%w: widths %d and %d", ErrTensorShape, width, t.Len())
			}
			width = t.Len()
			tensors = append(tensors, t)
		default:
			ops++
		}
	}
	if len(tensors) < 2 && ops == 0 {
		return prod, nil
	}
	if len(tensors) == 0 {
		return prod, nil
	}
	if ops > 0 {
		return nil, fmt.Errorf("%w: operator multiplied by a %d-factor tensor product", ErrTensorShape, width)
	}
	slots := make([]Expr, width)
	for i := range slots {
		parts := make([]Expr, len(tensors))
		for j, t := range tensors {
			parts[j] = t.factors[i]
		}
		slots[i] = MulOf(parts...)
	}
	return MulOf(append(append([]Expr{N(m.coeff)}, scalars...), TensorOf(slots...))...), nil
}

// HasTensor reports whether e contains a tensor product.
func HasTensor(e Expr) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if x.Kind() == KindTensor {
			found = true
		}
		return !found
	})
	return found
}
