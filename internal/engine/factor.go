package engine

import (
	"fmt"

	"qdirac/internal/expr"
)

// FactorTensor splits an expanded tensor expression into rows of
// per-subsystem factors, one row per addend. A scalar coefficient on a
// product is folded into the first factor of its row only.
func FactorTensor(e expr.Expr) ([][]expr.Expr, error) {
	if add, ok := e.(*expr.Add); ok {
		terms := add.Terms()
		rows := make([][]expr.Expr, 0, len(terms))
		for _, t := range terms {
			row, err := factorTerm(t)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
	row, err := factorTerm(e)
	if err != nil {
		return nil, err
	}
	return [][]expr.Expr{row}, nil
}

func factorTerm(e expr.Expr) ([]expr.Expr, error) {
	switch v := e.(type) {
	case *expr.Tensor:
		return v.Factors(), nil
	case *expr.Mul:
		factors := v.Factors()
		if len(factors) != 1 {
			return nil, fmt.Errorf("%w: product of %d factors in %s", ErrMalformedTensor, len(factors), e)
		}
		t, ok := factors[0].(*expr.Tensor)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a tensor product", ErrMalformedTensor, factors[0])
		}
		row := t.Factors()
		row[0] = expr.Scale(row[0], v.Coeff())
		return row, nil
	}
	return nil, fmt.Errorf("%w: cannot factor %s", ErrMalformedTensor, e)
}
