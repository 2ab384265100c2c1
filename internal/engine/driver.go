package engine

import (
	"fmt"

	"go.uber.org/zap"

	"qdirac/internal/expr"
)

// OperateReduce applies the operators of the product x to its rightmost
// factor one at a time, right to left, reducing the state after each
// application. A power factor applies its base that many times. The
// product's coefficient is multiplied into the final state. Anything that is
// not a product of at least two factors is reduced once.
//
// The returned step log starts with x itself.
func (e *Engine) OperateReduce(x expr.Expr) (expr.Expr, Steps, error) {
	r := e.newReduction(x)
	r.log(x)

	m, ok := x.(*expr.Mul)
	if !ok || len(m.Factors()) < 2 {
		out, err := r.reduce(x, true, 0)
		if err != nil {
			return nil, nil, err
		}
		return out, r.steps, nil
	}

	fs := m.Factors()
	state := fs[len(fs)-1]
	for i := len(fs) - 2; i >= 0; i-- {
		op, times := fs[i], 1
		if p, ok := op.(*expr.Pow); ok {
			n, ok := p.Exp().Int64()
			if !ok || n < 0 {
				return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedExponent, p)
			}
			op, times = p.Base(), int(n)
		}
		for k := 0; k < times; k++ {
			next, err := r.reduce(expr.MulOf(op, state), true, 0)
			if err != nil {
				return nil, nil, err
			}
			if err := r.checkWidth(next); err != nil {
				return nil, nil, err
			}
			state = next
		}
	}
	out := expr.Expand(expr.Scale(state, m.Coeff()))
	e.logger.Debug("reduced", zap.Stringer("input", x), zap.Stringer("result", out), zap.Int("steps", len(r.steps)))
	return out, r.steps, nil
}

func (r *reduction) checkWidth(state expr.Expr) error {
	w := r.eng.catalogue.Qubits(state)
	if w != 0 && w != r.qubits {
		return fmt.Errorf("%w: state %s spans %d qubit(s), expected %d", ErrMalformedTensor, state, w, r.qubits)
	}
	return nil
}
