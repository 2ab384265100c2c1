package circuit

import (
	"fmt"
	"strings"

	"qdirac/internal/expr"
	"qdirac/internal/gates"
	"qdirac/internal/scalar"
)

// Expression builds the operator chain of the circuit applied to |0…0⟩.
// Qubit 0 is the leftmost tensor factor. Each layer becomes one tensor
// operator, identity on idle qubits; the chain lists the last layer
// first so that applying it right to left follows the circuit.
//
// A CX on adjacent qubits with the control above the target uses the
// catalogue CX in one tensor slot. Any other CX is written with the basis
// projectors as B0_c ⊗ I + B3_c ⊗ X_t.
func (c *Circuit) Expression(cat *gates.Catalogue) (expr.Expr, error) {
	n := max(c.NumQubits, 1)
	zeros := make([]expr.Expr, n)
	for q := range zeros {
		zeros[q] = expr.KetOf("0")
	}
	chain := []expr.Expr{expr.TensorOf(zeros...)}

	for step, layer := range c.Layers() {
		ops, err := layerOps(cat, n, layer)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		chain = append(ops, chain...)
	}
	return expr.MulOf(chain...), nil
}

// layerOps returns the operators of one layer, leftmost applied last.
// Single-qubit gates ride with the first CX; further CX gates in the same
// layer become operators of their own.
func layerOps(cat *gates.Catalogue, n int, layer []Gate) ([]expr.Expr, error) {
	identity := func() []expr.Expr {
		slots := make([]expr.Expr, n)
		for q := range slots {
			slots[q] = expr.S("I")
		}
		return slots
	}

	base := identity()
	var controlled []Gate
	for _, g := range layer {
		if g.Target >= n || g.Control >= n {
			return nil, fmt.Errorf("%w: %s on q[%d] with %d qubit(s)", ErrQubitRange, g.Type, max(g.Target, g.Control), n)
		}
		if g.Control >= 0 {
			controlled = append(controlled, g)
			continue
		}
		op, err := gateExpr(cat, g)
		if err != nil {
			return nil, err
		}
		base[g.Target] = op
	}
	if len(controlled) == 0 {
		return []expr.Expr{expr.TensorOf(base...)}, nil
	}

	var ops []expr.Expr
	for i, g := range controlled {
		slots := base
		if i > 0 {
			slots = identity()
		}
		op, err := controlledOp(cat, slots, g)
		if err != nil {
			return nil, err
		}
		ops = append([]expr.Expr{op}, ops...)
	}
	return ops, nil
}

func gateExpr(cat *gates.Catalogue, g Gate) (expr.Expr, error) {
	entry, ok := cat.Lookup(g.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Type)
	}
	if len(g.Params) != entry.Params {
		return nil, fmt.Errorf("%s takes %d parameter(s), got %d", entry.Name, entry.Params, len(g.Params))
	}
	return entry.Expr(g.Params...), nil
}

func controlledOp(cat *gates.Catalogue, slots []expr.Expr, g Gate) (expr.Expr, error) {
	cx, err := gateExpr(cat, Gate{Type: g.Type})
	if err != nil {
		return nil, err
	}
	if g.Target == g.Control+1 {
		factors := make([]expr.Expr, 0, len(slots)-1)
		factors = append(factors, slots[:g.Control]...)
		factors = append(factors, cx)
		factors = append(factors, slots[g.Target+1:]...)
		return expr.TensorOf(factors...), nil
	}

	off := append([]expr.Expr(nil), slots...)
	off[g.Control] = expr.S("B0")
	on := append([]expr.Expr(nil), slots...)
	on[g.Control] = expr.S("B3")
	on[g.Target] = expr.S("X")
	return expr.AddOf(expr.TensorOf(off...), expr.TensorOf(on...)), nil
}

// Amplitudes reads a reduced state as a map from basis label, qubit 0
// first, to its amplitude. Labels with zero amplitude are absent.
func Amplitudes(state expr.Expr) (map[string]scalar.Value, error) {
	amps := map[string]scalar.Value{}
	if expr.IsZero(state) {
		return amps, nil
	}
	terms := []expr.Expr{state}
	if a, ok := state.(*expr.Add); ok {
		terms = a.Terms()
	}
	for _, t := range terms {
		coeff, rest := expr.Split(t)
		label, err := basisLabel(rest)
		if err != nil {
			return nil, err
		}
		if v, ok := amps[label]; ok {
			coeff = coeff.Add(v)
		}
		amps[label] = coeff
	}
	for label, v := range amps {
		if v.IsZero() {
			delete(amps, label)
		}
	}
	return amps, nil
}

func basisLabel(e expr.Expr) (string, error) {
	switch v := e.(type) {
	case *expr.Ket:
		if v.IsBasis() {
			return v.Label(), nil
		}
	case *expr.Tensor:
		var sb strings.Builder
		for _, f := range v.Factors() {
			k, ok := f.(*expr.Ket)
			if !ok || !k.IsBasis() {
				return "", fmt.Errorf("not a basis state: %s", e)
			}
			sb.WriteString(k.Label())
		}
		return sb.String(), nil
	}
	return "", fmt.Errorf("not a basis state: %s", e)
}
