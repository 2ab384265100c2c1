package gates

import (
	"qdirac/internal/expr"
	"qdirac/internal/scalar"
)

// outer returns |i⟩⟨j|.
func outer(i, j string) expr.Expr {
	return expr.OuterOf(expr.KetOf(i), expr.BraOf(j))
}

// Projectors are the symbols B0..B3 standing for |0⟩⟨0|, |0⟩⟨1|, |1⟩⟨0|
// and |1⟩⟨1|.
var projectors = map[string][2]string{
	"B0": {"0", "0"},
	"B1": {"0", "1"},
	"B2": {"1", "0"},
	"B3": {"1", "1"},
}

// Projector returns the outer product named by a basis projector symbol.
func Projector(e expr.Expr) (expr.Expr, bool) {
	s, ok := e.(*expr.Sym)
	if !ok {
		return nil, false
	}
	p, ok := projectors[s.Name()]
	if !ok {
		return nil, false
	}
	return outer(p[0], p[1]), true
}

// ProjectorNames lists the projector symbols in order.
func ProjectorNames() []string { return []string{"B0", "B1", "B2", "B3"} }

func scaled(c scalar.Value, e expr.Expr) expr.Expr { return expr.Scale(e, c) }

func identity() expr.Expr { return expr.AddOf(outer("0", "0"), outer("1", "1")) }

func pauliX() expr.Expr { return expr.AddOf(outer("0", "1"), outer("1", "0")) }

// halfAngle returns cos(θ/2) and sin(θ/2).
func halfAngle(theta scalar.Value) (scalar.Value, scalar.Value) {
	half := theta.Mul(scalar.Frac(1, 2))
	return scalar.Cos(half), scalar.Sin(half)
}

var standard = []Entry{
	{
		Name: "I", Aliases: []string{"ID"}, Description: "Identity", Category: SingleQubit, Qubits: 1,
		build: func([]scalar.Value) expr.Expr { return identity() },
	},
	{
		Name: "X", Description: "Pauli-X (NOT)", Category: SingleQubit, Qubits: 1,
		build: func([]scalar.Value) expr.Expr { return pauliX() },
	},
	{
		Name: "Y", Description: "Pauli-Y", Category: SingleQubit, Qubits: 1,
		build: func([]scalar.Value) expr.Expr {
			i := scalar.I()
			return expr.AddOf(scaled(i.Neg(), outer("0", "1")), scaled(i, outer("1", "0")))
		},
	},
	{
		Name: "Z", Description: "Pauli-Z", Category: SingleQubit, Qubits: 1,
		build: func([]scalar.Value) expr.Expr {
			return expr.AddOf(outer("0", "0"), scaled(scalar.Int(-1), outer("1", "1")))
		},
	},
	{
		Name: "H", Description: "Hadamard", Category: SingleQubit, Qubits: 1,
		build: func([]scalar.Value) expr.Expr {
			c, _ := scalar.One().Quo(scalar.Sqrt(2))
			return scaled(c, expr.AddOf(
				outer("0", "0"), outer("0", "1"), outer("1", "0"),
				scaled(scalar.Int(-1), outer("1", "1")),
			))
		},
	},
	{
		Name: "RX", Description: "Rotate X", Category: Rotation, Qubits: 1, Params: 1, ParamHint: "pi/2",
		build: func(p []scalar.Value) expr.Expr {
			cos, sin := halfAngle(p[0])
			misin := scalar.I().Neg().Mul(sin)
			return expr.AddOf(
				scaled(cos, outer("0", "0")), scaled(misin, outer("0", "1")),
				scaled(misin, outer("1", "0")), scaled(cos, outer("1", "1")),
			)
		},
	},
	{
		Name: "RY", Description: "Rotate Y", Category: Rotation, Qubits: 1, Params: 1, ParamHint: "pi/2",
		build: func(p []scalar.Value) expr.Expr {
			cos, sin := halfAngle(p[0])
			return expr.AddOf(
				scaled(cos, outer("0", "0")), scaled(sin.Neg(), outer("0", "1")),
				scaled(sin, outer("1", "0")), scaled(cos, outer("1", "1")),
			)
		},
	},
	{
		Name: "RZ", Description: "Rotate Z", Category: Rotation, Qubits: 1, Params: 1, ParamHint: "pi/2",
		build: func(p []scalar.Value) expr.Expr {
			phase := scalar.I().Mul(p[0]).Mul(scalar.Frac(1, 2))
			return expr.AddOf(
				scaled(scalar.Exp(phase.Neg()), outer("0", "0")),
				scaled(scalar.Exp(phase), outer("1", "1")),
			)
		},
	},
	{
		Name: "CX", Aliases: []string{"CNOT"}, Description: "CNOT", Category: MultiQubit, Qubits: 2,
		build: func([]scalar.Value) expr.Expr {
			return expr.AddOf(
				expr.TensorOf(outer("0", "0"), identity()),
				expr.TensorOf(outer("1", "1"), pauliX()),
			)
		},
	},
}

// Standard returns the built-in catalogue: I, X, Y, Z, H, the RX/RY/RZ
// rotations and CX.
func Standard() *Catalogue { return New(standard...) }
