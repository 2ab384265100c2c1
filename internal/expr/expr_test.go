package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdirac/internal/scalar"
)

func TestMulNormalisation(t *testing.T) {
	k0, k1 := KetOf("0"), KetOf("1")
	b0, b1 := BraOf("0"), BraOf("1")

	_, isOuter := MulOf(k0, b1).(*Outer)
	assert.True(t, isOuter, "ket·bra should become an outer product")

	_, isInner := MulOf(b0, k0).(*Inner)
	assert.True(t, isInner, "bra·ket should become an inner product")

	assert.Equal(t, "6", MulOf(Int(2), Int(3)).String())
	assert.Equal(t, "X*Y*Z", MulOf(MulOf(S("X"), S("Y")), S("Z")).String())
	assert.Equal(t, "|1⟩⟨0|*|0⟩", MulOf(k1, b0, k0).String())
	assert.Equal(t, "⟨0|1⟩*X", MulOf(S("X"), b0, k1).String())
	assert.True(t, IsZero(MulOf(S("X"), Int(0), k0)))

	m, ok := MulOf(Int(3), S("X"), Int(2)).(*Mul)
	require.True(t, ok)
	assert.True(t, m.Coeff().Equal(scalar.Int(6)))
	assert.Len(t, m.Factors(), 1)
}

func TestAddNormalisation(t *testing.T) {
	k0, k1 := KetOf("0"), KetOf("1")

	assert.Equal(t, "2*|0⟩", AddOf(k0, k0).String())
	assert.Equal(t, "|0⟩ + |1⟩", AddOf(k1, k0).String())
	assert.True(t, IsZero(AddOf(k0, Scale(k0, scalar.Int(-1)))))
	assert.Equal(t, "|0⟩ - |1⟩", AddOf(Scale(k1, scalar.Int(-1)), k0).String())

	nested := AddOf(AddOf(k0, k1), AddOf(k1, Int(1)))
	assert.Equal(t, "1 + |0⟩ + 2*|1⟩", nested.String())

	assert.True(t, AddOf(k0, k1).Equal(AddOf(k1, k0)), "sum order must be canonical")
}

func TestTensorNormalisation(t *testing.T) {
	k0, k1 := KetOf("0"), KetOf("1")

	assert.Equal(t, "2*|0⟩⊗|1⟩", TensorOf(Scale(k0, scalar.Int(2)), k1).String())
	assert.True(t, IsZero(TensorOf(Int(0), k1)))
	assert.Equal(t, k0, TensorOf(k0))

	flat, ok := TensorOf(TensorOf(k0, k1), k0).(*Tensor)
	require.True(t, ok)
	assert.Equal(t, 3, flat.Len())
}

func TestTensorOfProductFactor(t *testing.T) {
	k0 := KetOf("0")

	assert.Equal(t, "(H*|0⟩)⊗|0⟩", TensorOf(MulOf(S("H"), k0), k0).String())
	assert.Equal(t, "3*(H*|0⟩)⊗|0⟩", TensorOf(Scale(MulOf(S("H"), k0), scalar.Int(3)), k0).String())

	flat, ok := TensorOf(MulOf(S("H"), k0), MulOf(S("X"), k0)).(*Tensor)
	require.True(t, ok)
	assert.Equal(t, 2, flat.Len())
}

func TestPowOf(t *testing.T) {
	assert.True(t, PowOf(S("X"), scalar.Zero()).Equal(Int(1)))
	assert.True(t, PowOf(S("X"), scalar.One()).Equal(S("X")))
	assert.True(t, PowOf(Int(2), scalar.Int(3)).Equal(Int(8)))
	assert.Equal(t, "X^2", PowOf(S("X"), scalar.Int(2)).String())
}

func TestExpand(t *testing.T) {
	k0, k1 := KetOf("0"), KetOf("1")
	x := MulOf(S("X"), AddOf(k0, k1))
	assert.Equal(t, "X*|0⟩ + X*|1⟩", Expand(x).String())

	sq := MulOf(PowOf(AddOf(S("A"), S("B")), scalar.Int(2)), k0)
	assert.Equal(t, "A*A*|0⟩ + A*B*|0⟩ + B*A*|0⟩ + B*B*|0⟩", Expand(sq).String())
}

func TestExpandTensor(t *testing.T) {
	k0, k1 := KetOf("0"), KetOf("1")

	prod := MulOf(TensorOf(S("H"), S("I")), TensorOf(k0, k0))
	got, err := ExpandTensor(prod)
	require.NoError(t, err)
	assert.Equal(t, "(H*|0⟩)⊗(I*|0⟩)", got.String())

	got, err = ExpandTensor(TensorOf(AddOf(k0, k1), k0))
	require.NoError(t, err)
	assert.Equal(t, "|0⟩⊗|0⟩ + |1⟩⊗|0⟩", got.String())

	_, err = ExpandTensor(MulOf(TensorOf(S("H"), S("I")), TensorOf(k0, k0, k0)))
	assert.True(t, errors.Is(err, ErrTensorShape), "got %v", err)

	assert.True(t, HasTensor(prod))
	assert.False(t, HasTensor(MulOf(S("H"), k0)))
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"H*|0>",
		"(1/sqrt(2))*(|0> + |1>)",
		"|0><1| + |1><0|",
		"CX*(H@I)*|00>",
		"RX(theta)*|0>",
		"X^2*|1>",
		"<0|1>",
		"cos(theta/2)*|0> - i*sin(theta/2)*|1>",
		"B0*|0>",
		"(1 + i)/2*|1>",
	}
	for _, in := range inputs {
		e, err := Parse(in)
		if !assert.NoError(t, err, in) {
			continue
		}
		again, err := Parse(e.String())
		if assert.NoError(t, err, "reparse %q", e.String()) {
			assert.True(t, e.Equal(again), "%q -> %q -> %q", in, e, again)
		}
	}
}

func TestParseForms(t *testing.T) {
	assert.True(t, MustParse("|01>").Equal(TensorOf(KetOf("0"), KetOf("1"))))
	assert.True(t, MustParse("⟨0|1⟩").Equal(InnerOf(BraOf("0"), KetOf("1"))))
	assert.True(t, MustParse("H(|0>)").Equal(MulOf(S("H"), KetOf("0"))))
	assert.True(t, MustParse("H|0>").Equal(MulOf(S("H"), KetOf("0"))))
	assert.True(t, MustParse("X ⊗ I").Equal(TensorOf(S("X"), S("I"))))
	assert.True(t, MustParse("|ψ>").Equal(KetOf("ψ")))

	g, ok := MustParse("RX(pi/2)").(*Gate)
	require.True(t, ok)
	assert.Equal(t, "RX", g.Name())
	require.Len(t, g.Params(), 1)
	assert.True(t, g.Params()[0].Equal(scalar.Pi().Mul(scalar.Frac(1, 2))))

	n, ok := MustParse("sqrt(8)/2").(*Num)
	require.True(t, ok)
	assert.True(t, n.Value().Equal(scalar.Sqrt(2)))
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"|0", "X/Y", "H*", "RX(|0>, 1)", "2^X", "#"} {
		_, err := Parse(in)
		var se *SyntaxError
		assert.True(t, errors.As(err, &se), "%q: got %v", in, err)
	}
}

func TestLaTeX(t *testing.T) {
	assert.Equal(t, `B_{0} {\left|0\right\rangle }`, MulOf(S("B0"), KetOf("0")).LaTeX())
	assert.Equal(t, `\left\langle 0 \middle| 0 \right\rangle {\left|0\right\rangle }`,
		MulOf(BraOf("0"), KetOf("0"), KetOf("0")).LaTeX())
	assert.Equal(t, `\frac{\sqrt{2}}{2} {\left|0\right\rangle }`,
		Scale(KetOf("0"), scalar.Sqrt(2).Mul(scalar.Frac(1, 2))).LaTeX())
}

func TestSubstitute(t *testing.T) {
	x := MustParse("X*|0>")
	got := Substitute(x, S("X"), MustParse("|0><1| + |1><0|"))
	assert.Equal(t, "(|0⟩⟨1| + |1⟩⟨0|)*|0⟩", got.String())

	r := SubstituteScalar(MustParse("RX(theta)"), "theta", scalar.Pi())
	assert.True(t, r.Equal(GateOf("RX", scalar.Pi())))
}
