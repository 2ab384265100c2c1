package gates

import (
	"testing"

	"qdirac/internal/expr"
	"qdirac/internal/scalar"
)

func TestLookup(t *testing.T) {
	cat := Standard()
	tests := []struct {
		name   string
		want   string
		qubits int
	}{
		{"H", "H", 1},
		{"cnot", "CX", 2},
		{"id", "I", 1},
		{"rz", "RZ", 1},
	}
	for _, tc := range tests {
		e, ok := cat.Lookup(tc.name)
		if !ok {
			t.Errorf("Lookup(%q) failed", tc.name)
			continue
		}
		if e.Name != tc.want || e.Qubits != tc.qubits {
			t.Errorf("Lookup(%q) = %s/%d, want %s/%d", tc.name, e.Name, e.Qubits, tc.want, tc.qubits)
		}
	}
	if _, ok := cat.Lookup("TOFFOLI"); ok {
		t.Error("TOFFOLI is not in the catalogue")
	}
}

func TestDecompositions(t *testing.T) {
	cat := Standard()
	tests := []struct {
		gate expr.Expr
		want string
	}{
		{expr.S("X"), "|0⟩⟨1| + |1⟩⟨0|"},
		{expr.S("Y"), "-i*|0⟩⟨1| + i*|1⟩⟨0|"},
		{expr.S("Z"), "|0⟩⟨0| - |1⟩⟨1|"},
		{expr.S("H"), "sqrt(2)/2*(|0⟩⟨0| + |0⟩⟨1| + |1⟩⟨0| - |1⟩⟨1|)"},
		{expr.GateOf("RX", scalar.Pi()), "-i*|0⟩⟨1| - i*|1⟩⟨0|"},
		{expr.GateOf("RY", scalar.Pi()), "-|0⟩⟨1| + |1⟩⟨0|"},
		{expr.GateOf("RZ", scalar.Pi()), "-i*|0⟩⟨0| + i*|1⟩⟨1|"},
		{expr.GateOf("RX", scalar.Symbol("θ")), "cos(θ/2)*|0⟩⟨0| - i*sin(θ/2)*|0⟩⟨1| - i*sin(θ/2)*|1⟩⟨0| + cos(θ/2)*|1⟩⟨1|"},
	}
	for _, tc := range tests {
		d, ok := cat.Decompose(tc.gate)
		if !ok {
			t.Errorf("%s: not decomposable", tc.gate)
			continue
		}
		if d.String() != tc.want {
			t.Errorf("%s:\n got  %s\n want %s", tc.gate, d, tc.want)
		}
	}
}

func TestMatchLiteral(t *testing.T) {
	cat := Standard()
	x := expr.MustParse("|1><0| + |0><1|")
	e, ok := cat.Match(x)
	if !ok || e.Name != "X" {
		t.Fatalf("literal X decomposition not matched: %v %v", e.Name, ok)
	}
	if _, ok := cat.Match(expr.MustParse("|0><1|")); ok {
		t.Error("a single outer product is not a gate")
	}
	if _, ok := cat.Match(expr.GateOf("RX")); ok {
		t.Error("RX without its angle should not match")
	}
	if _, ok := cat.Match(expr.S("RX")); ok {
		t.Error("bare RX symbol should not match")
	}
}

func TestProjector(t *testing.T) {
	for i, name := range ProjectorNames() {
		p, ok := Projector(expr.S(name))
		if !ok {
			t.Fatalf("%s is a projector", name)
		}
		o := p.(*expr.Outer)
		want := []string{"00", "01", "10", "11"}[i]
		if got := o.Ket().Label() + o.Bra().Label(); got != want {
			t.Errorf("%s = |%c⟩⟨%c|, want %s", name, got[0], got[1], want)
		}
	}
	if _, ok := Projector(expr.S("B4")); ok {
		t.Error("B4 is not a projector")
	}
}

func TestQubits(t *testing.T) {
	cat := Standard()
	tests := []struct {
		in   string
		want int
	}{
		{"H*|0>", 1},
		{"CX*|00>", 2},
		{"(H@I@X)*|000>", 3},
		{"<0|1>", 0},
		{"3", 0},
	}
	for _, tc := range tests {
		if got := cat.Qubits(expr.MustParse(tc.in)); got != tc.want {
			t.Errorf("Qubits(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
