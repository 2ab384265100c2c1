// Package circuit reads OpenQASM 2.0 circuits over the gate catalogue and
// turns them into operator chains for the reduction engine.
package circuit

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"qdirac/internal/scalar"
)

var (
	// ErrUnsupportedGate is returned for QASM gates outside the catalogue.
	ErrUnsupportedGate = errors.New("unsupported gate")
	// ErrQubitRange is returned when a gate addresses a qubit the register
	// does not have.
	ErrQubitRange = errors.New("qubit out of range")
)

// Gate represents a quantum gate placed on the circuit.
type Gate struct {
	Type    string
	Target  int
	Control int // -1 if not a controlled gate
	Step    int // position in circuit timeline
	Params  []scalar.Value
}

// Qubits returns the qubits the gate acts on, control first.
func (g Gate) Qubits() []int {
	if g.Control >= 0 {
		return []int{g.Control, g.Target}
	}
	return []int{g.Target}
}

// span returns the closed qubit range the gate occupies when drawn.
func (g Gate) span() (lo, hi int) {
	if g.Control < 0 {
		return g.Target, g.Target
	}
	return min(g.Control, g.Target), max(g.Control, g.Target)
}

// Circuit holds the quantum circuit state.
type Circuit struct {
	NumQubits int
	Gates     []Gate
	MaxSteps  int
}

// AddGate appends a gate to the circuit.
func (c *Circuit) AddGate(gateType string, target, step int, control ...int) {
	c.AddParameterizedGate(gateType, target, step, nil, control...)
}

// AddParameterizedGate appends a parameterized gate to the circuit.
func (c *Circuit) AddParameterizedGate(gateType string, target, step int, params []scalar.Value, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: ctrl,
		Step:    step,
		Params:  params,
	})
	if step >= c.MaxSteps {
		c.MaxSteps = step + 1
	}
}

// NextStep returns the earliest step at which a gate spanning qubits lo
// through hi can be placed after every gate already on those qubits.
func (c *Circuit) NextStep(lo, hi int) int {
	step := 0
	for _, g := range c.Gates {
		glo, ghi := g.span()
		if glo <= hi && lo <= ghi {
			step = max(step, g.Step+1)
		}
	}
	return step
}

// Layers groups the gates by step, each layer ordered by qubit.
func (c *Circuit) Layers() [][]Gate {
	layers := make([][]Gate, c.MaxSteps)
	for _, g := range c.Gates {
		layers[g.Step] = append(layers[g.Step], g)
	}
	for _, l := range layers {
		slices.SortFunc(l, func(a, b Gate) int {
			alo, _ := a.span()
			blo, _ := b.span()
			return alo - blo
		})
	}
	return layers
}

// GetGateAt returns the gate at the given step and qubit, or nil.
func (c *Circuit) GetGateAt(step, qubit int) *Gate {
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step == step && slices.Contains(g.Qubits(), qubit) {
			return g
		}
	}
	return nil
}

// ToQASM generates QASM 2.0 output from the circuit.
func (c *Circuit) ToQASM() string {
	maxQubit := -1
	for _, g := range c.Gates {
		maxQubit = max(maxQubit, g.Target, g.Control)
	}
	numQubits := max(maxQubit+1, c.NumQubits, 1)

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", numQubits)

	for _, layer := range c.Layers() {
		for _, g := range layer {
			name := strings.ToLower(g.Type)
			if name == "i" {
				name = "id"
			}
			switch {
			case g.Control >= 0:
				fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", name, g.Control, g.Target)
			case len(g.Params) > 0:
				ps := make([]string, len(g.Params))
				for i, p := range g.Params {
					ps[i] = FormatParam(p)
				}
				fmt.Fprintf(&sb, "%s(%s) q[%d];\n", name, strings.Join(ps, ", "), g.Target)
			default:
				fmt.Fprintf(&sb, "%s q[%d];\n", name, g.Target)
			}
		}
	}
	return sb.String()
}
