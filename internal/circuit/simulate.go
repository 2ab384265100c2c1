package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/floats"
	fscalar "gonum.org/v1/gonum/floats/scalar"

	"qdirac/internal/scalar"
)

// StateVector is a dense numeric state. Bit q of an amplitude index is
// qubit q.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0…0⟩ on numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// Simulate runs the circuit numerically. Gate parameters must evaluate to
// numbers.
func Simulate(c *Circuit) (*StateVector, error) {
	s := NewStateVector(max(c.NumQubits, 1))
	for _, layer := range c.Layers() {
		for _, g := range layer {
			if err := s.ApplyGate(g); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// ApplyGate applies one catalogue gate.
func (s *StateVector) ApplyGate(g Gate) error {
	theta := 0.0
	if len(g.Params) > 0 {
		v, ok := g.Params[0].Complex()
		if !ok || imag(v) != 0 {
			return fmt.Errorf("%s parameter %s is not a real number", g.Type, g.Params[0])
		}
		theta = real(v)
	}
	switch g.Type {
	case "I":
	case "H":
		s.applyH(g.Target)
	case "X":
		s.applyX(g.Target)
	case "Y":
		s.applyY(g.Target)
	case "Z":
		s.applyZ(g.Target)
	case "RX":
		s.applyRX(g.Target, theta)
	case "RY":
		s.applyRY(g.Target, theta)
	case "RZ":
		s.applyRZ(g.Target, theta)
	case "CX":
		s.applyCX(g.Control, g.Target)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Type)
	}
	return nil
}

// pairs calls fn for every index pair differing only in qubit q, the
// index with the bit clear first.
func (s *StateVector) pairs(q int, fn func(i, j int)) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			fn(i, i|bit)
		}
	}
}

func (s *StateVector) applyH(q int) {
	h := complex(1/math.Sqrt2, 0)
	s.pairs(q, func(i, j int) {
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i], s.Amplitudes[j] = h*(a+b), h*(a-b)
	})
}

func (s *StateVector) applyX(q int) {
	s.pairs(q, func(i, j int) {
		s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
	})
}

func (s *StateVector) applyY(q int) {
	s.pairs(q, func(i, j int) {
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i], s.Amplitudes[j] = -1i*b, 1i*a
	})
}

func (s *StateVector) applyZ(q int) {
	s.pairs(q, func(_, j int) { s.Amplitudes[j] = -s.Amplitudes[j] })
}

func (s *StateVector) applyRX(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	s.pairs(q, func(i, j int) {
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i], s.Amplitudes[j] = c*a+js*b, js*a+c*b
	})
}

func (s *StateVector) applyRY(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	s.pairs(q, func(i, j int) {
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i], s.Amplitudes[j] = c*a-sn*b, sn*a+c*b
	})
}

func (s *StateVector) applyRZ(q int, theta float64) {
	phase := cmplx.Exp(complex(0, theta/2))
	s.pairs(q, func(i, j int) {
		s.Amplitudes[i] *= cmplx.Conj(phase)
		s.Amplitudes[j] *= phase
	})
}

func (s *StateVector) applyCX(control, target int) {
	cBit := 1 << control
	s.pairs(target, func(i, j int) {
		if i&cBit != 0 {
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	})
}

// Label returns the basis label of index i, qubit 0 first.
func (s *StateVector) Label(i int) string {
	var sb strings.Builder
	for q := range s.NumQubits {
		sb.WriteByte('0' + byte(i>>q&1))
	}
	return sb.String()
}

// Probabilities returns the squared magnitude of every amplitude.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// QubitProbabilities returns, per qubit, the probability of measuring 1.
func (s *StateVector) QubitProbabilities() []float64 {
	probs := s.Probabilities()
	out := make([]float64, s.NumQubits)
	ones := make([]float64, len(probs))
	for q := range out {
		for i, p := range probs {
			ones[i] = 0
			if i>>q&1 == 1 {
				ones[i] = p
			}
		}
		out[q] = floats.Sum(ones)
	}
	return out
}

// Compare checks symbolic amplitudes against the numeric state within tol.
// The symbolic amplitudes must also be normalised.
func (s *StateVector) Compare(amps map[string]scalar.Value, tol float64) error {
	for label := range amps {
		if len(label) != s.NumQubits {
			return fmt.Errorf("amplitude label %q does not span %d qubit(s)", label, s.NumQubits)
		}
	}
	weights := make([]float64, 0, len(s.Amplitudes))
	for i, want := range s.Amplitudes {
		label := s.Label(i)
		got := complex128(0)
		if v, ok := amps[label]; ok {
			c, ok := v.Complex()
			if !ok {
				return fmt.Errorf("amplitude of |%s⟩ is symbolic: %s", label, v)
			}
			got = c
		}
		if !fscalar.EqualWithinAbs(real(got), real(want), tol) || !fscalar.EqualWithinAbs(imag(got), imag(want), tol) {
			return fmt.Errorf("amplitude of |%s⟩: symbolic %v, numeric %v", label, got, want)
		}
		weights = append(weights, real(got)*real(got)+imag(got)*imag(got))
	}
	if norm := floats.Sum(weights); !fscalar.EqualWithinAbs(norm, 1, tol) {
		return fmt.Errorf("symbolic state is not normalised: total probability %g", norm)
	}
	return nil
}
