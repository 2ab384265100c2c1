// Package engine reduces bra-ket expressions to canonical sums of scaled
// computational basis states and records the intermediate forms.
//
// The Engine holds only immutable configuration. Each GateReduce or
// OperateReduce call creates its own reduction state, so one Engine can
// serve concurrent callers.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"qdirac/internal/expr"
	"qdirac/internal/gates"
)

// DefaultMaxDepth bounds the reduction recursion.
const DefaultMaxDepth = 512

// Engine applies the reduction rules.
type Engine struct {
	catalogue *gates.Catalogue
	logger    *zap.Logger
	maxDepth  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalogue replaces the standard gate catalogue.
func WithCatalogue(c *gates.Catalogue) Option {
	return func(e *Engine) { e.catalogue = c }
}

// WithLogger sets the logger used for rule tracing and fallback warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxDepth sets the recursion limit. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// New returns an Engine using the standard catalogue and a no-op logger
// unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalogue: gates.Standard(),
		logger:    zap.NewNop(),
		maxDepth:  DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalogue returns the gate catalogue used by e.
func (e *Engine) Catalogue() *gates.Catalogue { return e.catalogue }

var defaultEngine = New()

// Reduce reduces x with a default Engine. See Engine.Reduce.
func Reduce(x expr.Expr) (expr.Expr, error) { return defaultEngine.Reduce(x) }

// StepsOf returns the step log of reducing x with a default Engine.
func StepsOf(x expr.Expr) (Steps, error) { return defaultEngine.StepsOf(x) }

// Reduce runs the operator-chain driver on x and returns the final state.
func (e *Engine) Reduce(x expr.Expr) (expr.Expr, error) {
	out, _, err := e.OperateReduce(x)
	return out, err
}

// StepsOf runs the operator-chain driver on x and returns its step log.
func (e *Engine) StepsOf(x expr.Expr) (Steps, error) {
	_, steps, err := e.OperateReduce(x)
	return steps, err
}

// GateReduce applies the reduction rules to x once. Steps are recorded only
// when addStep is set, except for gate substitutions which always log.
func (e *Engine) GateReduce(x expr.Expr, addStep bool) (expr.Expr, Steps, error) {
	r := e.newReduction(x)
	out, err := r.reduce(x, addStep, 0)
	if err != nil {
		return nil, nil, err
	}
	return out, r.steps, nil
}

// reduction is the per-call state: the qubit count fixed from the input
// and the growing step log.
type reduction struct {
	eng    *Engine
	qubits int
	steps  Steps
}

func (e *Engine) newReduction(x expr.Expr) *reduction {
	return &reduction{eng: e, qubits: max(e.catalogue.Qubits(x), 1)}
}

func (r *reduction) log(x expr.Expr) { r.steps = append(r.steps, x) }

func (r *reduction) trace(rule string, x expr.Expr, depth int) {
	if ce := r.eng.logger.Check(zap.DebugLevel, "reduce"); ce != nil {
		ce.Write(zap.String("rule", rule), zap.Stringer("expr", x), zap.Int("depth", depth))
	}
}

func (r *reduction) reduce(x expr.Expr, addStep bool, depth int) (expr.Expr, error) {
	if depth > r.eng.maxDepth {
		return nil, fmt.Errorf("%w: limit %d reached at %s", ErrRecursionDepth, r.eng.maxDepth, x)
	}
	if isReduced(x) {
		return x, nil
	}
	if in, ok := x.(*expr.Inner); ok {
		r.trace("inner", x, depth)
		return innerProduct(in)
	}
	if m, ok := x.(*expr.Mul); ok {
		if y, ok := r.substituteProjectors(m); ok {
			r.trace("projector", x, depth)
			return r.reduce(y, addStep, depth+1)
		}
		if i, ok := r.gatePower(m); ok {
			r.trace("power", x, depth)
			return r.applyPower(m, i, addStep, depth)
		}
		if y, ok := r.substituteGates(m); ok {
			r.trace("gate", x, depth)
			return r.reduceGate(y, depth)
		}
		if isBraKetPair(m) {
			r.trace("braket", x, depth)
			return r.reducePair(m, addStep, depth)
		}
	}
	if add, ok := x.(*expr.Add); ok {
		r.trace("sum", x, depth)
		terms := add.Terms()
		for i, t := range terms {
			out, err := r.reduce(t, addStep, depth+1)
			if err != nil {
				return nil, err
			}
			terms[i] = out
		}
		return expr.AddOf(terms...), nil
	}
	r.trace("tensor", x, depth)
	return r.reduceTensor(x, addStep, depth)
}

// isReduced reports whether x is a scalar, a ket, a tensor of kets, a
// scaled ket or tensor of kets, or a sum of those.
func isReduced(x expr.Expr) bool {
	switch v := x.(type) {
	case *expr.Num, *expr.Ket:
		return true
	case *expr.Tensor:
		return allKets(v.Factors())
	case *expr.Mul:
		fs := v.Factors()
		if len(fs) != 1 {
			return false
		}
		switch f := fs[0].(type) {
		case *expr.Ket:
			return true
		case *expr.Tensor:
			return allKets(f.Factors())
		}
	case *expr.Add:
		for _, t := range v.Terms() {
			if !isReduced(t) {
				return false
			}
		}
		return true
	}
	return false
}

func allKets(fs []expr.Expr) bool {
	for _, f := range fs {
		if f.Kind() != expr.KindKet {
			return false
		}
	}
	return true
}

func innerProduct(in *expr.Inner) (expr.Expr, error) {
	if !in.Bra().Dagger().IsBasis() || !in.Ket().IsBasis() {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledBraKet, in)
	}
	if in.Bra().Label() == in.Ket().Label() {
		return expr.Int(1), nil
	}
	return expr.Int(0), nil
}

// rebuild multiplies the coefficient of m back onto a new factor list.
func rebuild(m *expr.Mul, factors []expr.Expr) expr.Expr {
	return expr.MulOf(append([]expr.Expr{expr.N(m.Coeff())}, factors...)...)
}

func (r *reduction) substituteProjectors(m *expr.Mul) (expr.Expr, bool) {
	fs := m.Factors()
	changed := false
	for i, f := range fs {
		if p, ok := gates.Projector(f); ok {
			fs[i] = p
			changed = true
		}
	}
	if !changed {
		return nil, false
	}
	return rebuild(m, fs), true
}

func (r *reduction) substituteGates(m *expr.Mul) (expr.Expr, bool) {
	fs := m.Factors()
	changed := false
	for i, f := range fs {
		if d, ok := r.eng.catalogue.Decompose(f); ok {
			fs[i] = d
			changed = true
			continue
		}
		p, ok := f.(*expr.Pow)
		if !ok {
			continue
		}
		if n, ok := p.Exp().Int64(); !ok || n < 0 {
			continue
		}
		if d, ok := r.eng.catalogue.Decompose(p.Base()); ok {
			fs[i] = expr.PowOf(d, p.Exp())
			changed = true
		}
	}
	if !changed {
		return nil, false
	}
	return rebuild(m, fs), true
}

// gatePower finds the rightmost factor of m that is a non-negative integer
// power of a catalogue gate with a state to its right.
func (r *reduction) gatePower(m *expr.Mul) (int, bool) {
	fs := m.Factors()
	for i := len(fs) - 2; i >= 0; i-- {
		p, ok := fs[i].(*expr.Pow)
		if !ok {
			continue
		}
		if n, ok := p.Exp().Int64(); !ok || n < 0 {
			continue
		}
		if _, ok := r.eng.catalogue.Decompose(p.Base()); ok {
			return i, true
		}
	}
	return 0, false
}

// applyPower reduces the factors right of the power at i to a state and
// applies the power's base to it once per unit of the exponent, so G^n
// costs n reductions instead of an n-fold expansion.
func (r *reduction) applyPower(m *expr.Mul, i int, addStep bool, depth int) (expr.Expr, error) {
	fs := m.Factors()
	p := fs[i].(*expr.Pow)
	n, _ := p.Exp().Int64()
	state, err := r.reduce(expr.MulOf(fs[i+1:]...), addStep, depth+1)
	if err != nil {
		return nil, err
	}
	for k := int64(0); k < n; k++ {
		if state, err = r.reduce(expr.MulOf(p.Base(), state), addStep, depth+1); err != nil {
			return nil, err
		}
	}
	head := append(fs[:i:i], state)
	return r.reduce(expr.Expand(rebuild(m, head)), addStep, depth+1)
}

func (r *reduction) reduceGate(y expr.Expr, depth int) (expr.Expr, error) {
	expanded := expr.Expand(y)
	r.log(expanded)
	out, err := r.reduce(expanded, false, depth+1)
	if err != nil {
		return nil, err
	}
	r.log(out)
	return out, nil
}

func isBraKet(e expr.Expr) bool {
	switch e.Kind() {
	case expr.KindKet, expr.KindBra, expr.KindOuter, expr.KindInner:
		return true
	}
	return false
}

// isBraKetPair matches a product of exactly two bra/ket-type factors, at
// least one of them a basis ket.
func isBraKetPair(m *expr.Mul) bool {
	fs := m.Factors()
	if len(fs) != 2 || !isBraKet(fs[0]) || !isBraKet(fs[1]) {
		return false
	}
	for _, f := range fs {
		if k, ok := f.(*expr.Ket); ok && k.IsBasis() {
			return true
		}
	}
	return false
}

func (r *reduction) reducePair(m *expr.Mul, addStep bool, depth int) (expr.Expr, error) {
	fs := m.Factors()
	if in, ok := fs[0].(*expr.Inner); ok {
		if addStep {
			r.log(m)
		}
		v, err := r.reduce(in, addStep, depth+1)
		if err != nil {
			return nil, err
		}
		out := expr.MulOf(expr.N(m.Coeff()), v, fs[1])
		if addStep {
			r.log(out)
		}
		return out, nil
	}
	o, isOuter := fs[0].(*expr.Outer)
	k, isKet := fs[1].(*expr.Ket)
	if !isOuter || !isKet {
		return r.reduceTensor(m, addStep, depth)
	}
	// (|a⟩⟨b|)·|c⟩ = |a⟩·⟨b|c⟩
	y := expr.MulOf(o.Ket(), expr.InnerOf(o.Bra(), k))
	out, err := r.reduce(y, addStep, depth+1)
	if err != nil {
		return nil, err
	}
	return expr.Expand(expr.Scale(out, m.Coeff())), nil
}

// substituteWide replaces multi-qubit catalogue gates nested inside tensor
// products so that the tensor widths line up before expansion.
func (r *reduction) substituteWide(x expr.Expr) expr.Expr {
	return expr.Rewrite(x, func(n expr.Expr) expr.Expr {
		entry, ok := r.eng.catalogue.Match(n)
		if !ok || entry.Qubits < 2 {
			return n
		}
		if d, ok := r.eng.catalogue.Decompose(n); ok {
			return d
		}
		return n
	})
}

func (r *reduction) reduceTensor(x expr.Expr, addStep bool, depth int) (expr.Expr, error) {
	z, err := expr.ExpandTensor(r.substituteWide(x))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTensor, err)
	}
	if !expr.HasTensor(z) {
		if m, ok := z.(*expr.Mul); ok && isFoldable(m) {
			return r.foldChain(m, addStep, depth)
		}
		if !z.Equal(x) {
			return r.reduce(z, addStep, depth+1)
		}
		r.eng.logger.Warn("no reduction rule applies; returning expression unchanged",
			zap.Error(ErrUnrecognizedOperator), zap.Stringer("expr", x))
		return x, nil
	}
	rows, err := FactorTensor(z)
	if err != nil {
		return nil, err
	}
	terms := make([]expr.Expr, 0, len(rows))
	for _, row := range rows {
		parts := make([]expr.Expr, len(row))
		for i, f := range row {
			p, err := r.reduce(f, addStep, depth+1)
			if err != nil {
				return nil, err
			}
			parts[i] = p
		}
		t, err := expr.ExpandTensor(expr.TensorOf(parts...))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTensor, err)
		}
		terms = append(terms, t)
	}
	return expr.AddOf(terms...), nil
}

// isFoldable matches a chain of three or more bra/ket-type factors that
// ends in an outer product applied to a basis ket.
func isFoldable(m *expr.Mul) bool {
	fs := m.Factors()
	n := len(fs)
	if n < 3 {
		return false
	}
	for _, f := range fs {
		if !isBraKet(f) {
			return false
		}
	}
	k, ok := fs[n-1].(*expr.Ket)
	return ok && k.IsBasis() && fs[n-2].Kind() == expr.KindOuter
}

// foldChain reduces the rightmost outer-product·ket pair of a longer
// chain and continues with the shortened product.
func (r *reduction) foldChain(m *expr.Mul, addStep bool, depth int) (expr.Expr, error) {
	fs := m.Factors()
	n := len(fs)
	tail, err := r.reduce(expr.MulOf(fs[n-2], fs[n-1]), addStep, depth+1)
	if err != nil {
		return nil, err
	}
	head := append(fs[:n-2:n-2], tail)
	return r.reduce(expr.Expand(rebuild(m, head)), addStep, depth+1)
}
