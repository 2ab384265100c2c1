package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qdirac/internal/circuit"
	"qdirac/internal/engine"
	"qdirac/internal/expr"
)

// reduction is the outcome of reducing one input.
type reduction struct {
	id      string // correlates log lines of one reduction
	input   expr.Expr
	out     expr.Expr
	steps   engine.Steps
	circuit *circuit.Circuit // set for QASM input
}

// binding assigns a value to a free symbol of the input. A scalar value
// replaces a lower-case scalar symbol; any other expression replaces an
// operator symbol.
type binding struct {
	name  string
	value expr.Expr
}

// parseBindings reads NAME=VALUE pairs as given to --set.
func parseBindings(pairs []string) ([]binding, error) {
	out := make([]binding, 0, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q: want NAME=VALUE", p)
		}
		x, err := expr.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
		out = append(out, binding{name: name, value: x})
	}
	return out, nil
}

func (b binding) apply(x expr.Expr) expr.Expr {
	if n, ok := b.value.(*expr.Num); ok {
		return expr.SubstituteScalar(x, b.name, n.Value())
	}
	return expr.Substitute(x, expr.S(b.name), b.value)
}

// reduceText parses text as an expression, or as a QASM circuit when qasm
// is set, applies binds in order and runs the operator-chain driver on it.
func reduceText(eng *engine.Engine, text string, qasm bool, binds ...binding) (*reduction, error) {
	r := &reduction{id: uuid.NewString()}
	if qasm {
		c := &circuit.Circuit{}
		if err := c.ParseQASM(text); err != nil {
			return nil, fmt.Errorf("failed to parse circuit: %w", err)
		}
		x, err := c.Expression(eng.Catalogue())
		if err != nil {
			return nil, fmt.Errorf("failed to build circuit expression: %w", err)
		}
		r.input, r.circuit = x, c
	} else {
		x, err := expr.Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		r.input = x
	}
	for _, b := range binds {
		r.input = b.apply(r.input)
	}

	out, steps, err := eng.OperateReduce(r.input)
	if err != nil {
		return nil, err
	}
	r.out, r.steps = out, steps
	return r, nil
}

// logReduction records a finished reduction at info level.
func logReduction(logger *zap.Logger, r *reduction) {
	logger.Info("reduction complete",
		zap.String("id", r.id),
		zap.Stringer("input", r.input),
		zap.Stringer("result", r.out),
		zap.Int("steps", len(r.steps)))
}
