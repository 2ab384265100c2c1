// Package gates holds the closed catalogue of quantum gates and the basis
// projector symbols, each with its decomposition into outer products of
// computational basis states.
package gates

import (
	"fmt"
	"strings"

	"qdirac/internal/expr"
	"qdirac/internal/scalar"
)

// Category groups gates for display.
type Category string

const (
	SingleQubit Category = "Single Qubit"
	Rotation    Category = "Rotation"
	MultiQubit  Category = "Multi Qubit"
)

// Entry describes one catalogue gate.
type Entry struct {
	Name        string
	Aliases     []string
	Description string
	Category    Category
	Qubits      int
	Params      int
	ParamHint   string
	build       func(params []scalar.Value) expr.Expr
}

// Decomposition returns the gate written as a sum of outer products. The
// number of params must match the entry.
func (e Entry) Decomposition(params ...scalar.Value) (expr.Expr, error) {
	if len(params) != e.Params {
		return nil, fmt.Errorf("gates: %s takes %d parameter(s), got %d", e.Name, e.Params, len(params))
	}
	return e.build(params), nil
}

// Expr returns the symbolic form of the gate: a Sym for parameterless gates
// and a Gate object otherwise.
func (e Entry) Expr(params ...scalar.Value) expr.Expr {
	if e.Params == 0 {
		return expr.S(e.Name)
	}
	return expr.GateOf(e.Name, params...)
}

// Catalogue is an immutable gate table. Build it with Standard; it is safe
// for concurrent use.
type Catalogue struct {
	entries  []Entry
	byName   map[string]int
	literals []literal
}

type literal struct {
	decomposition expr.Expr
	entry         int
}

// New builds a catalogue from entries. Names and aliases are matched
// case-sensitively against symbols and case-insensitively by Lookup.
func New(entries ...Entry) *Catalogue {
	c := &Catalogue{byName: map[string]int{}}
	for _, e := range entries {
		i := len(c.entries)
		c.entries = append(c.entries, e)
		c.byName[e.Name] = i
		for _, a := range e.Aliases {
			c.byName[a] = i
		}
		if e.Params == 0 {
			c.literals = append(c.literals, literal{decomposition: e.build(nil), entry: i})
		}
	}
	return c
}

// Entries returns the catalogue in display order.
func (c *Catalogue) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Lookup finds an entry by name or alias, ignoring case.
func (c *Catalogue) Lookup(name string) (Entry, bool) {
	if i, ok := c.byName[name]; ok {
		return c.entries[i], true
	}
	if i, ok := c.byName[strings.ToUpper(name)]; ok {
		return c.entries[i], true
	}
	return Entry{}, false
}

// Match reports whether e is a catalogue gate: a Sym naming a
// parameterless gate, a Gate object with the right number of parameters,
// or a literal expression equal to a parameterless decomposition.
func (c *Catalogue) Match(e expr.Expr) (Entry, bool) {
	switch v := e.(type) {
	case *expr.Sym:
		if i, ok := c.byName[v.Name()]; ok && c.entries[i].Params == 0 {
			return c.entries[i], true
		}
		return Entry{}, false
	case *expr.Gate:
		if i, ok := c.byName[v.Name()]; ok && c.entries[i].Params == len(v.Params()) {
			return c.entries[i], true
		}
		return Entry{}, false
	}
	for _, l := range c.literals {
		if l.decomposition.Equal(e) {
			return c.entries[l.entry], true
		}
	}
	return Entry{}, false
}

// Decompose returns the outer-product form of a catalogue gate, or false
// when e is not one.
func (c *Catalogue) Decompose(e expr.Expr) (expr.Expr, bool) {
	entry, ok := c.Match(e)
	if !ok {
		return nil, false
	}
	var params []scalar.Value
	if g, ok := e.(*expr.Gate); ok {
		params = g.Params()
	}
	d, err := entry.Decomposition(params...)
	if err != nil {
		return nil, false
	}
	return d, true
}

// Qubits returns the number of qubits e spans: the sum over tensor factors
// and the maximum over sums and products. Scalars span zero qubits and
// unknown operators one.
func (c *Catalogue) Qubits(e expr.Expr) int {
	switch v := e.(type) {
	case *expr.Num:
		return 0
	case *expr.Ket, *expr.Bra, *expr.Outer:
		return 1
	case *expr.Inner:
		return 0
	case *expr.Sym, *expr.Gate:
		if entry, ok := c.Match(v); ok {
			return entry.Qubits
		}
		return 1
	case *expr.Tensor:
		n := 0
		for _, f := range v.Factors() {
			n += max(c.Qubits(f), 1)
		}
		return n
	case *expr.Add:
		return c.widest(v.Terms())
	case *expr.Mul:
		return c.widest(v.Factors())
	case *expr.Pow:
		return c.Qubits(v.Base())
	}
	return 1
}

func (c *Catalogue) widest(es []expr.Expr) int {
	n := 0
	for _, e := range es {
		n = max(n, c.Qubits(e))
	}
	return n
}
