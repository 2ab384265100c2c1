package circuit

import (
	"fmt"
	"strings"

	"qdirac/internal/expr"
	"qdirac/internal/scalar"
)

// ParseParam parses a gate parameter into an exact scalar. Anything the
// expression syntax accepts as a scalar is allowed:
//
//   - Plain numbers: "1.5", "-0.5"
//   - Pi fractions: "pi/2", "3*pi/4", "-pi", "2pi"
//   - Symbols: "theta", "theta/2"
func ParseParam(s string) (scalar.Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return scalar.Value{}, fmt.Errorf("empty parameter")
	}
	e, err := expr.Parse(s)
	if err != nil {
		return scalar.Value{}, fmt.Errorf("parameter %q: %w", s, err)
	}
	n, ok := e.(*expr.Num)
	if !ok {
		return scalar.Value{}, fmt.Errorf("parameter %q is not a scalar", s)
	}
	return n.Value(), nil
}

// FormatParam renders a parameter in QASM syntax, spelling π as pi.
func FormatParam(v scalar.Value) string {
	return strings.ReplaceAll(v.String(), scalar.PiName, "pi")
}

// parseParams parses a comma separated parameter list.
func parseParams(input string) ([]scalar.Value, error) {
	var params []scalar.Value
	for _, part := range splitTopLevel(input) {
		v, err := ParseParam(part)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}
	return params, nil
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
