package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qdirac/internal/gates"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\]\s*;?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\((.+)\)\s*q\[(\d+)\]\s*;?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\]\s*,\s*q\[(\d+)\]\s*;?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\]\s*;?$`)
	qregRegex            = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
)

// qasmGates maps lower-case QASM gate names to catalogue names.
var qasmGates = map[string]string{
	"id":   "I",
	"i":    "I",
	"x":    "X",
	"y":    "Y",
	"z":    "Z",
	"h":    "H",
	"rx":   "RX",
	"ry":   "RY",
	"rz":   "RZ",
	"cx":   "CX",
	"cnot": "CX",
}

// ParseQASM parses QASM text and rebuilds the circuit from it. Each gate
// is placed at the earliest step after the gates already on its qubits,
// so gates on disjoint qubits share a step. A barrier starts a new step
// for every qubit. Classical registers and measurements are ignored.
func (c *Circuit) ParseQASM(qasm string) error {
	c.Gates = nil
	c.MaxSteps = 0
	c.NumQubits = 0
	floor := 0 // steps before a barrier are closed

	place := func(lo, hi int) int {
		return max(c.NextStep(lo, hi), floor)
	}

	for n, line := range strings.Split(qasm, "\n") {
		lineNo := n + 1
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			matches := qregRegex.FindStringSubmatch(line)
			if matches == nil {
				return fmt.Errorf("line %d: malformed qreg %q", lineNo, line)
			}
			size, _ := strconv.Atoi(matches[2])
			c.NumQubits = size
			continue
		}
		if strings.HasPrefix(line, "creg") {
			continue
		}
		if strings.HasPrefix(line, "barrier") {
			floor = c.MaxSteps
			continue
		}
		if measureRegex.MatchString(line) {
			continue
		}

		// Two-qubit gates: cx
		if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType, err := lookupGate(matches[1], lineNo, 0)
			if err != nil {
				return err
			}
			control, _ := strconv.Atoi(matches[2])
			target, _ := strconv.Atoi(matches[3])
			if gateType != "CX" {
				return fmt.Errorf("line %d: %w: %s takes one qubit", lineNo, ErrUnsupportedGate, matches[1])
			}
			if control == target {
				return fmt.Errorf("line %d: cx control and target are both q[%d]", lineNo, control)
			}
			if err := c.checkQubits(lineNo, control, target); err != nil {
				return err
			}
			lo, hi := min(control, target), max(control, target)
			c.AddGate(gateType, target, place(lo, hi), control)
			continue
		}

		// Single-qubit parameterized gates (RX, RY, RZ)
		if matches := singleGateParamRegex.FindStringSubmatch(line); matches != nil {
			params, err := parseParams(matches[2])
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			gateType, err := lookupGate(matches[1], lineNo, len(params))
			if err != nil {
				return err
			}
			target, _ := strconv.Atoi(matches[3])
			if err := c.checkQubits(lineNo, target); err != nil {
				return err
			}
			c.AddParameterizedGate(gateType, target, place(target, target), params)
			continue
		}

		if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			gateType, err := lookupGate(matches[1], lineNo, 0)
			if err != nil {
				return err
			}
			target, _ := strconv.Atoi(matches[2])
			if err := c.checkQubits(lineNo, target); err != nil {
				return err
			}
			c.AddGate(gateType, target, place(target, target))
			continue
		}

		return fmt.Errorf("line %d: cannot parse %q", lineNo, line)
	}

	if c.NumQubits == 0 {
		for _, g := range c.Gates {
			c.NumQubits = max(c.NumQubits, g.Target+1, g.Control+1)
		}
	}
	return nil
}

var catalogue = gates.Standard()

func lookupGate(name string, lineNo int, params int) (string, error) {
	gateType, ok := qasmGates[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("line %d: %w: %s", lineNo, ErrUnsupportedGate, name)
	}
	entry, _ := catalogue.Lookup(gateType)
	if entry.Params != params {
		return "", fmt.Errorf("line %d: %s takes %d parameter(s), got %d", lineNo, name, entry.Params, params)
	}
	return gateType, nil
}

// checkQubits rejects indices beyond a declared register.
func (c *Circuit) checkQubits(lineNo int, qubits ...int) error {
	if c.NumQubits == 0 {
		return nil
	}
	for _, q := range qubits {
		if q >= c.NumQubits {
			return fmt.Errorf("line %d: %w: q[%d] with %d qubit(s)", lineNo, ErrQubitRange, q, c.NumQubits)
		}
	}
	return nil
}
