package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"qdirac/internal/expr"
)

// Steps is the ordered log of forms visited during a reduction. Steps[0]
// is the input.
type Steps []expr.Expr

// Plain renders one "(k) form" line per step.
func (s Steps) Plain() string {
	var sb strings.Builder
	for k, e := range s {
		fmt.Fprintf(&sb, "(%d) %s\n", k, e)
	}
	return sb.String()
}

// LaTeX renders the steps as one aligned LaTeX block, each step
// terminated by a line break.
func (s Steps) LaTeX() string {
	var sb strings.Builder
	for k, e := range s {
		fmt.Fprintf(&sb, `(%d) \quad %s \\`, k, e.LaTeX())
	}
	return sb.String()
}

// Last returns the final logged form, or nil for an empty log.
func (s Steps) Last() expr.Expr {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

type stepJSON struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	LaTeX string `json:"latex"`
	Kind  string `json:"kind"`
}

// MarshalJSON encodes the log as an array of {index, text, latex, kind}.
func (s Steps) MarshalJSON() ([]byte, error) {
	out := make([]stepJSON, len(s))
	for k, e := range s {
		out[k] = stepJSON{Index: k, Text: e.String(), LaTeX: e.LaTeX(), Kind: e.Kind().String()}
	}
	return json.Marshal(out)
}
