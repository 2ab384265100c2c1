package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"qdirac/internal/circuit"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres s within width columns, filling with fill.
func padCenter(s string, width int, fill string) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, width-w-left)
}

// gateSymbol returns the wire symbol drawn for g on qubit q.
func gateSymbol(g circuit.Gate, q int) string {
	switch {
	case g.Control == q:
		return "●"
	case g.Control >= 0:
		return "⊕"
	case len(g.Params) > 0:
		return "┤" + g.Type + "(" + circuit.FormatParam(g.Params[0]) + ")├"
	}
	return "┤" + g.Type + "├"
}

// crosses reports whether a controlled gate at step passes over qubit q
// without acting on it.
func crosses(c *circuit.Circuit, step, q int) bool {
	for _, g := range c.Gates {
		if g.Step != step || g.Control < 0 {
			continue
		}
		lo, hi := min(g.Control, g.Target), max(g.Control, g.Target)
		if lo < q && q < hi {
			return true
		}
	}
	return false
}

// renderStrip draws the circuit as one wire per qubit.
func renderStrip(c *circuit.Circuit, width int) string {
	steps := c.MaxSteps
	if fit := max((width-labelVisualW)/cellW, 1); steps > fit {
		steps = fit
	}
	widths := make([]int, steps)
	for step := range widths {
		widths[step] = cellW
		for _, g := range c.Gates {
			if g.Step == step {
				widths[step] = max(widths[step], ansi.StringWidth(gateSymbol(g, g.Target))+2)
			}
		}
	}

	var sb strings.Builder
	for q := range c.NumQubits {
		sb.WriteString(stepIndexStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q))))
		sb.WriteString("──")
		for step, w := range widths {
			switch g := c.GetGateAt(step, q); {
			case g != nil:
				sb.WriteString(padCenter(gateStyle.Render(gateSymbol(*g, q)), w, "─"))
			case crosses(c, step, q):
				sb.WriteString(padCenter("┼", w, "─"))
			default:
				sb.WriteString(strings.Repeat("─", w))
			}
		}
		if steps < c.MaxSteps {
			sb.WriteString(dimStyle.Render(" ▶"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// stepsContent renders the step log for the viewport.
func (m Model) stepsContent(width int) string {
	wrap := lipgloss.NewStyle().Width(max(width, 10))
	var sb strings.Builder

	if m.running {
		sb.WriteString(dimStyle.Render("reducing…"))
		sb.WriteString("\n\n")
	}
	r := m.result
	if r == nil {
		return sb.String()
	}
	if r.circuit != nil {
		sb.WriteString(renderStrip(r.circuit, width))
		sb.WriteString("\n")
	}
	if r.err != nil {
		sb.WriteString(wrap.Render(errorStyle.Render("error: ") + r.err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}
	for k, s := range r.steps {
		text := s.String()
		if m.latex {
			text = s.LaTeX()
		}
		sb.WriteString(wrap.Render(stepIndexStyle.Render(fmt.Sprintf("(%d)", k)) + " " + text))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	final := r.out.String()
	if m.latex {
		final = r.out.LaTeX()
	}
	sb.WriteString(wrap.Render(resultStyle.Render("= ") + final))
	sb.WriteString("\n")
	return sb.String()
}

// renderEditorPanel renders the input editor panel.
func (m Model) renderEditorPanel(width, height int) string {
	var sb strings.Builder

	title := "Expression"
	if m.mode == modeQASM {
		title = "QASM"
	}
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())

	return editorStyle.Width(width).Height(height).Render(sb.String())
}

// renderStepsPanel renders the step log panel.
func (m Model) renderStepsPanel(width, height int) string {
	var sb strings.Builder

	title := "Steps"
	if m.latex {
		title += " (LaTeX)"
	}
	if m.focus == focusSteps {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	if r := m.result; r != nil && r.err == nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d step(s)  %d%%", len(r.steps), int(m.steps.ScrollPercent()*100))))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.steps.View())

	return stepsStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Keys: "))
	for i, b := range m.keys.help() {
		if i > 0 {
			sb.WriteString("  ")
		}
		h := b.Help()
		sb.WriteString(h.Key + " " + h.Desc)
	}
	sb.WriteString("\n")
	if m.statusMsg != "" {
		sb.WriteString(activeStyle.Render(m.statusMsg))
	} else {
		sb.WriteString(dimStyle.Render(m.hint()))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

func (m Model) hint() string {
	switch m.focus {
	case focusSteps:
		return "↑↓ Scroll  q Quit"
	case focusMenu, focusInputParam:
		return "Esc Cancel"
	}
	return fmt.Sprintf("%s to reduce the %s", m.keys.Reduce.Help().Key, strings.ToLower(m.mode.String()))
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine
// with overlay, keeping ANSI sequences on either side intact.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if pad := x - ansi.StringWidth(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
