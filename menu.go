package main

import (
	"fmt"
	"strings"

	"qdirac/internal/expr"
	"qdirac/internal/gates"
)

// menuItem represents a single choice in the gate picker.
type menuItem struct {
	name      string
	gateType  string
	symbol    string
	qubits    int
	params    int
	paramHint string
	qasm      bool // false for symbols with no QASM spelling
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// buildMenu lays out the catalogue by category and appends the basis
// projectors.
func buildMenu(cat *gates.Catalogue) []menuCategory {
	var menu []menuCategory
	index := map[gates.Category]int{}
	for _, e := range cat.Entries() {
		i, ok := index[e.Category]
		if !ok {
			i = len(menu)
			index[e.Category] = i
			menu = append(menu, menuCategory{name: string(e.Category)})
		}
		symbol := e.Name
		if e.Qubits == 2 {
			symbol = "●─⊕"
		}
		menu[i].items = append(menu[i].items, menuItem{
			name:      e.Description,
			gateType:  e.Name,
			symbol:    symbol,
			qubits:    e.Qubits,
			params:    e.Params,
			paramHint: e.ParamHint,
			qasm:      true,
		})
	}

	projectors := menuCategory{name: "Projector"}
	for _, name := range gates.ProjectorNames() {
		p, _ := gates.Projector(expr.S(name))
		projectors.items = append(projectors.items, menuItem{
			name:     name,
			gateType: name,
			symbol:   p.String(),
			qubits:   1,
		})
	}
	return append(menu, projectors)
}

// snippet returns the text the item inserts into the editor.
func (it menuItem) snippet(qasm bool, params string) (string, error) {
	if !qasm {
		if it.params > 0 {
			return fmt.Sprintf("%s(%s)*", it.gateType, params), nil
		}
		return it.gateType + "*", nil
	}
	if !it.qasm {
		return "", fmt.Errorf("%s has no QASM form", it.gateType)
	}
	name := strings.ToLower(it.gateType)
	if name == "i" {
		name = "id"
	}
	switch {
	case it.qubits == 2:
		return name + " q[0], q[1];\n", nil
	case it.params > 0:
		return fmt.Sprintf("%s(%s) q[0];\n", name, params), nil
	}
	return name + " q[0];\n", nil
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Insert Gate"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range m.menu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(m.menu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", menuW)))
	sb.WriteString("\n")

	// Items in the selected category
	cat := m.menu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.params > 0 {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

// renderParamInput renders the parameter prompt for rotation gates.
func (m Model) renderParamInput() string {
	item := m.selectedItem()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Parameter"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s(%s_)", item.gateType, m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, theta"))
	return menuBorderStyle.Render(sb.String())
}
