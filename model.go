package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qdirac/internal/circuit"
	"qdirac/internal/engine"
	"qdirac/internal/expr"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusEditor focus = iota
	focusSteps
	focusMenu
	focusInputParam
)

// inputMode selects how the editor text is read.
type inputMode int

const (
	modeExpr inputMode = iota
	modeQASM
)

func (m inputMode) String() string {
	if m == modeQASM {
		return "QASM"
	}
	return "Expression"
}

const bellQASM = `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
h q[0];
cx q[0], q[1];
`

// reducedMsg carries the result of an asynchronous reduction.
type reducedMsg struct {
	seq    int
	result *reduction
	err    error
}

// stepView is what the steps panel shows.
type stepView struct {
	steps   engine.Steps
	out     expr.Expr
	circuit *circuit.Circuit
	err     error
}

// Model represents the TUI application state.
type Model struct {
	eng       *engine.Engine
	logger    *zap.Logger
	keys      keyMap
	editor    textarea.Model
	steps     viewport.Model
	menu      []menuCategory
	focus     focus
	mode      inputMode
	latex     bool
	width     int
	height    int
	statusMsg string // transient status message (e.g. save confirmation)
	savePath  string

	// Reduction state; seq discards results of superseded requests.
	seq     int
	running bool
	result  *stepView

	// Menu state
	menuCat    int
	menuItem   int
	paramInput string
}

func newModel(eng *engine.Engine, logger *zap.Logger, input string) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter an expression, e.g. CX*(H@I)*|00>"
	ta.SetWidth(40)
	ta.SetHeight(10)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.SetValue(input)
	ta.Focus()

	m := Model{
		eng:      eng,
		logger:   logger,
		keys:     defaultKeyMap(),
		editor:   ta,
		steps:    viewport.New(40, 10),
		menu:     buildMenu(eng.Catalogue()),
		focus:    focusEditor,
		savePath: "qdirac-steps",
	}
	if input != "" {
		m.seq = 1
		m.running = true
	}
	return m
}

// reduceCmd runs the reduction off the update loop.
func (m Model) reduceCmd() tea.Cmd {
	eng, seq, text, qasm := m.eng, m.seq, m.editor.Value(), m.mode == modeQASM
	return func() tea.Msg {
		r, err := reduceText(eng, text, qasm)
		return reducedMsg{seq: seq, result: r, err: err}
	}
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	if m.running {
		return tea.Batch(textarea.Blink, m.reduceCmd())
	}
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		editorW, stepsW, panelH := m.layout()
		m.editor.SetWidth(max(editorW-4, 10))
		m.editor.SetHeight(max(panelH-5, 3))
		m.steps.Width = max(stepsW-4, 10)
		m.steps.Height = max(panelH-5, 3)
		m.refreshSteps()

	case reducedMsg:
		if msg.seq != m.seq {
			break
		}
		m.running = false
		res := &stepView{err: msg.err}
		if msg.err != nil {
			m.logger.Debug("reduction failed", zap.Error(msg.err))
		} else {
			logReduction(m.logger, msg.result)
			res.steps, res.out, res.circuit = msg.result.steps, msg.result.out, msg.result.circuit
		}
		m.result = res
		m.refreshSteps()
		m.steps.GotoTop()

	case tea.KeyMsg:
		m.statusMsg = ""

		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

		switch m.focus {
		case focusEditor:
			switch {
			case key.Matches(msg, m.keys.SwitchPane):
				m.focus = focusSteps
				m.editor.Blur()
			case key.Matches(msg, m.keys.Menu):
				m.focus = focusMenu
				m.menuCat, m.menuItem = 0, 0
			case m.global(msg, &cmds):
			default:
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusSteps:
			switch {
			case key.Matches(msg, m.keys.SwitchPane):
				m.focus = focusEditor
				cmds = append(cmds, m.editor.Focus())
			case msg.String() == "q":
				return m, tea.Quit
			case m.global(msg, &cmds):
			default:
				var cmd tea.Cmd
				m.steps, cmd = m.steps.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusMenu:
			switch {
			case key.Matches(msg, m.keys.Back):
				m.focus = focusEditor
			case key.Matches(msg, m.keys.Up):
				if m.menuItem > 0 {
					m.menuItem--
				}
			case key.Matches(msg, m.keys.Down):
				if m.menuItem < len(m.menu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case key.Matches(msg, m.keys.Left):
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case key.Matches(msg, m.keys.Right):
				if m.menuCat < len(m.menu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case key.Matches(msg, m.keys.Confirm):
				if m.selectedItem().params > 0 {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				m.insertSelected("")
			}

		case focusInputParam:
			switch {
			case key.Matches(msg, m.keys.Back):
				m.paramInput = ""
				m.focus = focusMenu
			case msg.Type == tea.KeyBackspace:
				if r := []rune(m.paramInput); len(r) > 0 {
					m.paramInput = string(r[:len(r)-1])
				}
			case key.Matches(msg, m.keys.Confirm):
				if _, err := circuit.ParseParam(m.paramInput); err != nil {
					m.statusMsg = "Invalid parameter: use numbers, pi expressions or symbols (e.g. pi/2, theta)"
					break
				}
				m.insertSelected(m.paramInput)
				m.paramInput = ""
			case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
				m.paramInput += string(msg.Runes)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// global handles the bindings shared by the editor and the steps panel.
// It reports whether msg was consumed.
func (m *Model) global(msg tea.KeyMsg, cmds *[]tea.Cmd) bool {
	switch {
	case key.Matches(msg, m.keys.Reduce):
		m.seq++
		m.running = true
		m.refreshSteps()
		*cmds = append(*cmds, m.reduceCmd())
	case key.Matches(msg, m.keys.LaTeX):
		m.latex = !m.latex
		m.refreshSteps()
	case key.Matches(msg, m.keys.Mode):
		m.mode = 1 - m.mode
		m.editor.Placeholder = "Enter an expression, e.g. CX*(H@I)*|00>"
		if m.mode == modeQASM {
			m.editor.Placeholder = "Enter OpenQASM 2.0"
			if m.editor.Value() == "" {
				m.editor.SetValue(bellQASM)
			}
		}
		m.statusMsg = "Input mode: " + m.mode.String()
	case key.Matches(msg, m.keys.Save):
		m.statusMsg = m.save()
	default:
		return false
	}
	return true
}

func (m Model) selectedItem() menuItem {
	return m.menu[m.menuCat].items[m.menuItem]
}

// insertSelected writes the selected gate at the editor cursor.
func (m *Model) insertSelected(params string) {
	text, err := m.selectedItem().snippet(m.mode == modeQASM, params)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.editor.InsertString(text)
	m.focus = focusEditor
}

// save writes the current step log, as LaTeX when that view is active.
func (m Model) save() string {
	r := m.result
	if r == nil || r.err != nil {
		return "Nothing to save"
	}
	path, body := m.savePath+".txt", r.steps.Plain()
	if m.latex {
		path, body = m.savePath+".tex", r.steps.LaTeX()+"\n"
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		m.logger.Warn("failed to save steps", zap.String("path", path), zap.Error(err))
		return fmt.Sprintf("Save error: %v", err)
	}
	return "Saved " + path
}

func (m *Model) refreshSteps() {
	m.steps.SetContent(m.stepsContent(m.steps.Width))
}

// layout returns the editor width, steps width and panel height.
func (m Model) layout() (editorW, stepsW, panelH int) {
	editorW = max(m.width/3, 24)
	stepsW = max(m.width-editorW-4, 20)
	panelH = max(m.height-controlsHeight-2, 6)
	return editorW, stepsW, panelH
}

const controlsHeight = 4

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	editorW, stepsW, panelH := m.layout()
	editorPanel := m.renderEditorPanel(editorW, panelH)
	stepsPanel := m.renderStepsPanel(stepsW, panelH)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, editorPanel, stepsPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}
	return frame
}
