package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qdirac/internal/engine"
)

func testModel(input string) Model {
	m := newModel(engine.New(), zap.NewNop(), input)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// findReduced runs cmd and any batched commands until a reducedMsg turns up.
func findReduced(cmd tea.Cmd) (reducedMsg, bool) {
	if cmd == nil {
		return reducedMsg{}, false
	}
	switch msg := cmd().(type) {
	case reducedMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if r, ok := findReduced(c); ok {
				return r, true
			}
		}
	}
	return reducedMsg{}, false
}

func reduced(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.reduceCmd()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModelStartsReduction(t *testing.T) {
	m := newModel(engine.New(), zap.NewNop(), "H*|0>")
	assert.True(t, m.running)
	assert.Equal(t, 1, m.seq)
	assert.Equal(t, "Loading...", m.View())

	idle := newModel(engine.New(), zap.NewNop(), "")
	assert.False(t, idle.running)
}

func TestReducedMessage(t *testing.T) {
	m := reduced(t, testModel("H*|0>"))
	require.NotNil(t, m.result)
	require.NoError(t, m.result.err)
	assert.False(t, m.running)
	assert.Equal(t, "sqrt(2)/2*|0⟩ + sqrt(2)/2*|1⟩", m.result.out.String())

	content := ansi.Strip(m.stepsContent(80))
	assert.Contains(t, content, "(0) H*|0⟩")
	assert.Contains(t, content, "= sqrt(2)/2*|0⟩ + sqrt(2)/2*|1⟩")
}

func TestStaleResultIgnored(t *testing.T) {
	m := testModel("H*|0>")
	next, _ := m.Update(reducedMsg{seq: m.seq - 1})
	m = next.(Model)
	assert.Nil(t, m.result)
	assert.True(t, m.running)
}

func TestReduceKey(t *testing.T) {
	m := reduced(t, testModel("X*|0>"))
	m.editor.SetValue("Z*|1>")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.True(t, m.running)
	assert.Equal(t, 2, m.seq)

	msg, ok := findReduced(cmd)
	require.True(t, ok)
	next, _ := m.Update(msg)
	m = next.(Model)
	require.NoError(t, m.result.err)
	assert.Equal(t, "-|1⟩", m.result.out.String())
}

func TestReductionError(t *testing.T) {
	m := reduced(t, testModel("<psi|0>"))
	require.Error(t, m.result.err)
	assert.Contains(t, ansi.Strip(m.stepsContent(80)), "error: ")
	assert.Equal(t, "Nothing to save", m.save())
}

func TestLaTeXToggle(t *testing.T) {
	m := reduced(t, testModel("X*|0>"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.True(t, m.latex)
	assert.Contains(t, m.stepsContent(80), `\right\rangle`)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.False(t, m.latex)
}

func TestMenuInsertsGate(t *testing.T) {
	m := testModel("")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Equal(t, focusMenu, m.focus)
	assert.Contains(t, ansi.Strip(m.View()), "Insert Gate")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusEditor, m.focus)
	assert.Equal(t, "X*", m.editor.Value())
}

func TestMenuParameterPrompt(t *testing.T) {
	m := testModel("")
	m, _ = press(t, m,
		tea.KeyMsg{Type: tea.KeyCtrlG},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	require.Equal(t, focusInputParam, m.focus)

	m, _ = press(t, m, runes("pi/"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusInputParam, m.focus)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Invalid parameter"), m.statusMsg)

	m, _ = press(t, m, runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusEditor, m.focus)
	assert.Equal(t, "RX(pi/2)*", m.editor.Value())
}

func TestMenuBackspaceAndEscape(t *testing.T) {
	m := testModel("")
	m, _ = press(t, m,
		tea.KeyMsg{Type: tea.KeyCtrlG},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyEnter},
		runes("pix"),
		tea.KeyMsg{Type: tea.KeyBackspace},
	)
	assert.Equal(t, "pi", m.paramInput)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusMenu, m.focus)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusEditor, m.focus)
	assert.Empty(t, m.editor.Value())
}

func TestQASMMode(t *testing.T) {
	m := testModel("")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, modeQASM, m.mode)
	assert.Equal(t, bellQASM, m.editor.Value())
	assert.Equal(t, "Input mode: QASM", m.statusMsg)

	m = reduced(t, m)
	require.NoError(t, m.result.err)
	require.NotNil(t, m.result.circuit)
	assert.Equal(t, "sqrt(2)/2*|0⟩⊗|0⟩ + sqrt(2)/2*|1⟩⊗|1⟩", m.result.out.String())
	strip := ansi.Strip(m.stepsContent(100))
	assert.Contains(t, strip, "q[0]")
	assert.Contains(t, strip, "●")
	assert.Contains(t, strip, "⊕")
}

func TestQASMModeRejectsProjectors(t *testing.T) {
	m := testModel("")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT}, tea.KeyMsg{Type: tea.KeyCtrlG})
	for range m.menu {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	require.Equal(t, "Projector", m.menu[m.menuCat].name)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "B0 has no QASM form", m.statusMsg)
	assert.Equal(t, focusMenu, m.focus)
}

func TestSaveSteps(t *testing.T) {
	dir := t.TempDir()
	m := reduced(t, testModel("B0*|0>"))
	m.savePath = filepath.Join(dir, "steps")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Saved "+m.savePath+".txt", m.statusMsg)
	data, err := os.ReadFile(m.savePath + ".txt")
	require.NoError(t, err)
	assert.Equal(t, "(0) B0*|0⟩\n(1) ⟨0|0⟩*|0⟩\n(2) |0⟩\n", string(data))

	m.latex = true
	assert.Equal(t, "Saved "+m.savePath+".tex", m.save())
	_, err = os.Stat(m.savePath + ".tex")
	assert.NoError(t, err)
}

func TestFocusSwitch(t *testing.T) {
	m := testModel("")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusSteps, m.focus)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusEditor, m.focus)
}

func TestQuit(t *testing.T) {
	_, cmd := press(t, testModel(""), tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestOverlayAt(t *testing.T) {
	bg := "aaaaa\nbbbbb\nccccc"
	assert.Equal(t, "aaaaa\nbXYbb\nccccc", overlayAt(bg, "XY", 1, 1))
	assert.Equal(t, "aaaaa\nbbbbb\ncccXY", overlayAt(bg, "XY\nZZ", 3, 2))
	assert.Equal(t, "ab  XY", spliceLineAt("ab", "XY", 4))
}

func TestPadCenter(t *testing.T) {
	assert.Equal(t, "──H──", padCenter("H", 5, "─"))
	assert.Equal(t, "abc", padCenter("abcdef", 3, " "))
}
