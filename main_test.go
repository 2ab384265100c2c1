package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"qdirac/internal/config"
	"qdirac/internal/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// execute runs a fresh command tree against a config path that does not
// exist, so only defaults and flags apply.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeIn(t, "", args...)
}

func executeIn(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("QDIRAC_LOG_LEVEL", "")
	t.Setenv("QDIRAC_MAX_DEPTH", "")
	t.Setenv("QDIRAC_FORMAT", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cfgPath := filepath.Join(t.TempDir(), "qdirac.yaml")
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

const bellCircuit = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0], q[1];
measure q -> c;
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReduceCommand(t *testing.T) {
	out, err := execute(t, "reduce", "H*|0>")
	require.NoError(t, err)
	assert.Equal(t, "sqrt(2)/2*|0⟩ + sqrt(2)/2*|1⟩\n", out)

	out, err = execute(t, "reduce", "CX*(H@I)*|00>")
	require.NoError(t, err)
	assert.Equal(t, "sqrt(2)/2*|0⟩⊗|0⟩ + sqrt(2)/2*|1⟩⊗|1⟩\n", out)
}

func TestReduceCommandJoinsArgs(t *testing.T) {
	out, err := execute(t, "reduce", "X", "*", "|0>")
	require.NoError(t, err)
	assert.Equal(t, "|1⟩\n", out)
}

func TestReduceCommandLaTeX(t *testing.T) {
	out, err := execute(t, "reduce", "--latex", "X*|0>")
	require.NoError(t, err)
	assert.Equal(t, "{\\left|1\\right\\rangle }\n", out)
}

func TestReduceCommandErrors(t *testing.T) {
	_, err := execute(t, "reduce", "<psi|0>")
	assert.True(t, errors.Is(err, engine.ErrUnhandledBraKet), "got %v", err)

	_, err = execute(t, "reduce", "H*(|0>")
	assert.Error(t, err)

	_, err = execute(t, "reduce")
	assert.Error(t, err)
}

func TestReduceCommandBindings(t *testing.T) {
	out, err := execute(t, "reduce", "--set", "theta=pi", "RX(theta)*|0>")
	require.NoError(t, err)
	assert.Equal(t, "-i*|1⟩\n", out)

	out, err = execute(t, "reduce", "--set", "U=H", "--set", "V=X", "U*V*|1>")
	require.NoError(t, err)
	assert.Equal(t, "sqrt(2)/2*|0⟩ + sqrt(2)/2*|1⟩\n", out)

	out, err = execute(t, "steps", "--set", "theta=0", "RY(theta)*|1>")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "|1⟩\n"), out)

	_, err = execute(t, "reduce", "--set", "theta", "RX(theta)*|0>")
	assert.ErrorContains(t, err, "want NAME=VALUE")

	_, err = execute(t, "reduce", "--set", "theta=(", "RX(theta)*|0>")
	assert.ErrorContains(t, err, "binding theta")
}

func TestMaxDepthFlag(t *testing.T) {
	_, err := execute(t, "--max-depth", "1", "reduce", "CX*|00>")
	assert.True(t, errors.Is(err, engine.ErrRecursionDepth), "got %v", err)

	_, err = execute(t, "--max-depth", "0", "reduce", "X*|0>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestStepsCommand(t *testing.T) {
	out, err := execute(t, "steps", "B0*|0>")
	require.NoError(t, err)
	assert.Equal(t, "(0) B0*|0⟩\n(1) ⟨0|0⟩*|0⟩\n(2) |0⟩\n", out)

	out, err = execute(t, "steps", "--latex", "B0*|0>")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `(0) \quad B_{0}`), out)
}

func TestStepsCommandJSON(t *testing.T) {
	out, err := execute(t, "steps", "--format", "json", "X*|0>")
	require.NoError(t, err)

	var steps []struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &steps))
	require.Len(t, steps, 3)
	assert.Equal(t, "X*|0⟩", steps[0].Text)
	assert.Equal(t, "|1⟩", steps[2].Text)
	assert.Equal(t, 2, steps[2].Index)

	_, err = execute(t, "steps", "--format", "html", "X*|0>")
	assert.Error(t, err)
}

func TestCircuitCommand(t *testing.T) {
	path := writeFile(t, "bell.qasm", bellCircuit)

	out, err := execute(t, "circuit", "--check", path)
	require.NoError(t, err)
	want := "sqrt(2)/2*|0⟩⊗|0⟩ + sqrt(2)/2*|1⟩⊗|1⟩\n" +
		"numeric check: ok\n" +
		"P(q[0]=1) = 0.5000\n" +
		"P(q[1]=1) = 0.5000\n"
	assert.Equal(t, want, out)

	out, err = execute(t, "circuit", "--steps", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "(0) CX*H⊗I*|0⟩⊗|0⟩\n"), out)
}

func TestCircuitCommandErrors(t *testing.T) {
	_, err := execute(t, "circuit", filepath.Join(t.TempDir(), "missing.qasm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read circuit")

	bad := writeFile(t, "bad.qasm", "qreg q[1];\nfoo q[0];\n")
	_, err = execute(t, "circuit", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse circuit")

	symbolic := writeFile(t, "ry.qasm", "qreg q[1];\nry(theta) q[0];\n")
	out, err := execute(t, "circuit", symbolic)
	require.NoError(t, err)
	assert.Equal(t, "cos(theta/2)*|0⟩ + sin(theta/2)*|1⟩\n", out)

	_, err = execute(t, "circuit", "--check", symbolic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numeric check")
}

func TestGatesCommand(t *testing.T) {
	out, err := execute(t, "gates")
	require.NoError(t, err)
	for _, want := range []string{"NAME", "Hadamard", "CX (CNOT)", "RZ", "B3", "|1⟩⟨1|"} {
		assert.Contains(t, out, want)
	}

	out, err = execute(t, "gates", "--decompose")
	require.NoError(t, err)
	assert.Contains(t, out, "DECOMPOSITION")
	assert.Contains(t, out, "|0⟩⟨1| + |1⟩⟨0|")
	assert.Contains(t, out, "theta/2")
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "max_depth: 512")
	assert.Contains(t, out, "format: plain")

	t.Setenv("QDIRAC_FORMAT", "")
	path := filepath.Join(t.TempDir(), "conf", "qdirac.yaml")
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", path, "--max-depth", "64", "config", "--write"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "wrote "+path+"\n", buf.String())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Engine.MaxDepth)
}

func TestConfigFileFormat(t *testing.T) {
	t.Setenv("QDIRAC_LOG_LEVEL", "")
	t.Setenv("QDIRAC_MAX_DEPTH", "")
	t.Setenv("QDIRAC_FORMAT", "")
	path := writeFile(t, "qdirac.yaml", "render:\n  format: json\n")

	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", path, "steps", "X*|0>"})
	require.NoError(t, cmd.Execute())
	assert.True(t, json.Valid(buf.Bytes()), buf.String())
}

func TestCommandsAreRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"reduce", "steps", "circuit", "gates", "tui", "config", "batch", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	tui, _, _ := root.Find([]string{"tui"})
	assert.True(t, isInteractive(tui))
	assert.True(t, isInteractive(root))
	reduce, _, _ := root.Find([]string{"reduce"})
	assert.False(t, isInteractive(reduce))
}

func TestBatchCommand(t *testing.T) {
	input := "# comment\nX*|0>\n\nH*|0>\nZ*|1>\nCX*|10>\n"
	out, err := executeIn(t, input, "batch", "--jobs", "2", "-")
	require.NoError(t, err)
	want := "X*|0> => |1⟩\n" +
		"H*|0> => sqrt(2)/2*|0⟩ + sqrt(2)/2*|1⟩\n" +
		"Z*|1> => -|1⟩\n" +
		"CX*|10> => |1⟩⊗|1⟩\n"
	assert.Equal(t, want, out)

	path := writeFile(t, "batch.txt", "Y*|0>\n")
	out, err = execute(t, "batch", path)
	require.NoError(t, err)
	assert.Equal(t, "Y*|0> => i*|1⟩\n", out)
}

func TestBatchCommandError(t *testing.T) {
	_, err := executeIn(t, "X*|0>\n<psi|0>\n", "batch", "-")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUnhandledBraKet), "got %v", err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = execute(t, "batch", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestReadBatch(t *testing.T) {
	lines, err := readBatch(strings.NewReader("  a \n#b\n\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, []batchLine{{no: 1, text: "a"}, {no: 4, text: "c"}}, lines)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "qdirac dev\n"), out)
}

func TestWatchFile(t *testing.T) {
	path := writeFile(t, "bell.qasm", bellCircuit)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, zap.NewNop(), path, func() error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Keep writing until the watcher is registered and reports a change.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(bellCircuit), 0644)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchFileMissingDir(t *testing.T) {
	err := watchFile(context.Background(), zap.NewNop(), filepath.Join(t.TempDir(), "no", "such.qasm"), func() error { return nil })
	assert.Error(t, err)
}
