package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qdirac/internal/circuit"
	"qdirac/internal/config"
	"qdirac/internal/engine"
	"qdirac/internal/expr"
	"qdirac/internal/gates"
	"qdirac/internal/scalar"
)

func (a *app) reduceCmd() *cobra.Command {
	var (
		latex bool
		set   []string
	)
	cmd := &cobra.Command{
		Use:   "reduce EXPR",
		Short: "Reduce an expression and print the result",
		Example: `  qdirac reduce 'CX*(H@I)*|00>'
  qdirac reduce --latex 'RY(pi/2)*|0>'
  qdirac reduce --set theta=pi/2 'RX(theta)*|0>'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binds, err := parseBindings(set)
			if err != nil {
				return err
			}
			r, err := reduceText(a.eng, strings.Join(args, " "), false, binds...)
			if err != nil {
				return err
			}
			logReduction(a.logger, r)
			if latex {
				fmt.Fprintln(cmd.OutOrStdout(), r.out.LaTeX())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), r.out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&latex, "latex", false, "Print the result as LaTeX")
	cmd.Flags().StringArrayVar(&set, "set", nil, "Bind a symbol before reducing, as NAME=VALUE (repeatable)")
	return cmd
}

func (a *app) stepsCmd() *cobra.Command {
	var (
		latex  bool
		format string
		set    []string
	)
	cmd := &cobra.Command{
		Use:   "steps EXPR",
		Short: "Reduce an expression and print every intermediate step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binds, err := parseBindings(set)
			if err != nil {
				return err
			}
			r, err := reduceText(a.eng, strings.Join(args, " "), false, binds...)
			if err != nil {
				return err
			}
			logReduction(a.logger, r)
			return writeSteps(cmd.OutOrStdout(), r.steps, a.stepFormat(format, latex))
		},
	}
	cmd.Flags().BoolVar(&latex, "latex", false, "Shorthand for --format latex")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: plain, latex, json (default from config)")
	cmd.Flags().StringArrayVar(&set, "set", nil, "Bind a symbol before reducing, as NAME=VALUE (repeatable)")
	return cmd
}

func (a *app) circuitCmd() *cobra.Command {
	var opts circuitOptions
	cmd := &cobra.Command{
		Use:   "circuit FILE",
		Short: "Reduce an OpenQASM 2.0 circuit applied to |0...0>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, w := args[0], cmd.OutOrStdout()
			if !opts.watch {
				return a.runCircuit(w, path, opts)
			}
			if err := a.runCircuit(w, path, opts); err != nil {
				a.logger.Warn("reduction failed", zap.String("path", path), zap.Error(err))
			}
			return watchFile(cmd.Context(), a.logger, path, func() error {
				fmt.Fprintln(w)
				return a.runCircuit(w, path, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.steps, "steps", false, "Print every intermediate step")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Compare the result against a numeric simulation")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reduce again whenever FILE changes")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Step format: plain, latex, json (default from config)")
	return cmd
}

type circuitOptions struct {
	steps  bool
	check  bool
	watch  bool
	format string
}

func (a *app) runCircuit(w io.Writer, path string, opts circuitOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read circuit: %w", err)
	}
	r, err := reduceText(a.eng, string(data), true)
	if err != nil {
		return err
	}
	logReduction(a.logger, r)

	if opts.steps {
		if err := writeSteps(w, r.steps, a.stepFormat(opts.format, false)); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, r.out)
	}
	if opts.check {
		return checkCircuit(w, r)
	}
	return nil
}

// checkCircuit compares the symbolic result with the state-vector
// simulation of the same circuit.
func checkCircuit(w io.Writer, r *reduction) error {
	amps, err := circuit.Amplitudes(r.out)
	if err != nil {
		return err
	}
	sv, err := circuit.Simulate(r.circuit)
	if err != nil {
		return fmt.Errorf("numeric check: %w", err)
	}
	if err := sv.Compare(amps, 1e-9); err != nil {
		return fmt.Errorf("numeric check failed: %w", err)
	}
	fmt.Fprintln(w, "numeric check: ok")
	for q, p := range sv.QubitProbabilities() {
		fmt.Fprintf(w, "P(q[%d]=1) = %.4f\n", q, p)
	}
	return nil
}

func (a *app) gatesCmd() *cobra.Command {
	var decompose bool
	cmd := &cobra.Command{
		Use:   "gates",
		Short: "List the gate catalogue and projector symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listGates(cmd.OutOrStdout(), a.eng.Catalogue(), decompose)
		},
	}
	cmd.Flags().BoolVarP(&decompose, "decompose", "d", false, "Show each gate as a sum of outer products")
	return cmd
}

func listGates(out io.Writer, cat *gates.Catalogue, decompose bool) error {
	headers := []string{"NAME", "QUBITS", "PARAMS", "DESCRIPTION"}
	if decompose {
		headers = append(headers, "DECOMPOSITION")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)

	for _, e := range cat.Entries() {
		name := e.Name
		if len(e.Aliases) > 0 {
			name += " (" + strings.Join(e.Aliases, ", ") + ")"
		}
		row := []string{name, strconv.Itoa(e.Qubits), strconv.Itoa(e.Params), e.Description}
		if decompose {
			d, err := e.Decomposition(symbolicParams(e)...)
			if err != nil {
				return err
			}
			row = append(row, d.String())
		}
		t.Row(row...)
	}
	for _, name := range gates.ProjectorNames() {
		p, _ := gates.Projector(expr.S(name))
		row := []string{name, "1", "0", "Projector " + p.String()}
		if decompose {
			row = append(row, p.String())
		}
		t.Row(row...)
	}

	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func symbolicParams(e gates.Entry) []scalar.Value {
	ps := make([]scalar.Value, e.Params)
	for i := range ps {
		ps[i] = scalar.Symbol("theta")
	}
	return ps
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [FILE]",
		Short: "Start the interactive step viewer",
		Long: `Start the interactive step viewer. A FILE ending in .qasm opens in
circuit mode; any other file is read as an expression.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return a.runTUI(cmd, path)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command, path string) error {
	input, mode := a.cfg.TUI.Input, modeExpr
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		input = strings.TrimRight(string(data), "\n")
		if strings.EqualFold(filepath.Ext(path), ".qasm") {
			mode = modeQASM
		}
	}

	m := newModel(a.eng, a.logger, input)
	m.mode = mode
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (a *app) configCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				if err := a.cfg.Save(a.configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
				return nil
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the effective configuration to --config")
	return cmd
}

// stepFormat resolves the output format from flags and config.
func (a *app) stepFormat(format string, latex bool) string {
	switch {
	case latex:
		return config.FormatLaTeX
	case format != "":
		return format
	default:
		return a.cfg.Render.Format
	}
}

func writeSteps(w io.Writer, steps engine.Steps, format string) error {
	switch format {
	case config.FormatPlain:
		_, err := io.WriteString(w, steps.Plain())
		return err
	case config.FormatLaTeX:
		_, err := fmt.Fprintln(w, steps.LaTeX())
		return err
	case config.FormatJSON:
		data, err := json.MarshalIndent(steps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode steps: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qdirac version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			banner := figure.NewFigure("qdirac", "", true)
			fmt.Fprintln(w, strings.Join(banner.Slicify(), "\n"))
			fmt.Fprintf(w, "qdirac %s\n", version)
		},
	}
}
