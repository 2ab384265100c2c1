// Command qdirac reduces Dirac-notation expressions over a small gate
// catalogue and shows every intermediate step, either on the command line
// or in an interactive terminal viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qdirac/internal/config"
	"qdirac/internal/engine"
	"qdirac/internal/logging"
)

// app carries the state shared by all commands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	maxDepth   int

	cfg    *config.Config
	logger *zap.Logger
	eng    *engine.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "qdirac",
		Short: "Step-by-step symbolic reduction of bra-ket expressions",
		Long: `qdirac rewrites quantum states and operators written in Dirac notation
into sums of scaled computational basis states, logging every step.

Run without arguments to start the interactive step viewer.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, "")
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "qdirac.yaml", "Config file (missing file means defaults)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().IntVar(&a.maxDepth, "max-depth", 0, "Reduction recursion limit")

	root.AddCommand(
		a.reduceCmd(),
		a.stepsCmd(),
		a.circuitCmd(),
		a.gatesCmd(),
		a.tuiCmd(),
		a.configCmd(),
		a.batchCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger
// and engine.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Engine.MaxDepth = a.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	// The interactive viewer owns the terminal, so it only logs to a file.
	logCfg := cfg.Logging
	if isInteractive(cmd) {
		if cfg.TUI.LogFile == "" {
			a.logger = zap.NewNop()
		} else {
			logCfg.OutputPaths = []string{cfg.TUI.LogFile}
		}
	}
	if a.logger == nil {
		if a.logger, err = logging.New(logCfg); err != nil {
			return err
		}
	}

	a.eng = engine.New(
		engine.WithLogger(a.logger),
		engine.WithMaxDepth(cfg.Engine.MaxDepth),
	)
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
