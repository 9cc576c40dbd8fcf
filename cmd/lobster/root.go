package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jamesjuett/lobster-sub011/config"
	"github.com/jamesjuett/lobster-sub011/construct"
	"github.com/jamesjuett/lobster-sub011/frontend"
	"github.com/jamesjuett/lobster-sub011/translate"
)

// exitError carries the exit code of a simulated program out of Execute.
type exitError struct {
	code int
}

func (err *exitError) Error() string {
	return f("exit code %d", err.code)
}

var f = translate.From

// app is the state shared by every command.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "lobster",
		Short: "Analyze and step through C++ teaching programs",
		Long: `lobster compiles programs written in a teaching subset of C++,
reports diagnostics, and simulates them step by step, tracking every
object in memory and flagging undefined behavior and leaks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			a.cfg, err = config.LoadFile(a.configPath)
			if err != nil {
				return
			}
			if a.cfg.Locale != "" {
				translate.SetLocale(a.cfg.Locale)
			}

			zcfg := zap.NewProductionConfig()
			if a.verbose || a.cfg.Verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			a.logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default $LOBSTER_CONFIG or ~/.config/lobster/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every simulation step")

	root.AddCommand(
		newRunCmd(a),
		newCheckCmd(a),
		newStepCmd(a),
	)
	return root
}

// compile parses and compiles paths, printing every frontend error and
// note to w. ok is false when the program cannot be simulated.
func (a *app) compile(ctx context.Context, w io.Writer, paths ...string) (p *construct.Program, ok bool, err error) {
	parser := &frontend.Parser{Logger: a.logger}
	units, err := parser.ParseFiles(ctx, paths...)
	if units == nil {
		return
	}
	if err != nil {
		printErrors(w, err)
		err = nil
		return
	}

	p = construct.Compile(a.logger, units...)
	for _, note := range p.Notes {
		printNote(w, note)
	}
	ok = !p.HasErrors()
	return
}
