package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jamesjuett/lobster-sub011/checkpoint"
	"github.com/jamesjuett/lobster-sub011/sim"
)

var (
	ErrNotCompiled      = errors.New(f("program has errors"))
	ErrCheckpointFailed = errors.New(f("checkpoint failed"))
)

func newRunCmd(a *app) *cobra.Command {
	var limit int
	var checkpoints string
	var expects []string

	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Compile and run a program to completion",
		Long: `Compiles the translation units, runs main, and prints what the
program wrote to std::cout. Runtime events such as undefined behavior and
memory leaks are reported on stderr. The predicates of --expect and of the
YAML file named by --checkpoints are checked against the final state.

The exit code is the program's exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.simulate(cmd, args)
			if err != nil {
				return
			}
			if limit <= 0 {
				limit = a.cfg.StepLimit
			}

			runErr := s.Run(cmd.Context(), limit)
			_, _ = cmd.OutOrStdout().Write([]byte(s.Stdout()))
			for _, ev := range s.Events {
				printEvent(cmd.ErrOrStderr(), ev)
			}
			if runErr != nil && !errors.As(runErr, new(*sim.ErrRuntime)) {
				return runErr
			}

			var cps []checkpoint.Checkpoint
			if checkpoints != "" {
				cps, err = loadCheckpoints(checkpoints)
				if err != nil {
					return
				}
			}
			for _, expr := range expects {
				cps = append(cps, checkpoint.Checkpoint{Name: expr, Expect: expr})
			}
			if len(cps) > 0 {
				if !printResults(cmd.ErrOrStderr(), checkpoint.Check(s, cps...)) {
					return ErrCheckpointFailed
				}
			}

			if runErr != nil {
				return runErr
			}
			if s.ExitCode != 0 {
				return &exitError{code: s.ExitCode}
			}
			return
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "step limit (default from config)")
	cmd.Flags().StringArrayVarP(&expects, "expect", "e", nil, "Starlark predicate to check after the run, repeatable")
	cmd.Flags().StringVar(&checkpoints, "checkpoints", "", "YAML checkpoint file to check after the run")
	return cmd
}

// simulate compiles args and creates a simulation of the result.
func (a *app) simulate(cmd *cobra.Command, args []string) (s *sim.Simulation, err error) {
	p, ok, err := a.compile(cmd.Context(), cmd.ErrOrStderr(), args...)
	if err != nil {
		return
	}
	if !ok {
		err = ErrNotCompiled
		return
	}

	s, err = sim.New(p, a.cfg.Memory)
	if err != nil {
		return
	}
	s.Verbose = a.verbose || a.cfg.Verbose
	s.Logger = a.logger.With(zap.Stringer("run", s.ID))

	a.logger.Debug("simulating",
		zap.Stringer("run", s.ID),
		zap.Strings("files", args),
		zap.Int("notes", len(p.Notes)),
		zap.Int("statics", len(p.Statics)),
	)
	return
}

func loadCheckpoints(path string) (cps []checkpoint.Checkpoint, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()
	return checkpoint.Load(inf)
}
