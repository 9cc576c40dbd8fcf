package main

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jamesjuett/lobster-sub011/sim"
)

var ErrUnknownCommand = errors.New(f("unknown command, try help"))

const stepHelp = `commands:
  s [N]          step forward N steps (default 1)
  b [N]          step backward N steps (default 1)
  c              continue to the end
  where          show the current construct
  stack          show the execution stack, innermost first
  globals        show global objects
  mem ADDR [N]   dump N bytes of memory at ADDR (default 16)
  out            show program output so far
  events         show runtime events so far
  reset          start over
  q              quit
`

func newStepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "step FILE...",
		Short: "Step through a program interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.simulate(cmd, args)
			if err != nil {
				return
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "lobster> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "q",
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return
			}
			defer rl.Close()

			d := &debugger{ctx: cmd.Context(), sim: s, w: rl.Stdout(), limit: a.cfg.StepLimit, logger: a.logger}
			d.where()
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				quit, err := d.exec(line)
				if err != nil {
					printErrors(cmd.ErrOrStderr(), err)
				}
				if quit {
					return nil
				}
			}
		},
	}
}

// debugger runs step commands against a simulation.
type debugger struct {
	ctx    context.Context
	sim    *sim.Simulation
	w      io.Writer
	limit  int
	logger *zap.Logger

	events int // Events already shown.
}

func (d *debugger) printf(format string, args ...any) {
	_, _ = io.WriteString(d.w, f(format, args...))
}

// count parses an optional positive count argument.
func count(args []string, n int) (int, error) {
	if len(args) == 0 {
		return n, nil
	}
	n, err := strconv.Atoi(args[0])
	if err == nil && n <= 0 {
		err = strconv.ErrRange
	}
	return n, err
}

// exec runs one command line.
func (d *debugger) exec(line string) (quit bool, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}
	cmd, args := words[0], words[1:]
	d.logger.Debug("command", zap.String("cmd", cmd), zap.Strings("args", args))

	switch cmd {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		d.printf("%s", stepHelp)
	case "s", "step":
		var n int
		if n, err = count(args, 1); err != nil {
			return
		}
		for range n {
			if d.sim.AtEnd() {
				break
			}
			if err = d.sim.StepForward(); err != nil {
				break
			}
		}
		d.newEvents()
		d.where()
	case "b", "back":
		var n int
		if n, err = count(args, 1); err != nil {
			return
		}
		err = d.sim.StepBackward(n)
		d.events = min(d.events, len(d.sim.Events))
		d.where()
	case "c", "continue":
		err = d.sim.Run(d.ctx, d.limit)
		d.newEvents()
		d.where()
	case "where":
		d.where()
	case "stack":
		depth := d.sim.Stack.Depth()
		for inst := range d.sim.Stack.All() {
			depth--
			d.printf("%3d %v %v\n", depth, inst.Construct.Pos(), inst)
		}
	case "globals":
		for name, obj := range d.sim.Globals() {
			d.printf("%v = %v\n", name, obj.Describe())
		}
	case "mem":
		err = d.dump(args)
	case "out":
		d.printf("%s\n", d.sim.Stdout())
	case "events":
		for _, ev := range d.sim.Events {
			printEvent(d.w, ev)
		}
		d.events = len(d.sim.Events)
	case "reset":
		err = d.sim.Reset()
		d.events = 0
		d.where()
	default:
		err = ErrUnknownCommand
	}
	return
}

// where prints the current construct, or the exit code at the end.
func (d *debugger) where() {
	if d.sim.AtEnd() {
		d.printf("%v\n", labelStyle.Render(f("finished after %d steps, exit code %d", d.sim.Steps, d.sim.ExitCode)))
		return
	}
	if top, ok := d.sim.Top(); ok {
		d.printf("%v %v\n", labelStyle.Render(f("step %d %v", d.sim.Steps, top.Construct.Pos())), top)
	}
}

// newEvents prints events not shown yet.
func (d *debugger) newEvents() {
	for _, ev := range d.sim.Events[d.events:] {
		printEvent(d.w, ev)
	}
	d.events = len(d.sim.Events)
}

func (d *debugger) dump(args []string) (err error) {
	if len(args) == 0 {
		return ErrUnknownCommand
	}
	address, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		return
	}
	n, err := count(args[1:], 16)
	if err != nil {
		return
	}

	mem := d.sim.Memory()
	if obj, ok := mem.ObjectAt(address); ok {
		d.printf("%v\n", obj.Describe())
	}
	d.printf("%s", hex.Dump(mem.GetBytes(address, int64(n))))
	return
}
