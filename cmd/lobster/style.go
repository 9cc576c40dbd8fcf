package main

import (
	"errors"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesjuett/lobster-sub011/checkpoint"
	"github.com/jamesjuett/lobster-sub011/construct"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func severityStyle(s construct.Severity) lipgloss.Style {
	switch s {
	case construct.ERROR:
		return errorStyle
	case construct.WARNING:
		return warningStyle
	}
	return styleStyle
}

func eventStyle(k construct.EventKind) lipgloss.Style {
	switch k {
	case construct.UNDEFINED_BEHAVIOR, construct.ASSERTION_FAILURE, construct.CRASH:
		return errorStyle
	case construct.MEMORY_LEAK:
		return warningStyle
	}
	return styleStyle
}

func printNote(w io.Writer, note construct.Note) {
	_, _ = io.WriteString(w, f("%v: %v: %v %v\n",
		note.Span,
		severityStyle(note.Severity).Render(note.Severity.String()),
		note.Message,
		labelStyle.Render("["+note.Key+"]"),
	))
}

func printEvent(w io.Writer, ev construct.Event) {
	_, _ = io.WriteString(w, f("%v: %v: %v %v\n",
		ev.Span,
		eventStyle(ev.Kind).Render(ev.Kind.String()),
		ev.Message,
		labelStyle.Render(f("(step %d)", ev.Step)),
	))
}

// printErrors prints each joined error on its own line.
func printErrors(w io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			printErrors(w, e)
		}
		return
	}
	_, _ = io.WriteString(w, errorStyle.Render(f("error"))+": "+err.Error()+"\n")
}

// printResults prints checkpoint results and reports whether all passed.
func printResults(w io.Writer, results []checkpoint.Result) (passed bool) {
	passed = true
	for _, r := range results {
		var status string
		switch {
		case r.Err != nil:
			status = errorStyle.Render(f("ERROR"))
		case r.Passed:
			status = passStyle.Render(f("PASS"))
		default:
			status = errorStyle.Render(f("FAIL"))
		}
		_, _ = io.WriteString(w, f("%v %v\n", status, r.Name))
		if r.Err != nil {
			var check *checkpoint.ErrCheck
			if errors.As(r.Err, &check) {
				_, _ = io.WriteString(w, "    "+labelStyle.Render(check.Err.Error())+"\n")
			}
		}
		passed = passed && r.Passed && r.Err == nil
	}
	return
}
