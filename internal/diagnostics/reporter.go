package diagnostics

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter renders diagnostics to a writer, counting as it goes so the
// driver can pick an exit code.
type Reporter struct {
	Out      io.Writer
	Color    bool
	Errors   int
	Warnings int
}

// Report renders a diagnostic. Signals are counted as a bug: the typer
// must intercept them before they reach reporting.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	if IsSignal(err) {
		r.Errors++
		fmt.Fprintf(r.Out, "internal: signal escaped to reporter: %v\n", err)
		return
	}
	r.Errors++
	label := "error"
	if r.Color {
		label = color.New(color.FgRed, color.Bold).Sprint(label)
	}
	fmt.Fprintf(r.Out, "%s: %s\n", label, err.Error())
}

// Warnf renders a warning; warnings never affect the exit code.
func (r *Reporter) Warnf(format string, args ...any) {
	r.Warnings++
	label := "warning"
	if r.Color {
		label = color.New(color.FgYellow, color.Bold).Sprint(label)
	}
	fmt.Fprintf(r.Out, "%s: %s\n", label, fmt.Sprintf(format, args...))
}
