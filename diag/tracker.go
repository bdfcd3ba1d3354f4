package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Info struct {
	Line int
	Msg  string
}

// Tracker collects recoverable errors and warnings for one translation unit.
// Warnings never alter control flow; errors stop parsing once Limit is hit.
type Tracker struct {
	errs  []Info
	warns []Info
	// 0 means unlimited
	Limit int
}

func NewTracker(limit int) *Tracker {
	return &Tracker{
		errs:  []Info{},
		warns: []Info{},
		Limit: limit,
	}
}

func (t *Tracker) Err(line int, format string, args ...any) {
	t.errs = append(t.errs, Info{Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (t *Tracker) Warn(line int, format string, args ...any) {
	t.warns = append(t.warns, Info{Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (t *Tracker) HasError() bool {
	return len(t.errs) > 0
}

// TooManyErrors tells parse loops to short-circuit and return early.
func (t *Tracker) TooManyErrors() bool {
	return t.Limit > 0 && len(t.errs) >= t.Limit
}

func (t *Tracker) ErrorCount() int {
	return len(t.errs)
}

func (t *Tracker) WarningCount() int {
	return len(t.warns)
}

func (t *Tracker) Errors() []Info {
	return t.errs
}

func (t *Tracker) Warnings() []Info {
	return t.warns
}

// Print renders collected diagnostics, colored when w is a terminal.
func (t *Tracker) Print(w io.Writer) {
	red := fmt.Sprintf
	yellow := fmt.Sprintf
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		red = color.New(color.FgRed).Sprintf
		yellow = color.New(color.FgYellow).Sprintf
	}
	for _, e := range t.errs {
		fmt.Fprintf(w, "%s\n", red("error(%d): %s", e.Line, e.Msg))
	}
	for _, wa := range t.warns {
		fmt.Fprintf(w, "%s\n", yellow("warning(%d): %s", wa.Line, wa.Msg))
	}
}
