package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI colour wrappers. Console applies them only when writing to a terminal.
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
	Dim    = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Console prints human-facing messages. It is kept off stdout by the CLI,
// which carries the audit trail.
type Console struct {
	w     io.Writer
	color bool
}

// NewConsole creates a Console writing to w, with colour when w is a terminal
func NewConsole(w io.Writer) *Console {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Console{w: w, color: color}
}

// Writer returns the underlying writer
func (c *Console) Writer() io.Writer {
	return c.w
}

func (c *Console) paint(fn func(string) string, s string) string {
	if !c.color {
		return s
	}
	return fn(s)
}

// PrintError prints an error message in red
func (c *Console) PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(c.w, c.paint(Red, msg))
}

// PrintSuccess prints a success message in green
func (c *Console) PrintSuccess(msg string) {
	fmt.Fprintln(c.w, c.paint(Green, msg))
}

// PrintInfo prints a label/value pair
func (c *Console) PrintInfo(label string, value string) {
	fmt.Fprintf(c.w, "%s: %s\n", c.paint(Cyan, label), c.paint(Yellow, value))
}

// PrintWarning prints a warning message in yellow
func (c *Console) PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(c.w, c.paint(Yellow, msg))
}

// PrintDim prints secondary text
func (c *Console) PrintDim(msg string) {
	fmt.Fprintln(c.w, c.paint(Dim, msg))
}

// PrintBlock prints pre-rendered text such as a table
func (c *Console) PrintBlock(block string) {
	if block == "" {
		return
	}
	fmt.Fprintln(c.w, block)
}
