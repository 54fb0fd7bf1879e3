// Package output renders CLI results as colored status lines, tables, or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ANSI attributes
const (
	reset = "\033[0m"

	FgRed    = 31
	FgGreen  = 32
	FgYellow = 33
	FgCyan   = 36
	FgWhite  = 37

	Bold = 1
)

// Printer writes CLI output to a pair of writers.
type Printer struct {
	out     io.Writer
	err     io.Writer
	noColor bool
}

// NewPrinter creates a Printer. noColor strips ANSI sequences, which keeps
// piped output and tests readable.
func NewPrinter(out, err io.Writer, noColor bool) *Printer {
	return &Printer{out: out, err: err, noColor: noColor}
}

// Colorize wraps s in the ANSI sequence for attrs unless color is disabled.
func (p *Printer) Colorize(s string, attrs ...int) string {
	if p.noColor || len(attrs) == 0 {
		return s
	}
	codes := make([]string, len(attrs))
	for i, a := range attrs {
		codes[i] = strconv.Itoa(a)
	}
	return "\033[" + strings.Join(codes, ";") + "m" + s + reset
}

// Success prints a green check line.
func (p *Printer) Success(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize("✓ "+fmt.Sprintf(format, a...), FgGreen, Bold))
}

// Info prints a cyan line.
func (p *Printer) Info(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize(fmt.Sprintf(format, a...), FgCyan))
}

// Warn prints a yellow warning line.
func (p *Printer) Warn(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize("⚠ "+fmt.Sprintf(format, a...), FgYellow))
}

// Error prints a red line to the error writer.
func (p *Printer) Error(format string, a ...interface{}) {
	fmt.Fprintln(p.err, p.Colorize("✗ "+fmt.Sprintf(format, a...), FgRed, Bold))
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table is a fixed-header text table.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render writes the table through p.
func (t *Table) Render(p *Printer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var line strings.Builder
	for i, h := range t.headers {
		fmt.Fprintf(&line, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(p.out, p.Colorize(strings.TrimRight(line.String(), " "), FgWhite, Bold))

	line.Reset()
	for i := range t.headers {
		line.WriteString(strings.Repeat("-", widths[i]) + "  ")
	}
	fmt.Fprintln(p.out, strings.TrimRight(line.String(), " "))

	for _, row := range t.rows {
		line.Reset()
		for i, cell := range row {
			fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(p.out, strings.TrimRight(line.String(), " "))
	}
}
