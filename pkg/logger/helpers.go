package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	iconSuccess = "✅"
	iconRefresh = "🔄"
	iconNetwork = "🌐"
	iconDot     = "•"
)

// console is where the formatting helpers print: the default logger's
// writer, styled the way the default logger is.
func console() *output {
	if l, ok := defaultLogger.(*logger); ok {
		return l.out
	}
	return &output{writer: io.Discard, noColor: true}
}

// print writes lines to the console under its lock.
func (o *output) print(lines ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, line := range lines {
		_, _ = fmt.Fprintln(o.writer, line)
	}
}

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(iconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message
func Progress(args ...interface{}) {
	defaultLogger.Info(iconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// Network logs a listener or connection message
func Network(args ...interface{}) {
	defaultLogger.Info(iconNetwork + " " + fmt.Sprint(args...))
}

// Networkf logs a formatted network message
func Networkf(format string, args ...interface{}) {
	Network(fmt.Sprintf(format, args...))
}

func banner(c *color.Color, rule string, width int, title string, bold bool) {
	o := console()
	line := strings.Repeat(rule, width)
	heading := o.paint(c, title)
	if bold && !o.noColor {
		heading = color.New(color.FgCyan, color.Bold).Sprint(title)
	}
	o.print(o.paint(c, line), heading, o.paint(c, line))
}

// LogSection prints a section banner
func LogSection(title string) {
	banner(cyan, "=", 50, title, true)
}

// LogSubSection prints a lighter subsection banner
func LogSubSection(title string) {
	banner(gray, "-", 40, title, false)
}

// LogList logs a title followed by bulleted items
func LogList(title string, items []string) {
	Info(title)
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("  %s %s", iconDot, item)
	}
	console().print(lines...)
}

// LogKeyValue prints one key: value line
func LogKeyValue(key string, value interface{}) {
	o := console()
	o.print(fmt.Sprintf("%s %v", o.paint(cyan, key+":"), value))
}

// Table collects rows and prints them with aligned columns
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row; cells past the header count are dropped.
func (t *Table) AddRow(values ...string) {
	if len(values) > len(t.headers) {
		values = values[:len(t.headers)]
	}
	t.rows = append(t.rows, values)
}

// Print prints the table to the console
func (t *Table) Print() {
	if len(t.headers) == 0 {
		return
	}
	console().print(t.lines()...)
}

func (t *Table) lines() []string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	format := func(cells []string) string {
		var b strings.Builder
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, "%-*s  ", w, cell)
		}
		return strings.TrimRight(b.String(), " ")
	}

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}

	out := []string{format(t.headers), format(rules)}
	for _, row := range t.rows {
		out = append(out, format(row))
	}
	return out
}
