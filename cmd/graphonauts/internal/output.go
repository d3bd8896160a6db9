package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// OutputFormat selects how commands render their results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Formatter renders command results in one output format.
type Formatter interface {
	// Format reports the format this formatter renders.
	Format() OutputFormat

	PrintSuccess(message string) error
	PrintWarning(message string) error
	PrintError(message string) error

	// PrintTable renders rows under headers. Short rows are padded with empty cells.
	PrintTable(headers []string, rows [][]string) error

	// PrintJSON renders v as indented JSON regardless of the format.
	PrintJSON(v any) error
}

// NewFormatter returns the formatter for format, defaulting to text.
func NewFormatter(format OutputFormat, w io.Writer) Formatter {
	if format == FormatJSON {
		return &jsonFormatter{w: w}
	}
	return &textFormatter{w: w}
}

// status marks of text output; fatih/color drops the escapes when w is not a terminal
// or NO_COLOR is set.
var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
)

type textFormatter struct {
	w io.Writer
}

func (f *textFormatter) Format() OutputFormat { return FormatText }

func (f *textFormatter) PrintSuccess(message string) error {
	return f.line(okMark("✓"), message)
}

func (f *textFormatter) PrintWarning(message string) error {
	return f.line(warnMark("!"), message)
}

func (f *textFormatter) PrintError(message string) error {
	return f.line(failMark("✗"), message)
}

func (f *textFormatter) line(mark, message string) error {
	_, err := fmt.Fprintf(f.w, "%s %s\n", mark, message)
	return err
}

func (f *textFormatter) PrintTable(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)

	titles := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		titles[i] = bold(strings.ToUpper(h))
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(pad(row, len(headers)), "\t"))
	}
	return tw.Flush()
}

func (f *textFormatter) PrintJSON(v any) error {
	return writeJSON(f.w, v)
}

type jsonFormatter struct {
	w io.Writer
}

func (f *jsonFormatter) Format() OutputFormat { return FormatJSON }

func (f *jsonFormatter) PrintSuccess(message string) error {
	return f.status("success", message)
}

func (f *jsonFormatter) PrintWarning(message string) error {
	return f.status("warning", message)
}

func (f *jsonFormatter) PrintError(message string) error {
	return f.status("error", message)
}

func (f *jsonFormatter) status(status, message string) error {
	return writeJSON(f.w, map[string]string{"status": status, "message": message})
}

// PrintTable renders one object per row keyed by header, plus the header order.
func (f *jsonFormatter) PrintTable(headers []string, rows [][]string) error {
	objects := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		row = pad(row, len(headers))
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			obj[h] = row[i]
		}
		objects = append(objects, obj)
	}
	return writeJSON(f.w, map[string]any{"columns": headers, "rows": objects})
}

func (f *jsonFormatter) PrintJSON(v any) error {
	return writeJSON(f.w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
