// Package output formats newsctl results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Format is the rendering used for command results.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be table or json", s)
	}
}

// ResolveColors disables colors when NO_COLOR is set or the terminal is dumb.
func ResolveColors(configColors bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return configColors
}

// Printer writes status lines and results.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
	format    Format
}

func NewPrinter(out, errOut io.Writer, format Format, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, format: format, useColors: useColors}
}

// Out is the writer results are rendered to.
func (p *Printer) Out() io.Writer { return p.out }

// JSON reports whether results should be printed as JSON.
func (p *Printer) JSON() bool { return p.format == FormatJSON }

// Info prints an informational message to stdout.
func (p *Printer) Info(format string, args ...any) {
	p.colored(p.out, color.FgCyan, format, args...)
}

// Success prints a success message to stdout.
func (p *Printer) Success(format string, args ...any) {
	p.colored(p.out, color.FgGreen, format, args...)
}

// Warning prints a warning to stderr.
func (p *Printer) Warning(format string, args ...any) {
	p.colored(p.err, color.FgYellow, format, args...)
}

// Error prints an error to stderr.
func (p *Printer) Error(format string, args ...any) {
	p.colored(p.err, color.FgRed, format, args...)
}

// Bold renders s in bold when colors are on.
func (p *Printer) Bold(s string) string {
	if !p.useColors {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}

// Dim renders s faint when colors are on.
func (p *Printer) Dim(s string) string {
	if !p.useColors {
		return s
	}
	return color.New(color.Faint).Sprint(s)
}

// PrintJSON writes v as indented JSON.
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func (p *Printer) colored(w io.Writer, attr color.Attribute, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.useColors {
		c := color.New(attr)
		c.EnableColor()
		msg = c.Sprint(msg)
	}
	_, _ = fmt.Fprintln(w, msg)
}
