package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// Format selects how command results are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// ConfigureColor turns ANSI colour off when asked to, or when out is not a
// terminal.
func ConfigureColor(disable bool, out *os.File) {
	if disable || out == nil || !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		color.NoColor = true
	}
}

// Printer renders results to a writer in one format. Text output goes
// through the per-type table renderers; json and yaml encode the value as is.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Format returns the printer's output format
func (p *Printer) Format() Format {
	return p.format
}

// Render encodes v, or calls text for the text format
func (p *Printer) Render(v interface{}, text func(w io.Writer)) error {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		text(p.w)
		return nil
	}
}

// Message prints a confirmation line in text mode and encodes v otherwise
func (p *Printer) Message(v interface{}, format string, args ...interface{}) error {
	return p.Render(v, func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	})
}

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	urgentColor   = color.New(color.FgYellow, color.Bold)
	mediumColor   = color.New(color.FgCyan)
	lowColor      = color.New(color.FgGreen)
	headerColor   = color.New(color.Bold)
)

// priorityLabel pads before colouring so escape codes don't break columns
func priorityLabel(name string, width int) string {
	padded := fmt.Sprintf("%-*s", width, name)
	switch name {
	case "critical":
		return criticalColor.Sprint(padded)
	case "urgent", "high":
		return urgentColor.Sprint(padded)
	case "medium":
		return mediumColor.Sprint(padded)
	case "low":
		return lowColor.Sprint(padded)
	default:
		return padded
	}
}

func priority(p entities.Priority) string {
	return priorityLabel(p.String(), 9)
}

func heading(w io.Writer, title string) {
	headerColor.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(title))))
	fmt.Fprintln(w)
}

func rule(widths ...int) []interface{} {
	out := make([]interface{}, len(widths))
	for i, n := range widths {
		out[i] = strings.Repeat("-", n)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func minutes(m int64) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
