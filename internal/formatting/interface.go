// Package formatting renders verification reports for the check command.
//
// Three output formats are supported: a go-pretty table for people, and
// JSON or YAML for scripts.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"linearproxy/internal/verify"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the accepted values of --output.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates an --output value. Empty selects FormatTable.
func ParseFormat(s string) (OutputFormat, error) {
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", s)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// Formatter writes a verification report.
type Formatter interface {
	FormatReport(w io.Writer, report *verify.Report) error
}

// NewFormatter creates the formatter for options.Format.
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{options: options}
	}
}
