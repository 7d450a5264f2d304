package formatting

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"linearproxy/internal/verify"
)

// YAMLFormatter writes the report as YAML.
type YAMLFormatter struct{}

// FormatReport implements Formatter.
func (f *YAMLFormatter) FormatReport(w io.Writer, report *verify.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as YAML: %w", err)
	}
	return enc.Close()
}
