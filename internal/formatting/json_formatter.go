package formatting

import (
	"fmt"
	"io"

	"linearproxy/internal/verify"
)

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct{}

// FormatReport implements Formatter.
func (f *JSONFormatter) FormatReport(w io.Writer, report *verify.Report) error {
	_, err := fmt.Fprintln(w, PrettyJSON(report))
	return err
}
