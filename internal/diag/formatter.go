package diag

import (
	"fmt"
	"io"
)

// Formatter writes diagnostics in the compiler's user-facing format.
type Formatter struct {
	w io.Writer
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Format writes a single diagnostic as "line L, col C: message" with the
// severity prefixed for warnings and notes. Driver-stage diagnostics carry
// no span and print with a stage label instead.
func (f *Formatter) Format(d Diagnostic) {
	prefix := ""
	switch d.Severity {
	case SeverityWarning:
		prefix = "warning: "
	case SeverityNote:
		prefix = "note: "
	}

	if d.Span.IsValid() {
		fmt.Fprintf(f.w, "%s%s: %s\n", prefix, d.Span, d.Message)
	} else {
		fmt.Fprintf(f.w, "%s%s: %s\n", prefix, d.Stage, d.Message)
	}

	for _, note := range d.Notes {
		fmt.Fprintf(f.w, "  note: %s\n", note)
	}
}

// FormatAll writes every diagnostic in order.
func (f *Formatter) FormatAll(ds []Diagnostic) {
	for _, d := range ds {
		f.Format(d)
	}
}
