package output

import (
	"fmt"
	"strings"

	"github.com/namelens/handlecheck/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// Formatter renders a run report.
type Formatter interface {
	FormatReport(report *core.Report) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// summaryLine renders the verdict tally shown under tables.
func summaryLine(summary core.Summary) string {
	line := fmt.Sprintf("%d/%d available", summary.Available, summary.Total)
	if summary.Taken > 0 {
		line += fmt.Sprintf(", %d taken", summary.Taken)
	}
	if summary.Invalid > 0 {
		line += fmt.Sprintf(", %d invalid", summary.Invalid)
	}
	if summary.Unknown > 0 {
		line += fmt.Sprintf(", %d unknown", summary.Unknown)
	}
	return line
}
