package output

import (
	"fmt"
	"strings"

	"github.com/namelens/handlecheck/internal/core"
)

// MarkdownFormatter renders results as markdown tables.
type MarkdownFormatter struct{}

// FormatReport renders a report as Markdown, one section per category.
func (f *MarkdownFormatter) FormatReport(report *core.Report) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s availability\n", escapeMarkdownCell(report.Handle)))

	writeSection(&sb, "Domains", report.Domains)
	writeSection(&sb, "Social", report.Social)

	if summary := report.Summary(); summary.Total > 0 {
		sb.WriteString(fmt.Sprintf("\n**Summary**: %s\n", summaryLine(summary)))
	}

	return sb.String(), nil
}

func writeSection(sb *strings.Builder, title string, results []*core.CheckResult) {
	if len(results) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("\n### %s\n\n", title))
	sb.WriteString("| Name | Status | Notes |\n")
	sb.WriteString("|------|--------|-------|\n")

	for _, r := range results {
		if r == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			escapeMarkdownCell(displayName(r)),
			escapeMarkdownCell(statusLabel(r)),
			escapeMarkdownCell(formatNotes(r)),
		))
	}
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
