package output

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/namelens/handlecheck/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatReport renders domains then platforms as one table.
func (f *TableFormatter) FormatReport(report *core.Report) (string, error) {
	if report == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Availability for " + report.Handle)
	t.AppendHeader(table.Row{"Type", "Name", "Status", "Notes"})

	for _, r := range report.Results() {
		if r == nil {
			continue
		}
		t.AppendRow(table.Row{
			string(r.CheckType),
			displayName(r),
			statusLabel(r),
			formatNotes(r),
		})
	}

	summary := report.Summary()
	if summary.Total > 0 {
		t.AppendFooter(table.Row{
			"",
			"",
			summaryLine(summary),
			"",
		})
	}

	return t.Render(), nil
}
