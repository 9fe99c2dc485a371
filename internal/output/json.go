package output

import (
	"encoding/json"

	"github.com/namelens/handlecheck/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// reportDocument adds the summary to the serialized report.
type reportDocument struct {
	*core.Report `yaml:",inline"`
	Summary      core.Summary `json:"summary" yaml:"summary"`
}

// FormatReport renders a report as JSON.
func (f *JSONFormatter) FormatReport(report *core.Report) (string, error) {
	if report == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)

	doc := reportDocument{Report: report, Summary: report.Summary()}
	if f.Indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
