package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/namelens/handlecheck/internal/core"
)

// YAMLFormatter renders results as YAML.
type YAMLFormatter struct{}

// FormatReport renders a report as YAML.
func (f *YAMLFormatter) FormatReport(report *core.Report) (string, error) {
	if report == nil {
		return "", nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(reportDocument{Report: report, Summary: report.Summary()}); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
