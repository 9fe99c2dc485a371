package metrics

import (
	"github.com/namelens/handlecheck/internal/observability"
)

// Metric names
const (
	ErrorsTotalName = "errors_total"
	PanicsTotalName = "panics_total"
)

// RecordError records a command failure by error code
func RecordError(errorCode string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ErrorsTotalName,
			1,
			map[string]string{
				"error_code": errorCode,
			},
		)
	}
}

// RecordPanic records a panic recovered at a check boundary
func RecordPanic() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			PanicsTotalName,
			1,
			nil,
		)
	}
}
