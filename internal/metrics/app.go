package metrics

import (
	"time"

	"github.com/namelens/handlecheck/internal/core"
	"github.com/namelens/handlecheck/internal/observability"
)

// Check metrics following Prometheus conventions
const (
	ChecksTotal   = "handlecheck_checks_total"
	CheckDuration = "handlecheck_check_duration_ms"
	RunsTotal     = "handlecheck_runs_total"
	RunTargets    = "handlecheck_run_targets"
)

// RecordCheck records one finished target check
func RecordCheck(checkType core.CheckType, target string, verdict core.Verdict, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Counter(
		ChecksTotal,
		1,
		map[string]string{
			"check_type": string(checkType),
			"target":     target,
			"verdict":    verdict.String(),
		},
	)

	_ = observability.TelemetrySystem.Histogram(
		CheckDuration,
		duration,
		map[string]string{
			"check_type": string(checkType),
			"target":     target,
		},
	)
}

// RecordRun records a completed run and how many targets it covered
func RecordRun(summary core.Summary) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Counter(RunsTotal, 1, nil)
	_ = observability.TelemetrySystem.Gauge(
		RunTargets,
		float64(summary.Total),
		nil,
	)
}
