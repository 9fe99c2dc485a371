package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

var (
	// TelemetrySystem receives every metric emitted by internal/metrics.
	// Nil until InitMetrics or InitNoopMetrics runs.
	TelemetrySystem *telemetry.System

	// PrometheusExporter is set only while the exporter is running.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// InitMetrics starts a Prometheus exporter for the run, namespaced by the
// service name, and installs it as the global telemetry sink. Port 0 lets
// the exporter pick a free port; GetMetricsPort reports the bound one.
func InitMetrics(serviceName string, port int) error {
	if port < 0 {
		port = 0
	}

	exporter := exporters.NewPrometheusExporter(serviceName, fmt.Sprintf(":%d", port))
	if err := exporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter: %w", err)
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: exporter,
	})
	if err != nil {
		return fmt.Errorf("create telemetry system: %w", err)
	}

	metricsPort = port
	if bound, err := resolvePort(exporter.GetAddr()); err == nil {
		metricsPort = bound
	}

	PrometheusExporter = exporter
	TelemetrySystem = sys
	telemetry.SetGlobalSystem(sys)
	return nil
}

// InitNoopMetrics installs a disabled telemetry system so metric calls stay
// cheap when the exporter is off.
func InitNoopMetrics() error {
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false})
	if err != nil {
		return err
	}
	TelemetrySystem = sys
	return nil
}

// GetMetricsPort returns the port the Prometheus exporter is listening on
func GetMetricsPort() int {
	return metricsPort
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
