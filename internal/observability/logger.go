package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

// CLILogger is the process logger (SIMPLE profile, stderr)
var CLILogger *logging.Logger

// InitCLILogger initializes the CLI logger. verbose or a debug/trace level
// raises output to DEBUG.
func InitCLILogger(serviceName string, verbose bool, level string) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}

	if verbose || IsDebugLevel(level) {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// IsDebugLevel reports whether a configured level asks for debug output.
func IsDebugLevel(level string) bool {
	switch normalizeLogLevel(level) {
	case "TRACE", "DEBUG":
		return true
	default:
		return false
	}
}

// normalizeLogLevel converts a config log level to a logging severity string
func normalizeLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// exitWithCodeStderr exits with a semantic exit code, writing to stderr.
// Used only before the CLI logger exists.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)

	os.Exit(info.Code)
}
