package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"

	apperrors "github.com/namelens/handlecheck/internal/errors"
	"github.com/namelens/handlecheck/internal/observability"
)

// ExitWithError reports err and exits with the semantic code for its
// envelope. Errors that are not envelopes came from cobra argument or flag
// parsing and are treated as invalid input.
func ExitWithError(err error) {
	envelope, ok := err.(*errors.ErrorEnvelope)
	if !ok || envelope == nil {
		envelope = apperrors.WrapInvalidInput(context.Background(), err, err.Error())
	}
	envelope = apperrors.EnsureCorrelationID(envelope, context.Background())
	exitCode := apperrors.ExitCodeFor(envelope)

	if observability.CLILogger == nil {
		ExitWithCodeStderr(exitCode, envelope.Message, err)
		return
	}

	apperrors.Report(envelope)
	exit(exitCode)
}

// ExitWithCodeStderr is a variant that writes to stderr without a logger.
// Use this for failures before logger initialization.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)

	if envelope, isEnvelope := err.(*errors.ErrorEnvelope); isEnvelope && envelope != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s [%s] (correlation: %s)\n", msg, envelope.Code, envelope.CorrelationID)
		if wrapped, found := envelope.Context["wrapped_error"]; found {
			fmt.Fprintf(os.Stderr, "Underlying error: %v\n", wrapped)
		}
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}

	if !ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d\n", exitCode)
		os.Exit(int(exitCode))
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	os.Exit(info.Code)
}

func exit(exitCode foundry.ExitCode) {
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		os.Exit(info.Code)
	}
	os.Exit(int(exitCode))
}
