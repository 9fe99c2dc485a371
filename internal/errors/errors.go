package errors

import (
	"context"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namelens/handlecheck/internal/metrics"
	"github.com/namelens/handlecheck/internal/observability"
)

// Error codes surfaced by the CLI
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

type correlationKey struct{}

// WithCorrelationID returns a context carrying a fresh run correlation ID.
func WithCorrelationID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if CorrelationID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, uuid.New().String())
}

// CorrelationID returns the run correlation ID stored on the context, if any.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Error creation helpers for common error types

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

func NewExternalServiceError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeExternalService, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

// Wrap functions attach the run correlation ID and the underlying error.

func WrapInvalidInput(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInvalidInput, err, message)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeConfigInvalid, err, message)
}

func WrapExternalService(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeExternalService, err, message)
}

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInternal, err, message)
}

func wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = EnsureCorrelationID(envelope, ctx)
	envelope = envelope.WithTraceID(envelope.CorrelationID)
	envelope = withCodeSeverity(envelope)
	return withWrappedError(envelope, err)
}

// withCodeSeverity grades envelopes by code. Unknown codes are critical.
func withCodeSeverity(envelope *errors.ErrorEnvelope) *errors.ErrorEnvelope {
	var (
		updated *errors.ErrorEnvelope
		err     error
	)
	switch envelope.Code {
	case CodeInvalidInput:
		updated, err = envelope.WithSeverity(errors.SeverityMedium)
	case CodeConfigInvalid, CodeExternalService:
		updated, err = envelope.WithSeverity(errors.SeverityHigh)
	default:
		updated, err = envelope.WithSeverity(errors.SeverityCritical)
	}
	if err != nil {
		return envelope
	}
	return updated
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches a correlation ID to the envelope, preferring
// the one carried by the context.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	if envelope.CorrelationID != "" {
		return envelope
	}

	correlationID := CorrelationID(ctx)
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}

	return envelope.WithCorrelationID(correlationID)
}

// ExitCodeFor maps an envelope code to a foundry semantic exit code.
func ExitCodeFor(envelope *errors.ErrorEnvelope) foundry.ExitCode {
	if envelope == nil {
		return foundry.ExitFailure
	}
	switch envelope.Code {
	case CodeConfigInvalid:
		return foundry.ExitConfigInvalid
	case CodeExternalService:
		return foundry.ExitExternalServiceUnavailable
	default:
		return foundry.ExitFailure
	}
}

// Report logs the envelope on the CLI logger and counts it.
func Report(envelope *errors.ErrorEnvelope) {
	if envelope == nil {
		return
	}

	metrics.RecordError(envelope.Code)

	if observability.CLILogger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
	}

	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}

	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.CLILogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.CLILogger.Warn(envelope.Message, fields...)
	default:
		observability.CLILogger.Info(envelope.Message, fields...)
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}

	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}
