package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-annocat/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

type testMessage struct{}

func (testMessage) Type() string { return "annocat.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "annocat.test.invalid" }

func (invalidMessage) Validate() error {
	return errors.New("invalid")
}

type recordingLogger struct {
	fields       []map[string]any
	infoMessages []string
}

var (
	_ interfaces.Logger       = (*recordingLogger)(nil)
	_ interfaces.FieldsLogger = (*recordingLogger)(nil)
)

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(msg string, _ ...any) {
	r.infoMessages = append(r.infoMessages, msg)
}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerAttachesOperationAndMessageFields(t *testing.T) {
	logger := &recordingLogger{}
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithLogger[testMessage](logger),
		WithOperation[testMessage]("catalog.test"),
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"directory": "./notes"}
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(logger.fields) == 0 {
		t.Fatal("expected structured fields recorded")
	}
	fields := logger.fields[0]
	if fields["command"] != "annocat.test.message" {
		t.Fatalf("expected command field, got %#v", fields)
	}
	if fields["operation"] != "catalog.test" {
		t.Fatalf("expected operation field, got %#v", fields)
	}
	if fields["directory"] != "./notes" {
		t.Fatalf("expected message-derived field, got %#v", fields)
	}
}

func TestHandlerInvokesTelemetry(t *testing.T) {
	var captured []TelemetryInfo
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	}, WithTelemetry[testMessage](func(ctx context.Context, msg testMessage, info TelemetryInfo) {
		captured = append(captured, info)
	}))

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected execution error")
	}
	if len(captured) != 1 {
		t.Fatalf("expected one telemetry invocation, got %d", len(captured))
	}
	info := captured[0]
	if info.Status != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %q", info.Status)
	}
	if !errors.Is(info.Error, execErr) {
		t.Fatalf("expected telemetry to carry exec error, got %v", info.Error)
	}
	if info.Command != "annocat.test.message" {
		t.Fatalf("expected command type, got %q", info.Command)
	}
}
