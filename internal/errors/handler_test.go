package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

// TestErrorHandler_Handle 测试错误到报告的映射
func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name              string
		err               error
		expectedMessage   string
		expectedExitCode  int
		expectedRetryable bool
	}{
		{
			name:             "nil",
			err:              nil,
			expectedExitCode: ExitCodeSuccess,
		},
		{
			name:              "permission retry",
			err:               fmt.Errorf("install: %w", ErrPermissionRetry),
			expectedMessage:   ErrPermissionRetry.Message,
			expectedExitCode:  ExitCodePermissionDenied,
			expectedRetryable: true,
		},
		{
			name:              "GUI unavailable",
			err:               ErrGUINotAvailable.WithCause(errors.New("connection refused")),
			expectedMessage:   "GUI is not available",
			expectedExitCode:  ExitCodeNetworkError,
			expectedRetryable: true,
		},
		{
			name:             "WSL 1",
			err:              ErrWSLVersion1,
			expectedMessage:  ErrWSLVersion1.Message,
			expectedExitCode: ExitCodePlatform,
		},
		{
			name:             "script failure",
			err:              Wrap(ErrTypeNonZeroExit, "command execution failed", errors.New("exit status 2")),
			expectedMessage:  "command execution failed",
			expectedExitCode: ExitCodeActionFailed,
		},
		{
			name:              "deadline",
			err:               fmt.Errorf("check: %w", context.DeadlineExceeded),
			expectedMessage:   "Operation timed out",
			expectedExitCode:  ExitCodeTimeout,
			expectedRetryable: true,
		},
		{
			name:              "raw network error",
			err:               errors.New("Get \"https://storage.googleapis.com\": dial tcp: lookup storage.googleapis.com: no such host"),
			expectedMessage:   "Network error occurred",
			expectedExitCode:  ExitCodeNetworkError,
			expectedRetryable: true,
		},
		{
			name:             "generic error",
			err:              errors.New("something went wrong"),
			expectedMessage:  "Error: something went wrong",
			expectedExitCode: ExitCodeGenericError,
		},
	}

	handler := NewErrorHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := handler.Handle(tt.err)
			assert.Equal(t, tt.expectedMessage, report.Message)
			assert.Equal(t, tt.expectedExitCode, report.ExitCode)
			assert.Equal(t, tt.expectedRetryable, report.IsRetryable)
		})
	}
}

func TestErrorHandler_RetryableGetsSuggestion(t *testing.T) {
	report := NewErrorHandler().Handle(NewRetryable(ErrTypeNetwork, "flaky"))
	assert.Equal(t, "Please try again", report.Suggestion)
}

func TestErrorHandler_Format(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	handler := NewErrorHandler()
	out := handler.Format(Report{
		Message:    "GUI is not available",
		Details:    "connection refused",
		Suggestion: "Wait and try again",
	})

	assert.True(t, strings.HasPrefix(out, "Error: GUI is not available\n"))
	assert.Contains(t, out, "Details: connection refused\n")
	assert.Contains(t, out, "\nWait and try again\n")

	out = handler.Format(Report{Message: "boom"})
	assert.Equal(t, "Error: boom\n", out)
}
