package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorHandler 错误处理器
type ErrorHandler struct{}

// NewErrorHandler 创建新的错误处理器
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle 将错误转换为结构化的用户报告
func (h *ErrorHandler) Handle(err error) Report {
	if err == nil {
		return Report{ExitCode: ExitCodeSuccess}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Report{
			Message:     "Operation timed out",
			Details:     err.Error(),
			Suggestion:  "Increase --timeout or try again",
			ExitCode:    ExitCodeTimeout,
			IsRetryable: true,
		}
	}

	var launcherErr *LauncherError
	if errors.As(err, &launcherErr) {
		report := Report{
			Message:     launcherErr.Message,
			Suggestion:  launcherErr.Suggestion,
			IsRetryable: IsRetryable(err),
			ExitCode:    exitCodeFor(launcherErr),
		}
		if launcherErr.Cause != nil {
			report.Details = launcherErr.Cause.Error()
		}
		if report.IsRetryable && report.Suggestion == "" {
			report.Suggestion = "Please try again"
		}
		return report
	}

	errStr := err.Error()

	// 网络错误
	if strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "dial tcp") {
		return Report{
			Message:     "Network error occurred",
			Details:     errStr,
			Suggestion:  "Check your internet connection and try again",
			ExitCode:    ExitCodeNetworkError,
			IsRetryable: true,
		}
	}

	// 默认错误
	return Report{
		Message:  fmt.Sprintf("Error: %s", errStr),
		ExitCode: ExitCodeGenericError,
	}
}

func exitCodeFor(err *LauncherError) int {
	if err.Message == ErrPermissionRetry.Message {
		return ExitCodePermissionDenied
	}
	switch err.Type {
	case ErrTypeNetwork:
		return ExitCodeNetworkError
	case ErrTypeCancelled:
		return ExitCodeTimeout
	case ErrTypePlatform:
		return ExitCodePlatform
	case ErrTypeAction, ErrTypeNonZeroExit, ErrTypeSpawn:
		return ExitCodeActionFailed
	case ErrTypeConfig:
		return ExitCodeConfigError
	default:
		return ExitCodeGenericError
	}
}

// Format 格式化错误信息为用户友好的输出
func (h *ErrorHandler) Format(report Report) string {
	var sb strings.Builder

	// 错误消息（红色）
	sb.WriteString(color.RedString("Error: %s\n", report.Message))

	if report.Details != "" {
		sb.WriteString(color.YellowString("Details: %s\n", report.Details))
	}

	if report.Suggestion != "" {
		sb.WriteString("\n")
		if report.IsRetryable {
			sb.WriteString(color.CyanString("↻ "))
		}
		sb.WriteString(report.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
