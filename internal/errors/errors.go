package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType int

const (
	// ErrTypeUnknown 未知错误
	ErrTypeUnknown ErrorType = iota
	// ErrTypeSpawn 子进程无法启动
	ErrTypeSpawn
	// ErrTypeNonZeroExit 子进程非零退出
	ErrTypeNonZeroExit
	// ErrTypeDecode 输出解码失败
	ErrTypeDecode
	// ErrTypeParse 版本解析失败
	ErrTypeParse
	// ErrTypeNetwork 网络相关错误
	ErrTypeNetwork
	// ErrTypeCancelled 操作被取消或超时
	ErrTypeCancelled
	// ErrTypeConfig 配置相关错误
	ErrTypeConfig
	// ErrTypePlatform 平台前置条件不满足 (WSL 等)
	ErrTypePlatform
	// ErrTypeAction 安装/停止/卸载动作失败
	ErrTypeAction
	// ErrTypeValidation 验证错误
	ErrTypeValidation
)

var typeNames = map[ErrorType]string{
	ErrTypeUnknown:     "unknown",
	ErrTypeSpawn:       "spawn",
	ErrTypeNonZeroExit: "non-zero-exit",
	ErrTypeDecode:      "decode",
	ErrTypeParse:       "parse",
	ErrTypeNetwork:     "network",
	ErrTypeCancelled:   "cancelled",
	ErrTypeConfig:      "config",
	ErrTypePlatform:    "platform",
	ErrTypeAction:      "action",
	ErrTypeValidation:  "validation",
}

func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// LauncherError 统一错误结构
type LauncherError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Retryable  bool
	Suggestion string
}

// Error 实现 error 接口
func (e *LauncherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 支持 errors.Is 和 errors.As
func (e *LauncherError) Unwrap() error {
	return e.Cause
}

// Is matches predefined errors by type and message so that wrapped copies
// still compare equal to the sentinel.
func (e *LauncherError) Is(target error) bool {
	t, ok := target.(*LauncherError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message
}

// WithSuggestion 添加解决建议
func (e *LauncherError) WithSuggestion(suggestion string) *LauncherError {
	e.Suggestion = suggestion
	return e
}

// WithCause returns a copy of e wrapping cause, leaving the sentinel untouched.
func (e *LauncherError) WithCause(cause error) *LauncherError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// IsRetryable 检查错误是否可重试
func (e *LauncherError) IsRetryable() bool {
	return e.Retryable
}

// New 创建新的 LauncherError
func New(errType ErrorType, message string) *LauncherError {
	return &LauncherError{
		Type:    errType,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(errType ErrorType, message string, cause error) *LauncherError {
	return &LauncherError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewRetryable 创建可重试错误
func NewRetryable(errType ErrorType, message string) *LauncherError {
	return &LauncherError{
		Type:      errType,
		Message:   message,
		Retryable: true,
	}
}

// WrapRetryable 包装可重试错误
func WrapRetryable(errType ErrorType, message string, cause error) *LauncherError {
	return &LauncherError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Retryable: true,
	}
}

// 预定义的常见错误
var (
	// 版本解析
	ErrVersionStartNotFound = New(ErrTypeParse, "Version start not found")
	ErrVersionEndNotFound   = New(ErrTypeParse, "Version end not found")
	ErrInvalidVersion       = New(ErrTypeParse, "invalid semantic version")
	ErrGUIReleaseNotFound   = New(ErrTypeParse, "GUI release not found in registry")

	// 进程执行
	ErrCommandFailed = New(ErrTypeNonZeroExit, "command execution failed")

	ErrPermissionRetry = NewRetryable(ErrTypeAction, "permission denied: please try again with elevated permissions").WithSuggestion("Approve the administrator prompt when it appears")

	// GUI 探测
	ErrGUINotAvailable     = NewRetryable(ErrTypeNetwork, "GUI is not available").WithSuggestion("Wait for the node to finish starting and try again")
	ErrUnexpectedGUIAnswer = New(ErrTypeNetwork, "Unexpected response")

	// WSL
	ErrWSLNotInstalled    = New(ErrTypePlatform, "It looks like WSL is not installed. Please install WSL from Microsoft Store (https://aka.ms/wslstorepage) and try again.")
	ErrWSLVersion1        = New(ErrTypePlatform, "It looks like you are using WSL 1. Please upgrade to WSL 2 (https://aka.ms/wslstorepage) and try again.")
	ErrDistroNotRunning   = New(ErrTypePlatform, "WSL distribution is not running")
	ErrDistroNotInstalled = New(ErrTypePlatform, "WSL distribution is not installed")
	ErrTerminateFailed    = New(ErrTypeAction, "Failed to terminate WSL distribution")
	ErrUnregisterFailed   = New(ErrTypeAction, "Failed to unregister WSL distribution")

	// 动作
	ErrActionInProgress  = NewRetryable(ErrTypeAction, "another action is already in progress").WithSuggestion("Wait for the running action to finish")
	ErrUnsupportedTarget = New(ErrTypePlatform, "unsupported platform")
	ErrResourceNotFound  = New(ErrTypeConfig, "bundled resource not found").WithSuggestion("Check resource_dir in the configuration file")

	// 配置相关错误
	ErrConfigParse = New(ErrTypeConfig, "failed to parse config file").WithSuggestion("Check the configuration file syntax")
	ErrConfigWrite = New(ErrTypeConfig, "failed to write config file")

	// 验证错误
	ErrInvalidInput = New(ErrTypeValidation, "invalid input")
)

// Is 检查是否为特定错误
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As 尝试转换为特定错误类型
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetType 获取错误类型
func GetType(err error) ErrorType {
	var launcherErr *LauncherError
	if errors.As(err, &launcherErr) {
		return launcherErr.Type
	}
	return ErrTypeUnknown
}

// IsRetryable 检查错误链中是否有可重试错误
func IsRetryable(err error) bool {
	for err != nil {
		var launcherErr *LauncherError
		if !errors.As(err, &launcherErr) {
			return false
		}
		if launcherErr.Retryable {
			return true
		}
		err = launcherErr.Cause
	}
	return false
}
