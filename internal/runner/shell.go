package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// utf16LE decodes little-endian UTF-16, honouring a BOM when present.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// DecodeUTF16LE decodes the byte stream emitted by Windows console tools
// such as wsl.exe. An odd byte count or an unpaired surrogate is a decode failure.
func DecodeUTF16LE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", errors.New(errors.ErrTypeDecode, fmt.Sprintf("odd UTF-16 byte count %d", len(b)))
	}

	hasReplacement := false
	for i := 0; i+1 < len(b); i += 2 {
		if uint16(b[i])|uint16(b[i+1])<<8 == utf8.RuneError {
			hasReplacement = true
			break
		}
	}

	decoded, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(errors.ErrTypeDecode, "invalid UTF-16 output", err)
	}
	s := string(decoded)
	// 解码器用 U+FFFD 替换孤立代理项，输入中不存在时视为失败
	if !hasReplacement && strings.ContainsRune(s, utf8.RuneError) {
		return "", errors.New(errors.ErrTypeDecode, "invalid UTF-16 output: unpaired surrogate")
	}
	return s, nil
}

// RunShell 通过平台 shell 执行命令，stdout 按 UTF-16LE 解码，stderr 丢弃
func (e *Executor) RunShell(ctx context.Context, args ...string) (Result, error) {
	stdout, _, result, err := e.runCaptured(ctx, args)
	if err != nil {
		return result, err
	}

	text, err := DecodeUTF16LE(stdout)
	if err != nil {
		return result, fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	result.Stdout = text
	return result, nil
}

// RunShellUTF8 通过平台 shell 执行命令，stdout 与 stderr 均按 UTF-8 读取
func (e *Executor) RunShellUTF8(ctx context.Context, args ...string) (Result, error) {
	stdout, stderr, result, err := e.runCaptured(ctx, args)
	if err != nil {
		return result, err
	}

	if !utf8.Valid(stdout) || !utf8.Valid(stderr) {
		return result, errors.New(errors.ErrTypeDecode, fmt.Sprintf("%s: output is not valid UTF-8", strings.Join(args, " ")))
	}
	result.Stdout = string(stdout)
	result.Stderr = string(stderr)
	return result, nil
}

// runCaptured runs shell+args to completion. A non-zero exit is reported
// through Result, never as an error.
func (e *Executor) runCaptured(ctx context.Context, args []string) ([]byte, []byte, Result, error) {
	if len(e.shell) == 0 {
		return nil, nil, Result{}, errors.New(errors.ErrTypeSpawn, "no shell configured")
	}
	name := e.shell[0]
	full := append(append([]string(nil), e.shell[1:]...), args...)

	e.log.Debug("Running shell command", zap.String("shell", name), zap.Strings("args", full))

	var stdout, stderr bytes.Buffer
	cmd := e.command(ctx, "", nil, name, full...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, nil, Result{}, cancelledError(name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if err != nil && !stderrors.As(err, &exitErr) {
		return nil, nil, Result{}, spawnError(name, err)
	}

	result := Result{ExitCode: exitCode(cmd, err)}
	result.Success = err == nil && result.ExitCode == 0

	e.log.Debug("Shell command finished",
		zap.Strings("args", full),
		zap.Int("exit_code", result.ExitCode),
		zap.Int("stdout_bytes", stdout.Len()))

	return stdout.Bytes(), stderr.Bytes(), result, nil
}
