package runner

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
)

// Option 配置 Executor
type Option func(*Executor)

// WithShell sets the prefix used by RunShell and RunShellUTF8.
func WithShell(prefix ...string) Option {
	return func(e *Executor) {
		e.shell = append([]string(nil), prefix...)
	}
}

// WithElevation sets the privilege-escalation helper and interpreter used by CopyAndExec.
func WithElevation(helper, interpreter string) Option {
	return func(e *Executor) {
		e.elevate = helper
		e.interpreter = interpreter
	}
}

// Executor 实际执行系统命令
type Executor struct {
	log         *zap.Logger
	shell       []string
	elevate     string
	interpreter string
}

var _ CommandRunner = (*Executor)(nil)

// New 创建执行器
func New(log *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		log:         logger.OrNop(log),
		shell:       []string{"cmd", "/C"},
		elevate:     "/usr/bin/pkexec",
		interpreter: "/usr/bin/sh",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) command(ctx context.Context, dir string, env []string, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd
}

// Run 执行命令并逐行转发输出
func (e *Executor) Run(ctx context.Context, opts Options, name string, args ...string) (Result, error) {
	log := e.log.With(zap.String("program", name), zap.Strings("args", args))
	log.Debug("Running command")

	cmd := e.command(ctx, opts.Dir, opts.Env, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, spawnError(name, err)
	}

	var stderrBuf bytes.Buffer
	if opts.CombineStderr {
		cmd.Stderr = cmd.Stdout
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return Result{}, cancelledError(name, ctx.Err())
		}
		return Result{}, spawnError(name, err)
	}

	// 取消时关闭管道，避免孙进程持有管道导致读取阻塞
	stop := context.AfterFunc(ctx, func() { stdout.Close() })
	defer stop()

	var out strings.Builder
	tail := make([]string, 0, TailLines)
	emit := func(line string) {
		if opts.Sink != nil {
			opts.Sink(line)
		}
		log.Debug("Command output", zap.String("line", line))
		out.WriteString(line)
		out.WriteString("\n")
		if len(tail) == TailLines {
			tail = append(tail[:0], tail[1:]...)
		}
		tail = append(tail, line)
	}

	reader := bufio.NewReader(stdout)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if !utf8.ValidString(line) {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
				return Result{Stdout: out.String()}, decodeError(name, tail, out.String(), stderrors.New("stream did not contain valid UTF-8"))
			}
			emit(line)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			if ctx.Err() != nil {
				return Result{Stdout: out.String()}, cancelledError(name, ctx.Err())
			}
			return Result{Stdout: out.String()}, decodeError(name, tail, out.String(), readErr)
		}
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return Result{Stdout: out.String()}, cancelledError(name, ctx.Err())
	}

	result := Result{
		ExitCode: exitCode(cmd, waitErr),
		Stdout:   out.String(),
		Stderr:   stderrBuf.String(),
	}
	result.Success = waitErr == nil && result.ExitCode == 0

	log.Debug("Command finished",
		zap.Int("exit_code", result.ExitCode),
		zap.Int("output_length", len(result.Stdout)))

	var exitErr *exec.ExitError
	if waitErr != nil && !stderrors.As(waitErr, &exitErr) {
		return result, spawnError(name, waitErr)
	}
	if opts.EnforceZeroExit && !result.Success {
		return result, nonZeroExitError(name, result.ExitCode, tail, result.Stdout, waitErr)
	}
	return result, nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

func spawnError(name string, err error) error {
	return errors.Wrap(errors.ErrTypeSpawn, "failed to start "+name, &ExecError{
		Program:  name,
		ExitCode: -1,
		Err:      err,
	})
}

func cancelledError(name string, err error) error {
	return errors.Wrap(errors.ErrTypeCancelled, name+" was cancelled", &ExecError{
		Program:  name,
		ExitCode: -1,
		Err:      err,
	})
}

func decodeError(name string, tail []string, output string, err error) error {
	return errors.Wrap(errors.ErrTypeDecode, failureMessage(tail), &ExecError{
		Program:  name,
		ExitCode: -1,
		Tail:     append([]string(nil), tail...),
		Output:   output,
		Err:      err,
	})
}

func nonZeroExitError(name string, code int, tail []string, output string, err error) error {
	return errors.Wrap(errors.ErrTypeNonZeroExit, failureMessage(tail), &ExecError{
		Program:  name,
		ExitCode: code,
		Tail:     append([]string(nil), tail...),
		Output:   output,
		Err:      err,
	})
}

func failureMessage(tail []string) string {
	if len(tail) == 0 {
		return errors.ErrCommandFailed.Message
	}
	return errors.ErrCommandFailed.Message + ":\n\n" + strings.Join(tail, "\n")
}

// ExitCodeOf returns the exit code recorded in err, or -1.
func ExitCodeOf(err error) int {
	var execErr *ExecError
	if stderrors.As(err, &execErr) {
		return execErr.ExitCode
	}
	return -1
}
