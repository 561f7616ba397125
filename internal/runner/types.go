package runner

import (
	"context"
	"fmt"
)

// TailLines 错误信息中保留的输出行数
const TailLines = 8

// LineSink receives each output line in the order the child wrote it.
type LineSink func(line string)

// Options 控制一次子进程执行
type Options struct {
	// CombineStderr merges stderr into the streamed stdout.
	CombineStderr bool
	// EnforceZeroExit turns a non-zero exit status into an error.
	EnforceZeroExit bool
	// Sink 实时接收输出行，可为空
	Sink LineSink
	// Env is appended to the current environment.
	Env []string
	// Dir 工作目录，空表示当前目录
	Dir string
}

// Result 子进程执行结果
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner 命令执行器接口
type CommandRunner interface {
	// Run streams a program's output line by line.
	Run(ctx context.Context, opts Options, name string, args ...string) (Result, error)
	// RunShell runs args through the platform shell and decodes UTF-16LE stdout.
	RunShell(ctx context.Context, args ...string) (Result, error)
	// RunShellUTF8 runs args through the platform shell capturing UTF-8 stdout and stderr.
	RunShellUTF8(ctx context.Context, args ...string) (Result, error)
	// CopyAndExec copies a script to dest and runs it with elevation.
	CopyAndExec(ctx context.Context, src, dest string, sink LineSink) (Result, error)
}

// ExecError carries process details below a LauncherError.
type ExecError struct {
	Program  string
	ExitCode int // -1 when the process never exited normally
	Tail     []string
	Output   string
	Err      error
}

func (e *ExecError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s exited with code %d", e.Program, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Program, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
