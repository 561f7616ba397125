// Package runnertest provides a testify mock of runner.CommandRunner.
package runnertest

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/dj8891/sonaric-desktop/internal/runner"
)

// MockRunner 模拟命令执行器
type MockRunner struct {
	mock.Mock
}

var _ runner.CommandRunner = (*MockRunner)(nil)

func (m *MockRunner) Run(ctx context.Context, opts runner.Options, name string, args ...string) (runner.Result, error) {
	ret := m.Called(append([]interface{}{name}, toInterfaces(args)...)...)
	res := ret.Get(0).(runner.Result)
	if opts.Sink != nil {
		for _, line := range splitLines(res.Stdout) {
			opts.Sink(line)
		}
	}
	return res, ret.Error(1)
}

func (m *MockRunner) RunShell(ctx context.Context, args ...string) (runner.Result, error) {
	ret := m.Called(toInterfaces(args)...)
	return ret.Get(0).(runner.Result), ret.Error(1)
}

func (m *MockRunner) RunShellUTF8(ctx context.Context, args ...string) (runner.Result, error) {
	ret := m.Called(append([]interface{}{"utf8"}, toInterfaces(args)...)...)
	return ret.Get(0).(runner.Result), ret.Error(1)
}

func (m *MockRunner) CopyAndExec(ctx context.Context, src, dest string, sink runner.LineSink) (runner.Result, error) {
	ret := m.Called("copy-and-exec", src, dest)
	res := ret.Get(0).(runner.Result)
	if sink != nil {
		for _, line := range splitLines(res.Stdout) {
			sink(line)
		}
	}
	return res, ret.Error(1)
}

// Ok builds a successful result with the given stdout.
func Ok(stdout string) runner.Result {
	return runner.Result{Success: true, Stdout: stdout}
}

// Failed builds a result for a non-zero exit.
func Failed(code int, stdout string) runner.Result {
	return runner.Result{Success: false, ExitCode: code, Stdout: stdout}
}

func toInterfaces(args []string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
