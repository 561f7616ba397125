package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dj8891/sonaric-desktop/cmd"
	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// main 为 CLI 入口，调用 cmd.ExecuteContext。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// 超时映射为 124，其余按错误类型映射退出码
		handler := errors.NewErrorHandler()
		report := handler.Handle(err)
		_, _ = fmt.Fprint(os.Stderr, handler.Format(report))
		os.Exit(report.ExitCode)
	}
}
