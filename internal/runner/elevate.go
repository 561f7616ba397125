package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// exitPermissionDenied is what pkexec returns when authorization is refused or dismissed.
const exitPermissionDenied = 126

// CopyAndExec copies src to dest and runs it through the elevation helper
// with combined output. A refused authorization becomes ErrPermissionRetry.
func (e *Executor) CopyAndExec(ctx context.Context, src, dest string, sink LineSink) (Result, error) {
	if err := CopyFile(src, dest); err != nil {
		return Result{}, errors.Wrap(errors.ErrTypeAction, fmt.Sprintf("failed to copy %s", filepath.Base(src)), err)
	}
	e.log.Debug("Copied script", zap.String("src", src), zap.String("dest", dest))

	result, err := e.Run(ctx, Options{
		CombineStderr:   true,
		EnforceZeroExit: true,
		Sink:            sink,
	}, e.elevate, e.interpreter, dest)
	if err != nil {
		if ExitCodeOf(err) == exitPermissionDenied {
			return result, errors.ErrPermissionRetry.WithCause(err)
		}
		return result, err
	}
	return result, nil
}

// CopyFile copies src to dest, creating dest's parent directory.
func CopyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
