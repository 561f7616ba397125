package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
)

// GUIProber checks that the local web GUI answers with its marker text.
type GUIProber struct {
	client          *http.Client
	marker          string
	timeout         time.Duration
	maxRetries      uint
	initialInterval time.Duration
	maxInterval     time.Duration
	log             *zap.Logger
}

// ProberOption 配置选项
type ProberOption func(*GUIProber)

// WithMaxRetries 设置最大尝试次数（包含首次）
func WithMaxRetries(n uint) ProberOption {
	return func(p *GUIProber) {
		p.maxRetries = n
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) ProberOption {
	return func(p *GUIProber) {
		p.timeout = d
	}
}

// WithMarker sets the text the GUI page must contain.
func WithMarker(marker string) ProberOption {
	return func(p *GUIProber) {
		p.marker = marker
	}
}

// WithBackoff sets the exponential backoff bounds between attempts.
func WithBackoff(initial, ceiling time.Duration) ProberOption {
	return func(p *GUIProber) {
		p.initialInterval = initial
		p.maxInterval = ceiling
	}
}

// WithLogger 设置日志
func WithLogger(log *zap.Logger) ProberOption {
	return func(p *GUIProber) {
		p.log = logger.OrNop(log)
	}
}

// NewGUIProber 创建 GUI 探测器
func NewGUIProber(opts ...ProberOption) *GUIProber {
	p := &GUIProber{
		marker:          "Sonaric",
		timeout:         3 * time.Second,
		maxRetries:      1,
		initialInterval: time.Second,
		maxInterval:     4 * time.Second,
		log:             zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.client = &http.Client{
		Timeout: p.timeout,
	}

	return p
}

// Probe returns nil when url serves a page containing the marker.
// Connection failures are retryable; any other body is not.
func (p *GUIProber) Probe(ctx context.Context, url string) error {
	if p.maxRetries <= 1 {
		return p.probeOnce(ctx, url)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval
	b.MaxInterval = p.maxInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := p.probeOnce(ctx, url)
		if err != nil && !errors.IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.maxRetries),
		backoff.WithNotify(func(err error, d time.Duration) {
			p.log.Debug("GUI not ready, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", d),
				zap.Error(err))
		}),
	)
	return err
}

func (p *GUIProber) probeOnce(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrTypeValidation, "invalid GUI URL", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.ErrGUINotAvailable.WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.ErrGUINotAvailable.WithCause(err)
	}

	// 服务器错误（5xx）通常是 GUI 正在启动
	if resp.StatusCode >= 500 {
		return errors.ErrGUINotAvailable.WithCause(fmt.Errorf("server error: %d", resp.StatusCode))
	}

	text := string(body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && strings.Contains(text, p.marker) {
		p.log.Debug("GUI is available", zap.String("url", url))
		return nil
	}

	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return errors.ErrUnexpectedGUIAnswer.WithCause(fmt.Errorf("status %d: %s", resp.StatusCode, text))
}
