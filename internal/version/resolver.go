package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
)

// maxBodySize 限制远程响应大小
const maxBodySize = 1 << 20

// Endpoints 版本查询地址
type Endpoints struct {
	LatestDaemon string // flat-text latest release of the agent
	GUITags      string // container registry tag listing of the GUI image
	GUIVersion   string // running GUI's version endpoint
	AppLatest    string // optional flat-text latest release of the launcher
}

// CurrentFunc resolves the running agent's version.
type CurrentFunc func(ctx context.Context) (*semver.Version, error)

// Resolver 负责本地与远程版本查询
type Resolver struct {
	endpoints  Endpoints
	httpClient *http.Client
	log        *zap.Logger
	timeout    time.Duration
	appVersion string
}

// ResolverOption 配置 Resolver
type ResolverOption func(*Resolver)

// WithHTTPClient 注入 http.Client，用于测试
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithAppVersion sets the launcher's own version for Show.
func WithAppVersion(v string) ResolverOption {
	return func(r *Resolver) {
		r.appVersion = v
	}
}

// NewResolver 创建版本解析器
func NewResolver(endpoints Endpoints, log *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		endpoints:  endpoints,
		httpClient: &http.Client{},
		log:        logger.OrNop(log),
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LatestDaemon fetches the latest published agent release.
func (r *Resolver) LatestDaemon(ctx context.Context) (*semver.Version, error) {
	body, err := r.getText(ctx, r.endpoints.LatestDaemon)
	if err != nil {
		return nil, err
	}
	return ParseSemver(body)
}

// CurrentGUI queries the running GUI for its version.
func (r *Resolver) CurrentGUI(ctx context.Context) (*semver.Version, error) {
	body, err := r.getText(ctx, r.endpoints.GUIVersion)
	if err != nil {
		return nil, err
	}
	return ParseSemver(body)
}

// LatestApp returns nil when no launcher release endpoint is configured.
func (r *Resolver) LatestApp(ctx context.Context) (*semver.Version, error) {
	if r.endpoints.AppLatest == "" {
		return nil, nil
	}
	body, err := r.getText(ctx, r.endpoints.AppLatest)
	if err != nil {
		return nil, err
	}
	return ParseSemver(body)
}

// registryTags 镜像仓库 tags/list 响应
type registryTags struct {
	Manifest map[string]struct {
		Tag []string `json:"tag"`
	} `json:"manifest"`
}

// LatestGUI picks the "v"-prefixed tag of the manifest tagged "latest".
// It returns nil when no manifest carries "latest".
func (r *Resolver) LatestGUI(ctx context.Context) (*semver.Version, error) {
	body, err := r.getText(ctx, r.endpoints.GUITags)
	if err != nil {
		return nil, err
	}

	var tags registryTags
	if err := json.Unmarshal([]byte(body), &tags); err != nil {
		return nil, errors.Wrap(errors.ErrTypeParse, "failed to decode registry tags", err)
	}

	for digest, manifest := range tags.Manifest {
		if !slices.Contains(manifest.Tag, "latest") {
			continue
		}
		for _, tag := range manifest.Tag {
			if strings.HasPrefix(tag, "v") {
				r.log.Debug("GUI release found", zap.String("digest", digest), zap.String("tag", tag))
				return ParseSemver(tag)
			}
		}
		return nil, errors.ErrGUIReleaseNotFound
	}
	return nil, nil
}

// Daemon resolves the agent's version info against the latest release.
func (r *Resolver) Daemon(ctx context.Context, current CurrentFunc) (Info, error) {
	cur, err := current(ctx)
	if err != nil {
		return Unknown(), err
	}
	latest, err := r.LatestDaemon(ctx)
	if err != nil {
		return Unknown(), err
	}
	return Compare(cur, latest), nil
}

// GUI resolves the running GUI's version info against the registry.
func (r *Resolver) GUI(ctx context.Context) (Info, error) {
	cur, err := r.CurrentGUI(ctx)
	if err != nil {
		return Unknown(), err
	}
	latest, err := r.LatestGUI(ctx)
	if err != nil {
		return Unknown(), err
	}
	if latest == nil {
		return Info{Current: cur.String(), Latest: NA, UpToDate: true}, nil
	}
	return Compare(cur, latest), nil
}

// App resolves the launcher's own version info.
func (r *Resolver) App(ctx context.Context) (Info, error) {
	cur, err := ParseSemver(r.appVersion)
	if err != nil {
		return Unknown(), err
	}
	latest, err := r.LatestApp(ctx)
	if err != nil {
		return Info{Current: cur.String(), Latest: NA, UpToDate: true}, err
	}
	if latest == nil {
		return Info{Current: cur.String(), Latest: NA, UpToDate: true}, nil
	}
	return Compare(cur, latest), nil
}

// Show runs the app, daemon and GUI lookups concurrently. A failed lookup
// degrades to its fallback and is logged; Show itself never fails.
func (r *Resolver) Show(ctx context.Context, daemon CurrentFunc) Payload {
	var payload Payload
	var g errgroup.Group

	g.Go(func() error {
		info, err := r.App(ctx)
		if err != nil {
			r.log.Warn("Failed to get app version", zap.Error(err))
		}
		payload.App = info
		return nil
	})
	g.Go(func() error {
		info, err := r.Daemon(ctx, daemon)
		if err != nil {
			r.log.Warn("Failed to get daemon version", zap.Error(err))
		}
		payload.Daemon = info
		return nil
	})
	g.Go(func() error {
		info, err := r.GUI(ctx)
		if err != nil {
			r.log.Warn("Failed to get GUI version", zap.Error(err))
		}
		payload.GUI = info
		return nil
	})

	_ = g.Wait()
	return payload
}

func (r *Resolver) getText(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", errors.New(errors.ErrTypeConfig, "version endpoint is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	r.log.Debug("Version request", zap.String("url", url))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", errors.WrapRetryable(errors.ErrTypeNetwork, "request to "+url+" failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", errors.WrapRetryable(errors.ErrTypeNetwork, "failed to read response from "+url, err)
	}

	r.log.Debug("Version response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New(errors.ErrTypeNetwork, fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url))
	}
	return strings.TrimSpace(string(data)), nil
}
