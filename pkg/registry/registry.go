package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/socialauth/pkg/cache"
	"github.com/dmitrymomot/socialauth/pkg/httpx"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
	"github.com/dmitrymomot/socialauth/pkg/redis"
)

const defaultCachePrefix = "socialauth"

// Option configures New.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	executor httpx.Executor
}

// WithLogger sets the logger passed to the executor and the Redis connector.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithExecutor replaces the executor built from Config.HTTP.
func WithExecutor(exec httpx.Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

// Registry holds one authenticator per configured platform. All of them
// share one executor and one token cache.
type Registry struct {
	auths    map[oauth.Platform]oauth.Authenticator
	selected oauth.Platform
	logger   *slog.Logger
	exec     *httpx.HTTPExecutor
	cache    cache.Cache[httpx.Data]
	redis    goredis.UniversalClient
}

// New builds the registry. Platforms without a client id are skipped;
// a selected platform that is not configured is an error.
func New(ctx context.Context, cfg Config, opts ...Option) (*Registry, error) {
	o := &options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(o)
	}

	selected, err := cfg.Selected()
	if err != nil {
		return nil, err
	}
	configured := cfg.Configured()
	if selected != "" && !slices.Contains(configured, selected) {
		return nil, errors.Join(ErrPlatformNotConfigured, fmt.Errorf("platform %q", selected))
	}

	r := &Registry{
		auths:    make(map[oauth.Platform]oauth.Authenticator, len(configured)),
		selected: selected,
		logger:   o.logger,
	}

	exec := o.executor
	if exec == nil {
		r.exec = newExecutor(cfg.HTTP, o.logger)
		exec = r.exec
	}
	if cfg.HTTP.RetryTimes > 0 {
		o.logger.WarnContext(ctx, "http retry_times is ignored; provider calls are never retried",
			slog.Int("retry_times", cfg.HTTP.RetryTimes))
	}

	if err := r.openCache(ctx, cfg.Cache); err != nil {
		_ = r.Close()
		return nil, err
	}

	clientOpts := []oauth.Option{oauth.WithExecutor(exec), oauth.WithTokenCache(r.cache)}
	for _, p := range configured {
		auth, err := build(cfg, p, clientOpts)
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("registry: %s: %w", p, err)
		}
		r.auths[p] = auth
	}

	o.logger.InfoContext(ctx, "oauth registry ready",
		slog.Any("platforms", configured),
		slog.String("selected", string(selected)),
		slog.Bool("redis", r.redis != nil))
	return r, nil
}

func newExecutor(cfg HTTPConfig, logger *slog.Logger) *httpx.HTTPExecutor {
	opts := []httpx.Option{
		httpx.WithConnectTimeout(cfg.ConnectTimeout),
		httpx.WithReadTimeout(cfg.ReadTimeout),
		httpx.WithMaxIdleConns(cfg.MaxIdleConns),
		httpx.WithIdleConnTimeout(cfg.IdleConnTimeout),
		httpx.WithLogger(logger),
	}
	if cfg.MaxRequests != 0 {
		opts = append(opts, httpx.WithMaxRequests(cfg.MaxRequests))
	}
	return httpx.NewHTTPExecutor(opts...)
}

func (r *Registry) openCache(ctx context.Context, cfg CacheConfig) error {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		r.cache = cache.NewMemory[httpx.Data]()
		return nil
	}
	client, err := redis.Open(ctx, cfg.RedisURL, redis.WithLogger(r.logger))
	if err != nil {
		return err
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	r.redis = client
	r.cache = cache.NewRedis[httpx.Data](client, cache.JSON[httpx.Data]{}, cache.WithPrefix(prefix))
	return nil
}

func build(cfg Config, p oauth.Platform, opts []oauth.Option) (oauth.Authenticator, error) {
	c := cfg.credentials(p)
	switch p {
	case oauth.PlatformGitHub:
		return authenticator(oauth.NewGitHub(c, opts...))
	case oauth.PlatformGitee:
		return authenticator(oauth.NewGitee(c, opts...))
	case oauth.PlatformOSChina:
		return authenticator(oauth.NewOSChina(c, opts...))
	case oauth.PlatformBaidu:
		return authenticator(oauth.NewBaidu(c, opts...))
	case oauth.PlatformQQ:
		return authenticator(oauth.NewQQ(c, opts...))
	case oauth.PlatformWeChat:
		return authenticator(oauth.NewWeChat(c, opts...))
	case oauth.PlatformWeChatMP:
		return authenticator(oauth.NewWeChatMP(c, opts...))
	case oauth.PlatformWeChatWork:
		return authenticator(oauth.NewWeChatWork(cfg.WeChatWork, opts...))
	case oauth.PlatformDingTalk:
		return authenticator(oauth.NewDingTalk(c, opts...))
	case oauth.PlatformDouyin:
		return authenticator(oauth.NewDouyin(c, opts...))
	case oauth.PlatformEleme:
		return authenticator(oauth.NewEleme(c, opts...))
	case oauth.PlatformGoogle:
		return authenticator(oauth.NewGoogle(c, opts...))
	default:
		return nil, errors.Join(oauth.ErrUnknownPlatform, fmt.Errorf("platform %q", p))
	}
}

// authenticator adapts the (client, error) result of a provider constructor.
func authenticator(c interface{ Authenticator() oauth.Authenticator }, err error) (oauth.Authenticator, error) {
	if err != nil {
		return nil, err
	}
	return c.Authenticator(), nil
}

// Get returns the authenticator of p.
func (r *Registry) Get(p oauth.Platform) (oauth.Authenticator, error) {
	a, ok := r.auths[p]
	if !ok {
		return nil, errors.Join(ErrPlatformNotConfigured, fmt.Errorf("platform %q", p))
	}
	return a, nil
}

// Lookup parses name and returns its authenticator.
func (r *Registry) Lookup(name string) (oauth.Authenticator, error) {
	p, err := oauth.ParsePlatform(name)
	if err != nil {
		return nil, err
	}
	return r.Get(p)
}

// Selected returns the authenticator of the configured Platform.
func (r *Registry) Selected() (oauth.Authenticator, error) {
	if r.selected == "" {
		return nil, ErrNoPlatformSelected
	}
	return r.Get(r.selected)
}

// Platforms lists the configured platforms in oauth.Platforms order.
func (r *Registry) Platforms() []oauth.Platform {
	out := make([]oauth.Platform, 0, len(r.auths))
	for _, p := range oauth.Platforms() {
		if _, ok := r.auths[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Healthcheck pings Redis when the cache uses it and is a no-op otherwise.
func (r *Registry) Healthcheck(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}
	return redis.Healthcheck(r.redis)(ctx)
}

// Close releases the cache, the Redis connection and idle HTTP connections.
func (r *Registry) Close() error {
	var errs []error
	if r.cache != nil {
		errs = append(errs, r.cache.Close())
	}
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	if r.exec != nil {
		errs = append(errs, r.exec.Close())
	}
	return errors.Join(errs...)
}
