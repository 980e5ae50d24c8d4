package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

// Executor performs one HTTP round trip for a request prototype.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req Request) (*Response, error)

// Execute calls f(ctx, req).
func (f ExecutorFunc) Execute(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Option configures an HTTPExecutor.
type Option func(*options)

type options struct {
	httpClient      *http.Client
	logger          *slog.Logger
	connectTimeout  time.Duration
	readTimeout     time.Duration
	idleConnTimeout time.Duration
	maxRequests     int
	maxIdleConns    int
	maxBodySize     int64
}

func defaultOptions() *options {
	return &options{
		connectTimeout:  5 * time.Second,
		readTimeout:     10 * time.Second,
		idleConnTimeout: 5 * time.Minute,
		maxRequests:     64,
		maxIdleConns:    5,
		maxBodySize:     4 << 20,
	}
}

// WithConnectTimeout sets the dial and TLS handshake timeout.
// Default: 5 seconds
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithReadTimeout sets how long to wait for response headers.
// Default: 10 seconds
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.readTimeout = d
		}
	}
}

// WithMaxRequests limits the number of concurrent in-flight requests.
// Zero or negative disables the limit.
// Default: 64
func WithMaxRequests(n int) Option {
	return func(o *options) {
		o.maxRequests = n
	}
}

// WithMaxIdleConns sets the idle connection pool size per host.
// Default: 5
func WithMaxIdleConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIdleConns = n
		}
	}
}

// WithIdleConnTimeout sets how long idle connections are kept.
// Default: 5 minutes
func WithIdleConnTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleConnTimeout = d
		}
	}
}

// WithMaxBodySize caps the number of response bytes read. A longer body
// fails with ErrBodyTooLarge. Default: 4 MiB
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithHTTPClient replaces the pooled client entirely. Timeout and pool
// options are ignored when set. Useful with httptest servers.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger for round-trip diagnostics.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// HTTPExecutor executes requests with a pooled *http.Client.
// It is safe for concurrent use.
type HTTPExecutor struct {
	client      *http.Client
	sem         *semaphore.Weighted
	logger      *slog.Logger
	maxBodySize int64
}

// NewHTTPExecutor creates an executor with the given options.
func NewHTTPExecutor(opts ...Option) *HTTPExecutor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	client := o.httpClient
	if client == nil {
		client = &http.Client{
			Timeout: o.connectTimeout + o.readTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   o.connectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          o.maxIdleConns * 4,
				MaxIdleConnsPerHost:   o.maxIdleConns,
				IdleConnTimeout:       o.idleConnTimeout,
				TLSHandshakeTimeout:   o.connectTimeout,
				ResponseHeaderTimeout: o.readTimeout,
			},
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &HTTPExecutor{
		client:      client,
		logger:      logger,
		maxBodySize: o.maxBodySize,
	}
	if o.maxRequests > 0 {
		e.sem = semaphore.NewWeighted(int64(o.maxRequests))
	}
	return e
}

// Execute performs the round trip and parses the body with the request's parser.
// No retries are attempted.
func (e *HTTPExecutor) Execute(ctx context.Context, req Request) (*Response, error) {
	if e.sem != nil {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Join(ErrTransport, err)
		}
		defer e.sem.Release(1)
	}

	hreq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	target := hreq.URL.Host + hreq.URL.Path

	start := time.Now()
	hresp, err := e.client.Do(hreq)
	if err != nil {
		e.logger.WarnContext(ctx, "oauth request failed",
			slog.String("method", hreq.Method),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		return nil, errors.Join(ErrTransport, fmt.Errorf("%s %s: %w", hreq.Method, target, err))
	}
	defer hresp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(hresp.Body, e.maxBodySize+1))
	if err != nil {
		return nil, errors.Join(ErrTransport, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > e.maxBodySize {
		e.logger.WarnContext(ctx, "oauth response too large",
			slog.String("method", hreq.Method),
			slog.String("target", target),
			slog.Int64("limit", e.maxBodySize),
		)
		return nil, errors.Join(ErrTransport, ErrBodyTooLarge,
			fmt.Errorf("%s %s: body exceeds %d bytes", hreq.Method, target, e.maxBodySize))
	}

	e.logger.DebugContext(ctx, "oauth request",
		slog.String("method", hreq.Method),
		slog.String("target", target),
		slog.Int("status", hresp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return NewResponse(hresp.StatusCode, hresp.Header, body, req.Parser())
}

// Close releases idle connections.
func (e *HTTPExecutor) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

var _ Executor = (*HTTPExecutor)(nil)
