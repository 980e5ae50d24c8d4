package oauth

import (
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrymomot/socialauth/pkg/cache"
	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// Option configures a provider client.
type Option func(*options)

type options struct {
	executor   httpx.Executor
	tokenCache cache.Cache[httpx.Data]
	endpoints  Endpoints
}

// Endpoints are the provider URLs. AuthURL is the consent page, TokenURL the
// code exchange endpoint and APIURL the base for every other API call.
type Endpoints struct {
	AuthURL  string
	TokenURL string
	APIURL   string
}

// override returns e with the non-empty fields of o applied.
func (e Endpoints) override(o Endpoints) Endpoints {
	if o.AuthURL != "" {
		e.AuthURL = o.AuthURL
	}
	if o.TokenURL != "" {
		e.TokenURL = o.TokenURL
	}
	if o.APIURL != "" {
		e.APIURL = strings.TrimRight(o.APIURL, "/")
	}
	return e
}

// api joins the API base URL and path.
func (e Endpoints) api(path string) string {
	return e.APIURL + path
}

// WithExecutor sets the executor used for all provider calls.
// Executors are safe to share between clients.
func WithExecutor(exec httpx.Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

// WithHTTPClient runs provider calls through a dedicated executor using client.
// This is useful for testing with httptest servers or injecting
// custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.executor = httpx.NewHTTPExecutor(httpx.WithHTTPClient(client))
	}
}

// WithEndpoints overrides provider URLs. Empty fields keep the defaults.
func WithEndpoints(e Endpoints) Option {
	return func(o *options) {
		o.endpoints = o.endpoints.override(e)
	}
}

// WithTokenCache sets the cache for application-level tokens.
// Only WeChat Work uses it, for the corp access token.
func WithTokenCache(c cache.Cache[httpx.Data]) Option {
	return func(o *options) {
		o.tokenCache = c
	}
}

var sharedExecutor = sync.OnceValue(func() *httpx.HTTPExecutor {
	return httpx.NewHTTPExecutor()
})

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.executor == nil {
		o.executor = sharedExecutor()
	}
	return o
}
