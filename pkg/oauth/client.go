package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// Client runs the authorization code flow against one provider.
// It is safe for concurrent use.
type Client[T Token, U User] struct {
	provider Provider[T, U]
	exec     httpx.Executor
}

// NewClient creates a client for provider. A nil exec uses the shared
// default executor.
func NewClient[T Token, U User](provider Provider[T, U], exec httpx.Executor) *Client[T, U] {
	if exec == nil {
		exec = sharedExecutor()
	}
	return &Client[T, U]{provider: provider, exec: exec}
}

// newClient validates cfg and builds a client with the provider returned by build.
func newClient[T Token, U User](
	cfg Config,
	opts []Option,
	build func(cred Credentials, o *options) (Provider[T, U], error),
) (*Client[T, U], error) {
	cred, err := cfg.Credentials().Validate()
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	p, err := build(cred, o)
	if err != nil {
		return nil, err
	}
	return NewClient(p, o.executor), nil
}

// Platform returns the provider platform.
func (c *Client[T, U]) Platform() Platform {
	return c.provider.Platform()
}

// Provider returns the underlying provider hooks.
func (c *Client[T, U]) Provider() Provider[T, U] {
	return c.provider
}

// SupportsRefresh reports whether the provider has a refresh grant.
func (c *Client[T, U]) SupportsRefresh() bool {
	_, ok := c.provider.(Refresher[T])
	return ok
}

// AuthorizeURL returns the consent page URL. It makes no network call.
func (c *Client[T, U]) AuthorizeURL(state string, scopes ...string) (string, error) {
	return c.provider.AuthorizeRequest(state, scopes).URL()
}

// ExchangeForToken trades an authorization code for a token.
// A blank code means the user declined and returns ErrUserRefusedAuthorization.
func (c *Client[T, U]) ExchangeForToken(ctx context.Context, code string) (T, error) {
	var zero T
	code = strings.TrimSpace(code)
	if code == "" {
		return zero, ErrUserRefusedAuthorization
	}

	if ex, ok := c.provider.(TokenExchanger[T]); ok {
		return ex.ExchangeToken(ctx, c.exec, code)
	}

	data, err := c.do(ctx, c.provider.TokenRequest(code))
	if err != nil {
		return zero, err
	}
	token := c.provider.NewToken(data)

	if f, ok := c.provider.(TokenFinisher[T]); ok {
		return f.FinishToken(ctx, c.exec, token)
	}
	return token, nil
}

// ExchangeCallback exchanges the code carried by a parsed redirect.
func (c *Client[T, U]) ExchangeCallback(ctx context.Context, cb Callback) (T, error) {
	if err := cb.Err(); err != nil {
		var zero T
		return zero, err
	}
	return c.ExchangeForToken(ctx, cb.Code)
}

// ExchangeForUser fetches the profile of the user who issued token.
func (c *Client[T, U]) ExchangeForUser(ctx context.Context, token T) (U, error) {
	var zero U
	req, err := c.provider.UserRequest(ctx, token)
	if err != nil {
		return zero, err
	}
	data, err := c.do(ctx, req)
	if err != nil {
		return zero, err
	}
	user := c.provider.NewUser(data)
	if f, ok := c.provider.(UserFinisher[T, U]); ok {
		user = f.FinishUser(token, user)
	}
	if e, ok := c.provider.(UserEnricher[T, U]); ok {
		return e.EnrichUser(ctx, c.exec, token, user)
	}
	return user, nil
}

// Refresh exchanges the refresh token for a new token. Fields the refresh
// response omits, such as openid, are carried over from token.
func (c *Client[T, U]) Refresh(ctx context.Context, token T) (T, error) {
	var zero T
	r, ok := c.provider.(Refresher[T])
	if !ok {
		return zero, ErrRefreshUnsupported
	}
	if token.RefreshToken() == "" {
		return zero, ErrMissingRefreshToken
	}
	data, err := c.do(ctx, r.RefreshRequest(token))
	if err != nil {
		return zero, err
	}
	return c.provider.NewToken(token.Data().Merge(data)), nil
}

// TokenSource returns an oauth2.TokenSource that serves token until it
// expires and then refreshes it through Refresh. issuedAt is when token was
// obtained; the expiry is derived from it.
func (c *Client[T, U]) TokenSource(ctx context.Context, token T, issuedAt time.Time) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(ToOAuth2(token, issuedAt), &refreshSource[T, U]{
		ctx:    ctx,
		client: c,
		token:  token,
	})
}

// do executes req and classifies the response. Observers see every
// provider error before it is returned.
func (c *Client[T, U]) do(ctx context.Context, req httpx.Request) (httpx.Data, error) {
	data, err := execute(ctx, c.exec, c.provider.Platform(), c.provider.ErrorSpec(), req)
	if err != nil {
		if obs, ok := c.provider.(errorObserver); ok {
			var pe *ProviderError
			if errors.As(err, &pe) {
				obs.observeError(ctx, pe)
			}
		}
		return httpx.Data{}, err
	}
	return data, nil
}

// execute performs one round trip: execute, classify, check status.
func execute(ctx context.Context, exec httpx.Executor, p Platform, spec ErrorSpec, req httpx.Request) (httpx.Data, error) {
	resp, err := exec.Execute(ctx, req)
	if err != nil {
		return httpx.Data{}, err
	}
	if resp == nil {
		return httpx.Data{}, ErrNilResponse
	}
	if err := spec.Classify(p, resp.Data); err != nil {
		return httpx.Data{}, err
	}
	if !resp.OK() {
		return httpx.Data{}, &ProviderError{
			Platform: p,
			Code:     fmt.Sprintf("http_%d", resp.StatusCode),
			Message:  http.StatusText(resp.StatusCode),
			Kind:     KindGeneric,
		}
	}
	return resp.Data, nil
}

type refreshSource[T Token, U User] struct {
	ctx    context.Context
	client *Client[T, U]
	token  T
}

// Token is called by oauth2.ReuseTokenSource under its own lock.
func (s *refreshSource[T, U]) Token() (*oauth2.Token, error) {
	next, err := s.client.Refresh(s.ctx, s.token)
	if err != nil {
		return nil, err
	}
	s.token = next
	return ToOAuth2(next, time.Now()), nil
}

// ToOAuth2 converts token to an *oauth2.Token. The raw response fields are
// available through Extra.
func ToOAuth2(token Token, issuedAt time.Time) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  token.AccessToken(),
		TokenType:    "Bearer",
		RefreshToken: token.RefreshToken(),
		ExpiresIn:    token.ExpiresIn(),
	}
	if tt, ok := token.(interface{ TokenType() string }); ok {
		t.TokenType = tt.TokenType()
	}
	if t.ExpiresIn > 0 {
		t.Expiry = issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return t.WithExtra(token.Data().Map())
}

// Callback is the query of the redirect back from the provider.
type Callback struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// ParseCallback reads the redirect query. Providers that name the code
// differently (DingTalk authCode, Eleme auth_code) are accepted too.
func ParseCallback(q url.Values) Callback {
	code := q.Get("code")
	if code == "" {
		code = q.Get("authCode")
	}
	if code == "" {
		code = q.Get("auth_code")
	}
	return Callback{
		Code:             strings.TrimSpace(code),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// Err returns ErrUserRefusedAuthorization when the callback has no code,
// joined with the provider's error text when present.
func (cb Callback) Err() error {
	if cb.Code != "" {
		return nil
	}
	if cb.Error == "" && cb.ErrorDescription == "" {
		return ErrUserRefusedAuthorization
	}
	var parts []string
	for _, s := range []string{cb.Error, cb.ErrorDescription} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return errors.Join(ErrUserRefusedAuthorization, errors.New(strings.Join(parts, ": ")))
}
