package registry_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
	"github.com/dmitrymomot/socialauth/pkg/redis"
	"github.com/dmitrymomot/socialauth/pkg/registry"
)

func creds(name string) oauth.Config {
	return oauth.Config{
		ClientID:     name + "-id",
		ClientSecret: name + "-secret",
		RedirectURL:  "https://app.example.com/oauth/" + name + "/callback",
	}
}

func newRegistry(t *testing.T, cfg registry.Config, opts ...registry.Option) *registry.Registry {
	t.Helper()
	r, err := registry.New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, r.Close()) })
	return r
}

func TestNew_BuildsConfiguredPlatforms(t *testing.T) {
	t.Parallel()

	r := newRegistry(t, registry.Config{
		Platform: "github",
		GitHub:   creds("github"),
		QQ:       creds("qq"),
		Google:   creds("google"),
	})

	require.Equal(t, []oauth.Platform{oauth.PlatformGitHub, oauth.PlatformQQ, oauth.PlatformGoogle}, r.Platforms())

	sel, err := r.Selected()
	require.NoError(t, err)
	require.Equal(t, oauth.PlatformGitHub, sel.Platform())

	qq, err := r.Lookup("QQ")
	require.NoError(t, err)
	raw, err := qq.AuthorizeURL("st")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "qq-id", u.Query().Get("client_id"))

	_, err = r.Get(oauth.PlatformBaidu)
	require.ErrorIs(t, err, registry.ErrPlatformNotConfigured)

	_, err = r.Lookup("myspace")
	require.ErrorIs(t, err, oauth.ErrUnknownPlatform)

	require.NoError(t, r.Healthcheck(context.Background()))
}

func TestNew_SelectedNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := registry.New(context.Background(), registry.Config{Platform: "dingtalk", GitHub: creds("github")})
	require.ErrorIs(t, err, registry.ErrPlatformNotConfigured)
}

func TestNew_NoSelection(t *testing.T) {
	t.Parallel()

	r := newRegistry(t, registry.Config{GitHub: creds("github")})
	_, err := r.Selected()
	require.ErrorIs(t, err, registry.ErrNoPlatformSelected)
}

func TestNew_InvalidCredentials(t *testing.T) {
	t.Parallel()

	cfg := registry.Config{Gitee: oauth.Config{ClientID: "id", RedirectURL: "https://x/cb"}}
	_, err := registry.New(context.Background(), cfg)
	require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
	require.Contains(t, err.Error(), "gitee")
}

func TestNew_InvalidRedisURL(t *testing.T) {
	t.Parallel()

	cfg := registry.Config{GitHub: creds("github"), Cache: registry.CacheConfig{RedisURL: "memcached://x"}}
	_, err := registry.New(context.Background(), cfg)
	require.ErrorIs(t, err, redis.ErrInvalidURL)
}

func TestNew_SharedExecutorAndCache(t *testing.T) {
	t.Parallel()

	var corpTokens atomic.Int32
	exec := httpx.ExecutorFunc(func(_ context.Context, req httpx.Request) (*httpx.Response, error) {
		switch {
		case strings.HasSuffix(req.BaseURL(), "/cgi-bin/gettoken"):
			corpTokens.Add(1)
			return httpx.JSONResponse(http.StatusOK, `{"errcode":0,"access_token":"corp","expires_in":7200}`)
		case strings.HasSuffix(req.BaseURL(), "/cgi-bin/user/getuserinfo"):
			return httpx.JSONResponse(http.StatusOK, `{"errcode":0,"UserId":"u1"}`)
		default:
			return httpx.JSONResponse(http.StatusOK, `{"access_token":"tok"}`)
		}
	})

	work := oauth.WeChatWorkConfig{Config: creds("wechat_work"), AgentID: "7"}
	r := newRegistry(t, registry.Config{
		Platform:   "wecom",
		WeChatWork: work,
		Gitee:      creds("gitee"),
	}, registry.WithExecutor(exec))

	a, err := r.Selected()
	require.NoError(t, err)
	require.Equal(t, oauth.PlatformWeChatWork, a.Platform())
	require.False(t, a.SupportsRefresh())

	ctx := context.Background()
	for _, code := range []string{"c1", "c2", "c3"} {
		tok, err := a.ExchangeForToken(ctx, code)
		require.NoError(t, err)
		require.Equal(t, "corp", tok.AccessToken())
	}
	require.Equal(t, int32(1), corpTokens.Load())

	gitee, err := r.Get(oauth.PlatformGitee)
	require.NoError(t, err)
	require.True(t, gitee.SupportsRefresh())
	tok, err := gitee.ExchangeForToken(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, "tok", tok.AccessToken())
}
