package oauth_test

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/cache"
	"github.com/dmitrymomot/socialauth/pkg/httpx"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

var workConfig = oauth.WeChatWorkConfig{Config: testConfig, AgentID: "1000002"}

// workAPI fakes the corp API. Corp tokens are numbered; only the latest one
// is accepted unless expired is set.
type workAPI struct {
	issued  atomic.Int32
	expired atomic.Bool
}

func (w *workAPI) handle(req httpx.Request) (int, string) {
	switch {
	case strings.HasSuffix(req.BaseURL(), "/cgi-bin/gettoken"):
		n := w.issued.Add(1)
		w.expired.Store(false)
		return http.StatusOK, `{"errcode":0,"errmsg":"ok","access_token":"corp` + strconv.Itoa(int(n)) + `","expires_in":7200}`
	case w.expired.Load():
		return http.StatusOK, `{"errcode":42001,"errmsg":"access_token expired"}`
	case strings.HasSuffix(req.BaseURL(), "/cgi-bin/user/getuserinfo"):
		return http.StatusOK, `{"errcode":0,"errmsg":"ok","UserId":"zhangsan","DeviceId":"dev"}`
	case strings.HasSuffix(req.BaseURL(), "/cgi-bin/user/get"):
		return http.StatusOK, `{"errcode":0,"errmsg":"ok","userid":"zhangsan","name":"张三","department":[1,2],"position":"dev","mobile":"138","gender":"1","email":"z@corp","avatar":"http://w/a"}`
	}
	return http.StatusNotFound, `{}`
}

func countSuffix(calls []httpx.Request, suffix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasSuffix(c.BaseURL(), suffix) {
			n++
		}
	}
	return n
}

func TestWeChatWork_Flow(t *testing.T) {
	t.Parallel()

	api := &workAPI{}
	exec := newMock(api.handle)
	client, err := oauth.NewWeChatWork(workConfig, oauth.WithExecutor(exec))
	require.NoError(t, err)
	ctx := context.Background()

	raw, err := client.AuthorizeURL("st")
	require.NoError(t, err)
	_, q := authorizeQuery(t, raw)
	require.Equal(t, "app-id", q.Get("appid"))
	require.Equal(t, "1000002", q.Get("agentid"))
	require.Empty(t, q.Get("scope"))

	tok, err := client.ExchangeForToken(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "zhangsan", tok.UserID())
	require.Equal(t, "dev", tok.DeviceID())
	require.Equal(t, "corp1", tok.AccessToken())
	require.Equal(t, int64(7200), tok.ExpiresIn())

	user, err := client.ExchangeForUser(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "zhangsan", user.UID())
	require.Equal(t, "张三", user.Nickname())
	require.Equal(t, []string{"1", "2"}, user.Department())
	require.Equal(t, oauth.GenderMale, user.Gender())

	// A second login reuses the cached corp token.
	_, err = client.ExchangeForToken(ctx, "c2")
	require.NoError(t, err)

	calls := exec.Calls()
	require.Equal(t, 1, countSuffix(calls, "/cgi-bin/gettoken"))
	require.Equal(t, "app-id", calls[0].QueryValue("corpid"))
	require.Equal(t, "app-secret", calls[0].QueryValue("corpsecret"))
	require.Equal(t, "corp1", calls[1].QueryValue("access_token"))
	require.Equal(t, "c1", calls[1].QueryValue("code"))
	require.Equal(t, "zhangsan", calls[2].QueryValue("userid"))
	require.Len(t, calls, 4)
}

func TestWeChatWork_ExpiredCorpToken(t *testing.T) {
	t.Parallel()

	api := &workAPI{}
	exec := newMock(api.handle)
	tc := cache.NewMemory[httpx.Data](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = tc.Close() })

	client, err := oauth.NewWeChatWork(workConfig, oauth.WithExecutor(exec), oauth.WithTokenCache(tc))
	require.NoError(t, err)
	ctx := context.Background()
	key := oauth.WeChatWorkCacheKey("app-id", "1000002")

	tok, err := client.ExchangeForToken(ctx, "c1")
	require.NoError(t, err)

	cached, err := tc.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "corp1", cached.String("access_token"))

	api.expired.Store(true)
	_, err = client.ExchangeForUser(ctx, tok)
	require.ErrorIs(t, err, oauth.ErrAccessTokenExpired)

	_, err = tc.Get(ctx, key)
	require.ErrorIs(t, err, cache.ErrNotFound)

	// The next login fetches a fresh corp token.
	tok, err = client.ExchangeForToken(ctx, "c2")
	require.NoError(t, err)
	require.Equal(t, "corp2", tok.AccessToken())
	require.Equal(t, 2, countSuffix(exec.Calls(), "/cgi-bin/gettoken"))
}

func TestWeChatWork_ExpiredDuringExchange(t *testing.T) {
	t.Parallel()

	api := &workAPI{}
	exec := newMock(api.handle)
	tc := cache.NewMemory[httpx.Data](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = tc.Close() })

	client, err := oauth.NewWeChatWork(workConfig, oauth.WithExecutor(exec), oauth.WithTokenCache(tc))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.ExchangeForToken(ctx, "c1")
	require.NoError(t, err)

	api.expired.Store(true)
	_, err = client.ExchangeForToken(ctx, "c2")
	require.ErrorIs(t, err, oauth.ErrAccessTokenExpired)

	_, err = tc.Get(ctx, oauth.WeChatWorkCacheKey("app-id", "1000002"))
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestWeChatWork_MissingCorpToken(t *testing.T) {
	t.Parallel()

	exec := routes(map[string]string{"/cgi-bin/gettoken": `{"errcode":0,"errmsg":"ok"}`})
	client, err := oauth.NewWeChatWork(workConfig, oauth.WithExecutor(exec))
	require.NoError(t, err)

	_, err = client.ExchangeForToken(context.Background(), "c1")
	require.ErrorIs(t, err, oauth.ErrMissingCorpToken)
	require.Equal(t, 1, exec.Count())
}

func TestWeChatWork_CacheKeyPerAgent(t *testing.T) {
	t.Parallel()

	require.Equal(t, "wechat_work:corp:1", oauth.WeChatWorkCacheKey("corp", "1"))
	require.NotEqual(t, oauth.WeChatWorkCacheKey("corp", "1"), oauth.WeChatWorkCacheKey("corp", "2"))
}
