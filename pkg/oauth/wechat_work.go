package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/socialauth/pkg/cache"
	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// WeChatWorkEndpoints are the WeChat Work (WeCom) endpoints.
// TokenURL is the corp token endpoint.
var WeChatWorkEndpoints = Endpoints{
	AuthURL:  "https://open.work.weixin.qq.com/wwopen/sso/qrConnect",
	TokenURL: "https://qyapi.weixin.qq.com/cgi-bin/gettoken",
	APIURL:   "https://qyapi.weixin.qq.com",
}

// corpTokenMargin is subtracted from the corp token lifetime before caching.
const corpTokenMargin = 60 * time.Second

// WeChatWork implements Provider and TokenExchanger for WeChat Work QR login.
//
// Users are identified with the corp access token rather than a per-user
// token. The corp token is cached per corp id and agent id, and dropped as
// soon as the API reports it expired.
type WeChatWork struct {
	exec      httpx.Executor
	cache     cache.Cache[httpx.Data]
	authorize httpx.Request
	corpToken httpx.Request
	userInfo  httpx.Request
	user      httpx.Request
	cacheKey  string
}

// NewWeChatWork creates a WeChat Work client. cfg.ClientID is the corp id
// and cfg.ClientSecret the application secret. Without WithTokenCache the
// corp token is cached in memory.
func NewWeChatWork(cfg WeChatWorkConfig, opts ...Option) (*Client[*WeChatWorkToken, *WeChatWorkUser], error) {
	return newClient(cfg.Config, opts, func(cred Credentials, o *options) (Provider[*WeChatWorkToken, *WeChatWorkUser], error) {
		ep := WeChatWorkEndpoints.override(o.endpoints)
		tc := o.tokenCache
		if tc == nil {
			tc = cache.NewMemory[httpx.Data](cache.WithCleanupInterval(0))
		}
		return &WeChatWork{
			exec:  o.executor,
			cache: tc,
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("appid", cred.ClientID).
				WithQuery("agentid", cfg.AgentID).
				WithQuery("redirect_uri", cred.RedirectURI),
			corpToken: httpx.Get(ep.TokenURL).
				WithQuery("corpid", cred.ClientID).
				WithQuery("corpsecret", cred.ClientSecret),
			userInfo: httpx.Get(ep.api("/cgi-bin/user/getuserinfo")),
			user:     httpx.Get(ep.api("/cgi-bin/user/get")),
			cacheKey: WeChatWorkCacheKey(cred.ClientID, cfg.AgentID),
		}, nil
	})
}

// WeChatWorkCacheKey is the cache key of the corp token of one application.
func WeChatWorkCacheKey(corpID, agentID string) string {
	return string(PlatformWeChatWork) + ":" + corpID + ":" + agentID
}

func (p *WeChatWork) Platform() Platform { return PlatformWeChatWork }

// AuthorizeRequest ignores scopes; QR login has none.
func (p *WeChatWork) AuthorizeRequest(state string, _ []string) httpx.Request {
	return p.authorize.WithQuery("state", state)
}

// TokenRequest builds the code to user id lookup. The corp token is added
// by ExchangeToken.
func (p *WeChatWork) TokenRequest(code string) httpx.Request {
	return p.userInfo.WithQuery("code", code)
}

// ExchangeToken resolves the corp token, then maps code to the user id.
func (p *WeChatWork) ExchangeToken(ctx context.Context, exec httpx.Executor, code string) (*WeChatWorkToken, error) {
	corp, err := p.corpAccessToken(ctx, exec)
	if err != nil {
		return nil, err
	}
	data, err := p.call(ctx, exec, p.TokenRequest(code).WithQuery("access_token", corp.String("access_token")))
	if err != nil {
		return nil, err
	}
	return p.NewToken(data.Merge(httpx.NewData(map[string]any{
		"access_token": corp.String("access_token"),
		"expires_in":   corp.Int("expires_in"),
	}))), nil
}

func (p *WeChatWork) UserRequest(ctx context.Context, token *WeChatWorkToken) (httpx.Request, error) {
	corp, err := p.corpAccessToken(ctx, p.exec)
	if err != nil {
		return httpx.Request{}, err
	}
	return p.user.
		WithQuery("access_token", corp.String("access_token")).
		WithQuery("userid", token.UserID()), nil
}

func (p *WeChatWork) NewToken(data httpx.Data) *WeChatWorkToken {
	return &WeChatWorkToken{tokenData{data}}
}

func (p *WeChatWork) NewUser(data httpx.Data) *WeChatWorkUser {
	return &WeChatWorkUser{userData{data}}
}

func (p *WeChatWork) ErrorSpec() ErrorSpec {
	return wechatErrorSpec(nil)
}

// observeError drops the cached corp token once the API rejects it.
func (p *WeChatWork) observeError(ctx context.Context, err *ProviderError) {
	if err.Kind == KindAccessTokenExpired {
		_ = p.cache.Delete(ctx, p.cacheKey)
	}
}

func (p *WeChatWork) call(ctx context.Context, exec httpx.Executor, req httpx.Request) (httpx.Data, error) {
	data, err := execute(ctx, exec, PlatformWeChatWork, p.ErrorSpec(), req)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			p.observeError(ctx, pe)
		}
		return httpx.Data{}, err
	}
	return data, nil
}

func (p *WeChatWork) corpAccessToken(ctx context.Context, exec httpx.Executor) (httpx.Data, error) {
	return cache.GetOrSet(ctx, p.cache, p.cacheKey, func(ctx context.Context) (httpx.Data, time.Duration, error) {
		data, err := execute(ctx, exec, PlatformWeChatWork, p.ErrorSpec(), p.corpToken)
		if err != nil {
			return httpx.Data{}, 0, err
		}
		if data.String("access_token") == "" {
			return httpx.Data{}, 0, ErrMissingCorpToken
		}
		return data, corpTokenTTL(data.Int("expires_in")), nil
	})
}

// corpTokenTTL is the lifetime minus the safety margin, at least one second.
func corpTokenTTL(expiresIn int64) time.Duration {
	return max(time.Duration(expiresIn)*time.Second-corpTokenMargin, time.Second)
}

// WeChatWorkToken carries the corp access token and the member identity
// resolved from the authorization code.
type WeChatWorkToken struct{ tokenData }

// UserID is the corp member id, empty for non-members.
func (t *WeChatWorkToken) UserID() string { return t.data.FirstString("UserId", "userid") }

// DeviceID identifies the device used for the login.
func (t *WeChatWorkToken) DeviceID() string { return t.data.FirstString("DeviceId", "deviceid") }

// OpenID is set for users outside the corp.
func (t *WeChatWorkToken) OpenID() string { return t.data.FirstString("OpenId", "openid") }

// WeChatWorkUser is the cgi-bin/user/get member profile.
type WeChatWorkUser struct{ userData }

func (u *WeChatWorkUser) UID() string          { return u.data.String("userid") }
func (u *WeChatWorkUser) UserID() string       { return u.data.String("userid") }
func (u *WeChatWorkUser) Nickname() string     { return u.data.FirstString("name", "alias") }
func (u *WeChatWorkUser) AvatarURL() string    { return u.data.String("avatar") }
func (u *WeChatWorkUser) Email() string        { return u.data.FirstString("email", "biz_mail") }
func (u *WeChatWorkUser) Gender() Gender       { return ParseGender(u.data.String("gender")) }
func (u *WeChatWorkUser) Mobile() string       { return u.data.String("mobile") }
func (u *WeChatWorkUser) Position() string     { return u.data.String("position") }
func (u *WeChatWorkUser) Department() []string { return u.data.Strings("department") }
