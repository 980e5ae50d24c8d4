package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// WeChatEndpoints are the WeChat open platform (website QR login) endpoints.
var WeChatEndpoints = Endpoints{
	AuthURL:  "https://open.weixin.qq.com/connect/qrconnect",
	TokenURL: "https://api.weixin.qq.com/sns/oauth2/access_token",
	APIURL:   "https://api.weixin.qq.com",
}

// WeChatMPEndpoints are the WeChat official account web authorization endpoints.
var WeChatMPEndpoints = Endpoints{
	AuthURL:  "https://open.weixin.qq.com/connect/oauth2/authorize",
	TokenURL: "https://api.weixin.qq.com/sns/oauth2/access_token",
	APIURL:   "https://api.weixin.qq.com",
}

// WeChat implements Provider and Refresher for WeChat web login, both the
// open platform QR flow and the official account (MP) in-app flow.
type WeChat struct {
	platform  Platform
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewWeChat creates a client for the WeChat open platform website login.
func NewWeChat(cfg Config, opts ...Option) (*Client[*WeChatToken, *WeChatUser], error) {
	return newWeChat(PlatformWeChat, WeChatEndpoints, []string{"snsapi_login"}, cfg, opts)
}

// NewWeChatMP creates a client for official account web authorization.
func NewWeChatMP(cfg Config, opts ...Option) (*Client[*WeChatToken, *WeChatUser], error) {
	return newWeChat(PlatformWeChatMP, WeChatMPEndpoints, []string{"snsapi_userinfo"}, cfg, opts)
}

func newWeChat(
	platform Platform,
	defaults Endpoints,
	defaultScopes []string,
	cfg Config,
	opts []Option,
) (*Client[*WeChatToken, *WeChatUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*WeChatToken, *WeChatUser], error) {
		ep := defaults.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = defaultScopes
		}
		return &WeChat{
			platform: platform,
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("appid", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithQuery("response_type", "code").
				WithFragment("wechat_redirect"),
			token: httpx.Get(ep.TokenURL).
				WithQuery("appid", cred.ClientID).
				WithQuery("secret", cred.ClientSecret).
				WithQuery("grant_type", "authorization_code"),
			refresh: httpx.Get(ep.api("/sns/oauth2/refresh_token")).
				WithQuery("appid", cred.ClientID).
				WithQuery("grant_type", "refresh_token"),
			user: httpx.Get(ep.api("/sns/userinfo")).
				WithQuery("lang", "zh_CN"),
			scopes: scopes,
		}, nil
	})
}

func (p *WeChat) Platform() Platform { return p.platform }

func (p *WeChat) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, ",")).
		WithQuery("state", state)
}

func (p *WeChat) TokenRequest(code string) httpx.Request {
	return p.token.WithQuery("code", code)
}

func (p *WeChat) RefreshRequest(token *WeChatToken) httpx.Request {
	return p.refresh.WithQuery("refresh_token", token.RefreshToken())
}

func (p *WeChat) UserRequest(_ context.Context, token *WeChatToken) (httpx.Request, error) {
	return p.user.
		WithQuery("access_token", token.AccessToken()).
		WithQuery("openid", token.OpenID()), nil
}

func (p *WeChat) NewToken(data httpx.Data) *WeChatToken { return &WeChatToken{tokenData{data}} }
func (p *WeChat) NewUser(data httpx.Data) *WeChatUser   { return &WeChatUser{userData{data}} }

func (p *WeChat) ErrorSpec() ErrorSpec {
	return wechatErrorSpec(CodeIn("42002", "40030"))
}

func wechatErrorSpec(refreshExpired func(string) bool) ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"errcode"},
		MessageFields:       []string{"errmsg"},
		SuccessCodes:        []string{"0"},
		AccessTokenExpired:  CodeIn("42001", "40014"),
		RefreshTokenExpired: refreshExpired,
	}
}

// WeChatToken is a WeChat web authorization token.
type WeChatToken struct{ tokenData }

// IsSnapshotUser reports whether the token belongs to a virtual "snapshot"
// user of the official account preview page.
func (t *WeChatToken) IsSnapshotUser() bool { return t.data.Bool("is_snapshotuser") }

// WeChatUser is the sns/userinfo profile.
type WeChatUser struct{ userData }

// UID prefers the unionid, stable across all apps of one developer account.
func (u *WeChatUser) UID() string         { return u.data.FirstString("unionid", "openid") }
func (u *WeChatUser) OpenID() string      { return u.data.String("openid") }
func (u *WeChatUser) UnionID() string     { return u.data.String("unionid") }
func (u *WeChatUser) Nickname() string    { return u.data.String("nickname") }
func (u *WeChatUser) AvatarURL() string   { return u.data.String("headimgurl") }
func (u *WeChatUser) Email() string       { return "" }
func (u *WeChatUser) Gender() Gender      { return ParseGender(u.data.String("sex")) }
func (u *WeChatUser) Province() string    { return u.data.String("province") }
func (u *WeChatUser) City() string        { return u.data.String("city") }
func (u *WeChatUser) Country() string     { return u.data.String("country") }
func (u *WeChatUser) Privilege() []string { return u.data.Strings("privilege") }
