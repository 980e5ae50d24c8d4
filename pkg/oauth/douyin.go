package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// DouyinEndpoints are the Douyin (TikTok China) open platform endpoints.
var DouyinEndpoints = Endpoints{
	AuthURL:  "https://open.douyin.com/platform/oauth/connect/",
	TokenURL: "https://open.douyin.com/oauth/access_token/",
	APIURL:   "https://open.douyin.com",
}

// Douyin implements Provider and Refresher for the Douyin open platform.
// Every response nests its payload under "data".
type Douyin struct {
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewDouyin creates a Douyin client. ClientID is the client key.
func NewDouyin(cfg Config, opts ...Option) (*Client[*DouyinToken, *DouyinUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*DouyinToken, *DouyinUser], error) {
		ep := DouyinEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"user_info"}
		}
		return &Douyin{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("client_key", cred.ClientID).
				WithQuery("response_type", "code").
				WithQuery("redirect_uri", cred.RedirectURI),
			token: httpx.Post(ep.TokenURL).
				WithForm("client_key", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("grant_type", "authorization_code"),
			refresh: httpx.Post(ep.api("/oauth/refresh_token/")).
				WithForm("client_key", cred.ClientID).
				WithForm("grant_type", "refresh_token"),
			user:   httpx.Post(ep.api("/oauth/userinfo/")),
			scopes: scopes,
		}, nil
	})
}

func (p *Douyin) Platform() Platform { return PlatformDouyin }

func (p *Douyin) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, ",")).
		WithQuery("state", state)
}

func (p *Douyin) TokenRequest(code string) httpx.Request {
	return p.token.WithForm("code", code)
}

func (p *Douyin) RefreshRequest(token *DouyinToken) httpx.Request {
	return p.refresh.WithForm("refresh_token", token.RefreshToken())
}

func (p *Douyin) UserRequest(_ context.Context, token *DouyinToken) (httpx.Request, error) {
	return p.user.
		WithForm("access_token", token.AccessToken()).
		WithForm("open_id", token.OpenID()), nil
}

func (p *Douyin) NewToken(data httpx.Data) *DouyinToken { return &DouyinToken{tokenData{data}} }
func (p *Douyin) NewUser(data httpx.Data) *DouyinUser   { return &DouyinUser{userData{data}} }

func (p *Douyin) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"data.error_code", "error_code"},
		MessageFields:       []string{"data.description", "description"},
		SuccessCodes:        []string{"0"},
		AccessTokenExpired:  CodeIn("2190008", "10008"),
		RefreshTokenExpired: CodeIn("10010"),
	}
}

// DouyinToken is a Douyin user access token.
type DouyinToken struct{ tokenData }

func (t *DouyinToken) AccessToken() string     { return t.data.String("data.access_token") }
func (t *DouyinToken) ExpiresIn() int64        { return t.data.Int("data.expires_in") }
func (t *DouyinToken) RefreshToken() string    { return t.data.String("data.refresh_token") }
func (t *DouyinToken) RefreshExpiresIn() int64 { return t.data.Int("data.refresh_expires_in") }
func (t *DouyinToken) OpenID() string          { return t.data.String("data.open_id") }
func (t *DouyinToken) UnionID() string         { return t.data.String("data.union_id") }
func (t *DouyinToken) Scope() string           { return t.data.String("data.scope") }

// DouyinUser is the oauth/userinfo profile.
type DouyinUser struct{ userData }

func (u *DouyinUser) UID() string {
	return u.data.FirstString("data.union_id", "data.open_id")
}
func (u *DouyinUser) OpenID() string    { return u.data.String("data.open_id") }
func (u *DouyinUser) UnionID() string   { return u.data.String("data.union_id") }
func (u *DouyinUser) Nickname() string  { return u.data.String("data.nickname") }
func (u *DouyinUser) AvatarURL() string { return u.data.FirstString("data.avatar_larger", "data.avatar") }
func (u *DouyinUser) Email() string     { return "" }
func (u *DouyinUser) Gender() Gender    { return ParseGender(u.data.String("data.gender")) }
func (u *DouyinUser) Country() string   { return u.data.String("data.country") }
func (u *DouyinUser) Province() string  { return u.data.String("data.province") }
func (u *DouyinUser) City() string      { return u.data.String("data.city") }
