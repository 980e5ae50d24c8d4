package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// DingTalkEndpoints are the DingTalk v1.0 OAuth endpoints.
var DingTalkEndpoints = Endpoints{
	AuthURL:  "https://login.dingtalk.com/oauth2/auth",
	TokenURL: "https://api.dingtalk.com/v1.0/oauth2/userAccessToken",
	APIURL:   "https://api.dingtalk.com",
}

// DingTalk implements Provider and Refresher for DingTalk third-party login.
// The v1.0 API takes JSON bodies and camelCase fields.
type DingTalk struct {
	authorize httpx.Request
	token     httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewDingTalk creates a DingTalk client. ClientID is the app key.
func NewDingTalk(cfg Config, opts ...Option) (*Client[*DingTalkToken, *DingTalkUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*DingTalkToken, *DingTalkUser], error) {
		ep := DingTalkEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"openid"}
		}
		return &DingTalk{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithQuery("response_type", "code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("prompt", "consent"),
			token: httpx.Post(ep.TokenURL).WithJSON(map[string]any{
				"clientId":     cred.ClientID,
				"clientSecret": cred.ClientSecret,
			}),
			user:   httpx.Get(ep.api("/v1.0/contact/users/me")),
			scopes: scopes,
		}, nil
	})
}

func (p *DingTalk) Platform() Platform { return PlatformDingTalk }

func (p *DingTalk) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, " ")).
		WithQuery("state", state)
}

func (p *DingTalk) TokenRequest(code string) httpx.Request {
	return p.token.WithJSON(map[string]any{
		"code":      code,
		"grantType": "authorization_code",
	})
}

func (p *DingTalk) RefreshRequest(token *DingTalkToken) httpx.Request {
	return p.token.WithJSON(map[string]any{
		"refreshToken": token.RefreshToken(),
		"grantType":    "refresh_token",
	})
}

func (p *DingTalk) UserRequest(_ context.Context, token *DingTalkToken) (httpx.Request, error) {
	return p.user.WithHeader("x-acs-dingtalk-access-token", token.AccessToken()), nil
}

func (p *DingTalk) NewToken(data httpx.Data) *DingTalkToken { return &DingTalkToken{tokenData{data}} }
func (p *DingTalk) NewUser(data httpx.Data) *DingTalkUser   { return &DingTalkUser{userData{data}} }

func (p *DingTalk) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"code"},
		MessageFields:       []string{"message"},
		AccessTokenExpired:  CodeIn("InvalidAuthentication"),
		RefreshTokenExpired: CodeIn("invalid_grant", "refreshTokenExpired"),
	}
}

// DingTalkToken is a DingTalk user access token.
type DingTalkToken struct{ tokenData }

func (t *DingTalkToken) AccessToken() string  { return t.data.String("accessToken") }
func (t *DingTalkToken) ExpiresIn() int64     { return t.data.Int("expireIn") }
func (t *DingTalkToken) RefreshToken() string { return t.data.String("refreshToken") }

// CorpID is the organization the user picked at login, if any.
func (t *DingTalkToken) CorpID() string { return t.data.String("corpId") }

// DingTalkUser is the contact/users/me profile.
type DingTalkUser struct{ userData }

// UID prefers the unionId, stable across apps of one developer.
func (u *DingTalkUser) UID() string       { return u.data.FirstString("unionId", "openId") }
func (u *DingTalkUser) OpenID() string    { return u.data.String("openId") }
func (u *DingTalkUser) UnionID() string   { return u.data.String("unionId") }
func (u *DingTalkUser) Nickname() string  { return u.data.String("nick") }
func (u *DingTalkUser) AvatarURL() string { return u.data.String("avatarUrl") }
func (u *DingTalkUser) Email() string     { return u.data.String("email") }
func (u *DingTalkUser) Gender() Gender    { return GenderUnknown }
func (u *DingTalkUser) Mobile() string    { return u.data.String("mobile") }
func (u *DingTalkUser) StateCode() string { return u.data.String("stateCode") }
