package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// GiteeEndpoints are the public gitee.com endpoints.
var GiteeEndpoints = Endpoints{
	AuthURL:  "https://gitee.com/oauth/authorize",
	TokenURL: "https://gitee.com/oauth/token",
	APIURL:   "https://gitee.com",
}

// Gitee implements Provider and Refresher for gitee.com.
type Gitee struct {
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewGitee creates a Gitee client.
func NewGitee(cfg Config, opts ...Option) (*Client[*GiteeToken, *GiteeUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*GiteeToken, *GiteeUser], error) {
		ep := GiteeEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"user_info"}
		}
		return &Gitee{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithQuery("response_type", "code"),
			token: httpx.Post(ep.TokenURL).
				WithForm("grant_type", "authorization_code").
				WithForm("client_id", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("redirect_uri", cred.RedirectURI),
			refresh: httpx.Post(ep.TokenURL).
				WithForm("grant_type", "refresh_token"),
			user:   httpx.Get(ep.api("/api/v5/user")),
			scopes: scopes,
		}, nil
	})
}

func (p *Gitee) Platform() Platform { return PlatformGitee }

func (p *Gitee) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, " ")).
		WithQuery("state", state)
}

func (p *Gitee) TokenRequest(code string) httpx.Request {
	return p.token.WithForm("code", code)
}

func (p *Gitee) RefreshRequest(token *GiteeToken) httpx.Request {
	return p.refresh.WithForm("refresh_token", token.RefreshToken())
}

func (p *Gitee) UserRequest(_ context.Context, token *GiteeToken) (httpx.Request, error) {
	return p.user.WithQuery("access_token", token.AccessToken()), nil
}

func (p *Gitee) NewToken(data httpx.Data) *GiteeToken { return &GiteeToken{tokenData{data}} }
func (p *Gitee) NewUser(data httpx.Data) *GiteeUser   { return &GiteeUser{userData{data}} }

func (p *Gitee) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"error", "message"},
		MessageFields:       []string{"error_description", "message"},
		AccessTokenExpired:  CodeContains("expired", "invalid_token"),
		RefreshTokenExpired: CodeIn("invalid_grant"),
	}
}

// GiteeToken is a gitee.com token.
type GiteeToken struct{ tokenData }

// CreatedAt is the unix time the token was issued.
func (t *GiteeToken) CreatedAt() int64 { return t.data.Int("created_at") }

// GiteeUser is the /api/v5/user profile.
type GiteeUser struct{ userData }

func (u *GiteeUser) UID() string       { return u.data.String("id") }
func (u *GiteeUser) Login() string     { return u.data.String("login") }
func (u *GiteeUser) Nickname() string  { return u.data.FirstString("name", "login") }
func (u *GiteeUser) AvatarURL() string { return u.data.String("avatar_url") }
func (u *GiteeUser) Email() string     { return u.data.String("email") }
func (u *GiteeUser) Gender() Gender    { return GenderUnknown }
func (u *GiteeUser) Bio() string       { return u.data.String("bio") }
func (u *GiteeUser) Blog() string      { return u.data.String("blog") }
func (u *GiteeUser) HTMLURL() string   { return u.data.String("html_url") }
