package oauth

import (
	"context"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// OSChinaEndpoints are the public oschina.net endpoints.
var OSChinaEndpoints = Endpoints{
	AuthURL:  "https://www.oschina.net/action/oauth2/authorize",
	TokenURL: "https://www.oschina.net/action/openapi/token",
	APIURL:   "https://www.oschina.net",
}

// OSChina implements Provider and Refresher for oschina.net.
type OSChina struct {
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	user      httpx.Request
}

// NewOSChina creates an OSChina client. OSChina has no scopes.
func NewOSChina(cfg Config, opts ...Option) (*Client[*OSChinaToken, *OSChinaUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*OSChinaToken, *OSChinaUser], error) {
		ep := OSChinaEndpoints.override(o.endpoints)
		return &OSChina{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("response_type", "code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI),
			token: httpx.Post(ep.TokenURL).
				WithForm("grant_type", "authorization_code").
				WithForm("client_id", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("redirect_uri", cred.RedirectURI).
				WithForm("dataType", "json"),
			refresh: httpx.Post(ep.TokenURL).
				WithForm("grant_type", "refresh_token").
				WithForm("client_id", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("redirect_uri", cred.RedirectURI).
				WithForm("dataType", "json"),
			user: httpx.Get(ep.api("/action/openapi/user")).
				WithQuery("dataType", "json"),
		}, nil
	})
}

func (p *OSChina) Platform() Platform { return PlatformOSChina }

func (p *OSChina) AuthorizeRequest(state string, _ []string) httpx.Request {
	return p.authorize.WithQuery("state", state)
}

func (p *OSChina) TokenRequest(code string) httpx.Request {
	return p.token.WithForm("code", code)
}

func (p *OSChina) RefreshRequest(token *OSChinaToken) httpx.Request {
	return p.refresh.WithForm("refresh_token", token.RefreshToken())
}

func (p *OSChina) UserRequest(_ context.Context, token *OSChinaToken) (httpx.Request, error) {
	return p.user.WithQuery("access_token", token.AccessToken()), nil
}

func (p *OSChina) NewToken(data httpx.Data) *OSChinaToken { return &OSChinaToken{tokenData{data}} }
func (p *OSChina) NewUser(data httpx.Data) *OSChinaUser   { return &OSChinaUser{userData{data}} }

func (p *OSChina) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"error"},
		MessageFields:       []string{"error_description"},
		AccessTokenExpired:  CodeIn("invalid_token", "expired_token"),
		RefreshTokenExpired: CodeIn("invalid_grant"),
	}
}

// OSChinaToken is an oschina.net token.
type OSChinaToken struct{ tokenData }

// UID is the user id returned along with the token.
func (t *OSChinaToken) UID() string { return t.data.String("uid") }

// OSChinaUser is the openapi user profile.
type OSChinaUser struct{ userData }

func (u *OSChinaUser) UID() string       { return u.data.String("id") }
func (u *OSChinaUser) Nickname() string  { return u.data.String("name") }
func (u *OSChinaUser) AvatarURL() string { return u.data.String("avatar") }
func (u *OSChinaUser) Email() string     { return u.data.String("email") }
func (u *OSChinaUser) Gender() Gender    { return ParseGender(u.data.String("gender")) }
func (u *OSChinaUser) Location() string  { return u.data.String("location") }
func (u *OSChinaUser) HomePage() string  { return u.data.String("url") }
