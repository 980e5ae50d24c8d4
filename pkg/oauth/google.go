package oauth

import (
	"context"
	"strings"

	googleOAuth "golang.org/x/oauth2/google"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
func GoogleDefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleEndpoints are the public Google endpoints.
var GoogleEndpoints = Endpoints{
	AuthURL:  googleOAuth.Endpoint.AuthURL,
	TokenURL: googleOAuth.Endpoint.TokenURL,
	APIURL:   "https://www.googleapis.com",
}

// Google implements Provider and Refresher for Google sign-in.
// Authorization asks for offline access so a refresh token is issued.
type Google struct {
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewGoogle creates a Google client.
func NewGoogle(cfg Config, opts ...Option) (*Client[*GoogleToken, *GoogleUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*GoogleToken, *GoogleUser], error) {
		ep := GoogleEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = GoogleDefaultScopes()
		}
		return &Google{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithQuery("response_type", "code").
				WithQuery("access_type", "offline"),
			token: httpx.Post(ep.TokenURL).
				WithForm("client_id", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("redirect_uri", cred.RedirectURI).
				WithForm("grant_type", "authorization_code"),
			refresh: httpx.Post(ep.TokenURL).
				WithForm("client_id", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("grant_type", "refresh_token"),
			user:   httpx.Get(ep.api("/oauth2/v2/userinfo")),
			scopes: scopes,
		}, nil
	})
}

func (p *Google) Platform() Platform { return PlatformGoogle }

func (p *Google) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, " ")).
		WithQuery("state", state)
}

func (p *Google) TokenRequest(code string) httpx.Request {
	return p.token.WithForm("code", code)
}

func (p *Google) RefreshRequest(token *GoogleToken) httpx.Request {
	return p.refresh.WithForm("refresh_token", token.RefreshToken())
}

func (p *Google) UserRequest(_ context.Context, token *GoogleToken) (httpx.Request, error) {
	return p.user.WithBearer(token.AccessToken()), nil
}

func (p *Google) NewToken(data httpx.Data) *GoogleToken { return &GoogleToken{tokenData{data}} }
func (p *Google) NewUser(data httpx.Data) *GoogleUser   { return &GoogleUser{userData{data}} }

func (p *Google) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"error.status", "error"},
		MessageFields:       []string{"error.message", "error_description"},
		AccessTokenExpired:  CodeIn("UNAUTHENTICATED"),
		RefreshTokenExpired: CodeIn("invalid_grant"),
	}
}

// GoogleToken is a Google access token.
type GoogleToken struct{ tokenData }

// IDToken is the OpenID Connect ID token, when the openid scope was granted.
func (t *GoogleToken) IDToken() string { return t.data.String("id_token") }

// GoogleUser is the oauth2/v2/userinfo profile.
type GoogleUser struct{ userData }

func (u *GoogleUser) UID() string         { return u.data.String("id") }
func (u *GoogleUser) Nickname() string    { return u.data.String("name") }
func (u *GoogleUser) AvatarURL() string   { return u.data.String("picture") }
func (u *GoogleUser) Gender() Gender      { return ParseGender(u.data.String("gender")) }
func (u *GoogleUser) Locale() string      { return u.data.String("locale") }
func (u *GoogleUser) EmailVerified() bool { return u.data.Bool("verified_email") }

// Email is empty unless Google reports the address as verified.
func (u *GoogleUser) Email() string {
	if !u.EmailVerified() {
		return ""
	}
	return u.data.String("email")
}
