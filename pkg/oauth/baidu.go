package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// BaiduEndpoints are the public Baidu open platform endpoints.
var BaiduEndpoints = Endpoints{
	AuthURL:  "https://openapi.baidu.com/oauth/2.0/authorize",
	TokenURL: "https://openapi.baidu.com/oauth/2.0/token",
	APIURL:   "https://openapi.baidu.com",
}

const baiduPortraitURL = "https://himg.bdimg.com/sys/portrait/item/"

// Baidu implements Provider and Refresher for the Baidu open platform.
type Baidu struct {
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewBaidu creates a Baidu client.
func NewBaidu(cfg Config, opts ...Option) (*Client[*BaiduToken, *BaiduUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*BaiduToken, *BaiduUser], error) {
		ep := BaiduEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"basic"}
		}
		return &Baidu{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("response_type", "code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithQuery("display", "popup"),
			token: httpx.Get(ep.TokenURL).
				WithQuery("grant_type", "authorization_code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("client_secret", cred.ClientSecret).
				WithQuery("redirect_uri", cred.RedirectURI),
			refresh: httpx.Get(ep.TokenURL).
				WithQuery("grant_type", "refresh_token").
				WithQuery("client_id", cred.ClientID).
				WithQuery("client_secret", cred.ClientSecret),
			user:   httpx.Get(ep.api("/rest/2.0/passport/users/getInfo")),
			scopes: scopes,
		}, nil
	})
}

func (p *Baidu) Platform() Platform { return PlatformBaidu }

func (p *Baidu) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, ",")).
		WithQuery("state", state)
}

func (p *Baidu) TokenRequest(code string) httpx.Request {
	return p.token.WithQuery("code", code)
}

func (p *Baidu) RefreshRequest(token *BaiduToken) httpx.Request {
	return p.refresh.WithQuery("refresh_token", token.RefreshToken())
}

func (p *Baidu) UserRequest(_ context.Context, token *BaiduToken) (httpx.Request, error) {
	return p.user.WithQuery("access_token", token.AccessToken()), nil
}

func (p *Baidu) NewToken(data httpx.Data) *BaiduToken { return &BaiduToken{tokenData{data}} }
func (p *Baidu) NewUser(data httpx.Data) *BaiduUser   { return &BaiduUser{userData{data}} }

func (p *Baidu) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"error", "error_code"},
		MessageFields:       []string{"error_description", "error_msg"},
		AccessTokenExpired:  CodeIn("110", "111"),
		RefreshTokenExpired: CodeIn("expired_token"),
	}
}

// BaiduToken is a Baidu token.
type BaiduToken struct{ tokenData }

// SessionKey is the legacy session key returned with the token.
func (t *BaiduToken) SessionKey() string { return t.data.String("session_key") }

// BaiduUser is the passport users/getInfo profile.
type BaiduUser struct{ userData }

func (u *BaiduUser) UID() string      { return u.data.FirstString("openid", "userid") }
func (u *BaiduUser) Nickname() string { return u.data.FirstString("username", "uname") }
func (u *BaiduUser) Email() string    { return "" }
func (u *BaiduUser) Gender() Gender {
	// Baidu encodes sex as 1 male, 0 female.
	switch u.data.String("sex") {
	case "1":
		return GenderMale
	case "0":
		return GenderFemale
	default:
		return GenderUnknown
	}
}
func (u *BaiduUser) Birthday() string { return u.data.String("birthday") }

// AvatarURL builds the portrait image URL from the portrait key.
func (u *BaiduUser) AvatarURL() string {
	portrait := u.data.String("portrait")
	if portrait == "" {
		return ""
	}
	return baiduPortraitURL + portrait
}
