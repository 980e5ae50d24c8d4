package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// QQEndpoints are the public QQ Connect endpoints.
var QQEndpoints = Endpoints{
	AuthURL:  "https://graph.qq.com/oauth2.0/authorize",
	TokenURL: "https://graph.qq.com/oauth2.0/token",
	APIURL:   "https://graph.qq.com",
}

// QQ implements Provider, Refresher, TokenFinisher and UserFinisher for QQ Connect.
// The token endpoint answers in query-string form; the openid comes from
// a second call to /oauth2.0/me.
type QQ struct {
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	me        httpx.Request
	user      httpx.Request
	scopes    []string
}

// NewQQ creates a QQ client.
func NewQQ(cfg Config, opts ...Option) (*Client[*QQToken, *QQUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*QQToken, *QQUser], error) {
		ep := QQEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"get_user_info"}
		}
		return &QQ{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("response_type", "code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI),
			token: httpx.Get(ep.TokenURL).
				WithQuery("grant_type", "authorization_code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("client_secret", cred.ClientSecret).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithParser(httpx.ParseForm),
			refresh: httpx.Get(ep.TokenURL).
				WithQuery("grant_type", "refresh_token").
				WithQuery("client_id", cred.ClientID).
				WithQuery("client_secret", cred.ClientSecret).
				WithParser(httpx.ParseForm),
			me: httpx.Get(ep.api("/oauth2.0/me")).
				WithQuery("fmt", "json").
				WithQuery("unionid", 1).
				WithParser(httpx.ParseForm),
			user: httpx.Get(ep.api("/user/get_user_info")).
				WithQuery("oauth_consumer_key", cred.ClientID),
			scopes: scopes,
		}, nil
	})
}

func (p *QQ) Platform() Platform { return PlatformQQ }

func (p *QQ) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, ",")).
		WithQuery("state", state)
}

func (p *QQ) TokenRequest(code string) httpx.Request {
	return p.token.WithQuery("code", code)
}

func (p *QQ) RefreshRequest(token *QQToken) httpx.Request {
	return p.refresh.WithQuery("refresh_token", token.RefreshToken())
}

// FinishToken resolves the openid and unionid of the token owner.
func (p *QQ) FinishToken(ctx context.Context, exec httpx.Executor, token *QQToken) (*QQToken, error) {
	data, err := execute(ctx, exec, PlatformQQ, p.ErrorSpec(), p.me.WithQuery("access_token", token.AccessToken()))
	if err != nil {
		return nil, err
	}
	return p.NewToken(token.Data().Merge(data)), nil
}

func (p *QQ) UserRequest(_ context.Context, token *QQToken) (httpx.Request, error) {
	return p.user.
		WithQuery("access_token", token.AccessToken()).
		WithQuery("openid", token.OpenID()), nil
}

func (p *QQ) NewToken(data httpx.Data) *QQToken { return &QQToken{tokenData{data}} }
func (p *QQ) NewUser(data httpx.Data) *QQUser    { return &QQUser{userData{data}} }

// FinishUser copies the openid and unionid onto the profile, which
// get_user_info omits.
func (p *QQ) FinishUser(token *QQToken, user *QQUser) *QQUser {
	return p.NewUser(user.Data().Merge(httpx.NewData(map[string]any{
		"openid":  token.OpenID(),
		"unionid": token.UnionID(),
	})))
}

func (p *QQ) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"error", "ret"},
		MessageFields:       []string{"error_description", "msg"},
		SuccessCodes:        []string{"0"},
		AccessTokenExpired:  CodeIn("100014", "100015", "100016"),
		RefreshTokenExpired: CodeIn("100013", "100007"),
	}
}

// QQToken is a QQ Connect token including the openid from /oauth2.0/me.
type QQToken struct{ tokenData }

// QQUser is the get_user_info profile.
type QQUser struct{ userData }

// UID is the unionid when the app is bound to one, else the openid.
func (u *QQUser) UID() string       { return u.data.FirstString("unionid", "openid") }
func (u *QQUser) Nickname() string  { return u.data.String("nickname") }
func (u *QQUser) Email() string     { return "" }
func (u *QQUser) Gender() Gender    { return ParseGender(u.data.String("gender")) }
func (u *QQUser) Province() string  { return u.data.String("province") }
func (u *QQUser) City() string      { return u.data.String("city") }
func (u *QQUser) Year() string      { return u.data.String("year") }
func (u *QQUser) FigureURL() string { return u.data.String("figureurl") }

// AvatarURL prefers the 100x100 QQ avatar.
func (u *QQUser) AvatarURL() string {
	return u.data.FirstString("figureurl_qq_2", "figureurl_qq_1", "figureurl_2", "figureurl_1")
}
