package oauth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// ElemeEndpoints are the Eleme merchant open platform endpoints.
var ElemeEndpoints = Endpoints{
	AuthURL:  "https://open-api.shop.ele.me/authorize",
	TokenURL: "https://open-api.shop.ele.me/token",
	APIURL:   "https://open-api.shop.ele.me",
}

const elemeGetUser = "eleme.user.getUser"

// Eleme implements Provider and Refresher for Eleme merchant authorization.
// Token calls use HTTP Basic auth; the profile comes from a signed
// JSON-RPC call.
type Eleme struct {
	now       func() time.Time
	authorize httpx.Request
	token     httpx.Request
	refresh   httpx.Request
	rpc       httpx.Request
	appKey    string
	secret    string
	scopes    []string
}

// NewEleme creates an Eleme client. ClientID is the app key.
func NewEleme(cfg Config, opts ...Option) (*Client[*ElemeToken, *ElemeUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*ElemeToken, *ElemeUser], error) {
		ep := ElemeEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"all"}
		}
		return &Eleme{
			now: time.Now,
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("response_type", "code").
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI),
			token: httpx.Post(ep.TokenURL).
				WithBasicAuth(cred.ClientID, cred.ClientSecret).
				WithForm("grant_type", "authorization_code").
				WithForm("redirect_uri", cred.RedirectURI).
				WithForm("client_id", cred.ClientID),
			refresh: httpx.Post(ep.TokenURL).
				WithBasicAuth(cred.ClientID, cred.ClientSecret).
				WithForm("grant_type", "refresh_token"),
			rpc:    httpx.Post(ep.api("/api/v1/")),
			appKey: cred.ClientID,
			secret: cred.ClientSecret,
			scopes: scopes,
		}, nil
	})
}

func (p *Eleme) Platform() Platform { return PlatformEleme }

func (p *Eleme) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, " ")).
		WithQuery("state", state)
}

func (p *Eleme) TokenRequest(code string) httpx.Request {
	return p.token.WithForm("code", code)
}

func (p *Eleme) RefreshRequest(token *ElemeToken) httpx.Request {
	return p.refresh.WithForm("refresh_token", token.RefreshToken())
}

// UserRequest builds the signed eleme.user.getUser call.
func (p *Eleme) UserRequest(_ context.Context, token *ElemeToken) (httpx.Request, error) {
	metas := map[string]any{
		"app_key":   p.appKey,
		"timestamp": p.now().Unix(),
	}
	params := map[string]any{}
	sig, err := ElemeSignature(elemeGetUser, token.AccessToken(), metas, params, p.secret)
	if err != nil {
		return httpx.Request{}, err
	}
	return p.rpc.WithJSON(map[string]any{
		"nop":       "1.0.0",
		"id":        uuid.NewString(),
		"action":    elemeGetUser,
		"token":     token.AccessToken(),
		"metas":     metas,
		"params":    params,
		"signature": sig,
	}), nil
}

func (p *Eleme) NewToken(data httpx.Data) *ElemeToken { return &ElemeToken{tokenData{data}} }
func (p *Eleme) NewUser(data httpx.Data) *ElemeUser   { return &ElemeUser{userData{data}} }

func (p *Eleme) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:          []string{"error.code", "error"},
		MessageFields:       []string{"error.message", "error_description"},
		AccessTokenExpired:  CodeIn("UNAUTHORIZED", "INVALID_TOKEN"),
		RefreshTokenExpired: CodeIn("invalid_grant"),
	}
}

// ElemeSignature signs a JSON-RPC call: the upper-case hex MD5 of action,
// token, the sorted key=json(value) pairs of metas and params, and secret.
func ElemeSignature(action, token string, metas, params map[string]any, secret string) (string, error) {
	all := make(map[string]any, len(metas)+len(params))
	maps.Copy(all, metas)
	maps.Copy(all, params)

	var b strings.Builder
	b.WriteString(action)
	b.WriteString(token)
	for _, k := range slices.Sorted(maps.Keys(all)) {
		v, err := json.Marshal(all[k])
		if err != nil {
			return "", err
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(v)
	}
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// ElemeToken is an Eleme merchant token.
type ElemeToken struct{ tokenData }

// ElemeShop is a shop the merchant authorized.
type ElemeShop struct {
	ID   string
	Name string
}

// ElemeUser is the eleme.user.getUser result.
type ElemeUser struct{ userData }

func (u *ElemeUser) UID() string {
	return u.data.FirstString("result.userIdStr", "result.userId")
}
func (u *ElemeUser) UserName() string  { return u.data.String("result.userName") }
func (u *ElemeUser) Nickname() string  { return u.UserName() }
func (u *ElemeUser) AvatarURL() string { return "" }
func (u *ElemeUser) Email() string     { return "" }
func (u *ElemeUser) Gender() Gender    { return GenderUnknown }

// AuthorizedShops lists the shops covered by the authorization.
func (u *ElemeUser) AuthorizedShops() []ElemeShop {
	items := u.data.Objects("result.authorizedShops")
	shops := make([]ElemeShop, 0, len(items))
	for _, it := range items {
		shops = append(shops, ElemeShop{ID: it.String("id"), Name: it.String("name")})
	}
	return shops
}
