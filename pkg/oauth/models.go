package oauth

import "github.com/dmitrymomot/socialauth/pkg/httpx"

// tokenData implements Token over the conventional OAuth2 field names.
// Provider tokens embed it and shadow the accessors that differ.
type tokenData struct {
	data httpx.Data
}

func (t tokenData) Data() httpx.Data        { return t.data }
func (t tokenData) AccessToken() string     { return t.data.String("access_token") }
func (t tokenData) ExpiresIn() int64        { return t.data.Int("expires_in") }
func (t tokenData) RefreshToken() string    { return t.data.String("refresh_token") }
func (t tokenData) RefreshExpiresIn() int64 { return t.data.Int("refresh_expires_in") }
func (t tokenData) OpenID() string          { return t.data.FirstString("openid", "open_id") }
func (t tokenData) UnionID() string         { return t.data.FirstString("unionid", "union_id") }
func (t tokenData) Scope() string           { return t.data.String("scope") }

// TokenType returns the token_type field, "Bearer" when absent.
func (t tokenData) TokenType() string {
	if v := t.data.String("token_type"); v != "" {
		return v
	}
	return "Bearer"
}

// userData carries the raw profile. Provider users embed it.
type userData struct {
	data httpx.Data
}

func (u userData) Data() httpx.Data { return u.data }
