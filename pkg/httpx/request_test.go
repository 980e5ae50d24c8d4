package httpx_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

func TestRequest_CopyIsolation(t *testing.T) {
	t.Parallel()

	t.Run("with query leaves prototype unchanged", func(t *testing.T) {
		t.Parallel()

		proto := httpx.Get("https://example.com/authorize").WithQuery("client_id", "id")
		derived := proto.WithQuery("state", "abc")

		require.Len(t, proto.Query(), 1)
		require.Len(t, derived.Query(), 2)
		require.Empty(t, proto.QueryValue("state"))
		require.Equal(t, "abc", derived.QueryValue("state"))
	})

	t.Run("sibling copies do not share storage", func(t *testing.T) {
		t.Parallel()

		// Build a prototype whose slice has spare capacity.
		proto := httpx.Post("https://example.com/token").
			WithForm("a", "1").
			WithForm("b", "2").
			WithForm("c", "3")

		first := proto.WithForm("code", "first")
		second := proto.WithForm("code", "second")

		require.Equal(t, "first", first.FormValue("code"))
		require.Equal(t, "second", second.FormValue("code"))
		require.Len(t, proto.Form(), 3)
	})

	t.Run("clone is deep for json body", func(t *testing.T) {
		t.Parallel()

		proto := httpx.Post("https://example.com").WithJSON(map[string]any{
			"metas": map[string]any{"app_key": "k"},
		})
		derived := proto.WithJSON(map[string]any{"token": "t"})

		body := derived.JSONBody()
		body["metas"].(map[string]any)["app_key"] = "mutated"

		require.Equal(t, "k", proto.JSONBody()["metas"].(map[string]any)["app_key"])
		require.NotContains(t, proto.JSONBody(), "token")
		require.Equal(t, "t", derived.JSONBody()["token"])
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		t.Parallel()

		proto := httpx.Get("https://example.com").WithQuery("a", "1")
		q := proto.Query()
		q[0].Value = "changed"
		require.Equal(t, "1", proto.QueryValue("a"))
	})
}

func TestRequest_NilValues(t *testing.T) {
	t.Parallel()

	proto := httpx.Get("https://example.com/authorize").WithQuery("client_id", "id")
	before, err := proto.URL()
	require.NoError(t, err)

	var missing *string
	after, err := proto.WithQuery("scope", nil).WithQuery("state", missing).URL()
	require.NoError(t, err)
	require.Equal(t, before, after)

	require.Empty(t, httpx.Post("https://example.com").WithForm("x", nil).Form())
	require.Empty(t, httpx.Post("https://example.com").WithHeader("X", nil).Header())
}

func TestRequest_URL(t *testing.T) {
	t.Parallel()

	t.Run("encodes values in insertion order", func(t *testing.T) {
		t.Parallel()

		u, err := httpx.Get("https://example.com/authorize").
			WithQuery("redirect_uri", "https://app.test/cb?x=1").
			WithQuery("state", "a b&c").
			URL()
		require.NoError(t, err)
		require.Equal(t,
			"https://example.com/authorize?redirect_uri="+url.QueryEscape("https://app.test/cb?x=1")+"&state="+url.QueryEscape("a b&c"),
			u,
		)
	})

	t.Run("formats non-string values", func(t *testing.T) {
		t.Parallel()

		u, err := httpx.Get("https://example.com").
			WithQuery("n", 42).
			WithQuery("b", true).
			WithQuery("i64", int64(7)).
			URL()
		require.NoError(t, err)
		require.Equal(t, "https://example.com?n=42&b=true&i64=7", u)
	})

	t.Run("keeps existing query and adds fragment", func(t *testing.T) {
		t.Parallel()

		u, err := httpx.Get("https://example.com/connect?fixed=1").
			WithQuery("appid", "wx").
			WithFragment("wechat_redirect").
			URL()
		require.NoError(t, err)
		require.Equal(t, "https://example.com/connect?fixed=1&appid=wx#wechat_redirect", u)
	})

	t.Run("get sends form params in query", func(t *testing.T) {
		t.Parallel()

		u, err := httpx.Get("https://example.com/token").WithForm("code", "c1").URL()
		require.NoError(t, err)
		require.Equal(t, "https://example.com/token?code=c1", u)
	})

	t.Run("invalid base url", func(t *testing.T) {
		t.Parallel()

		_, err := httpx.Get("://bad").URL()
		require.ErrorIs(t, err, httpx.ErrInvalidRequest)
	})
}

func TestRequest_HTTPRequest(t *testing.T) {
	t.Parallel()

	t.Run("form body", func(t *testing.T) {
		t.Parallel()

		req, err := httpx.Post("https://example.com/token").
			WithForm("code", "c1").
			WithForm("grant_type", "authorization_code").
			WithBasicAuth("key", "secret").
			HTTPRequest(context.Background())
		require.NoError(t, err)

		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
		require.Equal(t, "application/json", req.Header.Get("Accept"))

		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, "code=c1&grant_type=authorization_code", string(body))
	})

	t.Run("json body", func(t *testing.T) {
		t.Parallel()

		req, err := httpx.Post("https://example.com/token").
			WithForm("ignored", "x").
			WithJSON(map[string]any{"code": "c1"}).
			HTTPRequest(context.Background())
		require.NoError(t, err)
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))

		var got map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		require.Equal(t, map[string]any{"code": "c1"}, got)
	})

	t.Run("explicit header overrides default", func(t *testing.T) {
		t.Parallel()

		req, err := httpx.Get("https://example.com").
			WithHeader("Accept", "text/plain").
			WithBearer("tok").
			HTTPRequest(context.Background())
		require.NoError(t, err)
		require.Equal(t, "text/plain", req.Header.Get("Accept"))
		require.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		require.Nil(t, req.Body)
	})
}
