package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

func newGitHubServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "c1" {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "bad_verification_code",
				"error_description": "The code passed is incorrect or expired.",
			})
			return
		}
		require.Equal(t, "app-id", r.PostForm.Get("client_id"))
		require.Equal(t, "app-secret", r.PostForm.Get("client_secret"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok1",
			"token_type":   "bearer",
			"scope":        "read:user,user:email",
		})
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "token tok1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         42,
			"login":      "bob",
			"avatar_url": "http://x/y.png",
		})
	})

	mux.HandleFunc("GET /user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.Equal(t, "token tok1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "unverified@example.com", "primary": true, "verified": false},
			{"email": "bob@example.com", "primary": true, "verified": true},
		})
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newGitHubClient(t *testing.T, ts *httptest.Server) *oauth.Client[*oauth.GitHubToken, *oauth.GitHubUser] {
	t.Helper()

	client, err := oauth.NewGitHub(testConfig,
		oauth.WithHTTPClient(ts.Client()),
		oauth.WithEndpoints(oauth.Endpoints{
			AuthURL:  ts.URL + "/login/oauth/authorize",
			TokenURL: ts.URL + "/login/oauth/access_token",
			APIURL:   ts.URL,
		}),
	)
	require.NoError(t, err)
	return client
}

func TestGitHub_Flow(t *testing.T) {
	t.Parallel()

	ts := newGitHubServer(t)
	client := newGitHubClient(t, ts)
	ctx := context.Background()

	raw, err := client.AuthorizeURL("abc")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/login/oauth/authorize", u.Path)
	require.Equal(t, "abc", u.Query().Get("state"))
	require.Equal(t, "code", u.Query().Get("response_type"))
	require.Equal(t, "app-id", u.Query().Get("client_id"))
	require.Equal(t, testConfig.RedirectURL, u.Query().Get("redirect_uri"))
	require.Equal(t, "read:user user:email", u.Query().Get("scope"))

	tok, err := client.ExchangeCallback(ctx, oauth.ParseCallback(url.Values{"code": {"c1"}, "state": {"abc"}}))
	require.NoError(t, err)
	require.Equal(t, "tok1", tok.AccessToken())
	require.Equal(t, "read:user,user:email", tok.Scope())

	user, err := client.ExchangeForUser(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "42", user.UID())
	require.Equal(t, "bob", user.Login())
	require.Equal(t, "bob", user.Nickname())
	require.Equal(t, "http://x/y.png", user.AvatarURL())
	require.Equal(t, "bob@example.com", user.Email())
	require.Equal(t, oauth.GenderUnknown, user.Gender())
}

func TestGitHub_Email(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	token := func(t *testing.T, client *oauth.Client[*oauth.GitHubToken, *oauth.GitHubUser]) *oauth.GitHubToken {
		return client.Provider().NewToken(tokenData(t, `{"access_token":"tok"}`))
	}

	t.Run("public email skips the list", func(t *testing.T) {
		t.Parallel()

		exec := routes(map[string]string{"/user": `{"id":1,"email":"pub@example.com"}`})
		client, err := oauth.NewGitHub(testConfig, oauth.WithExecutor(exec))
		require.NoError(t, err)

		user, err := client.ExchangeForUser(ctx, token(t, client))
		require.NoError(t, err)
		require.Equal(t, "pub@example.com", user.Email())
		require.Equal(t, 1, exec.Count())
	})

	t.Run("falls back to any verified address", func(t *testing.T) {
		t.Parallel()

		exec := routes(map[string]string{
			"/user/emails": `[{"email":"a@example.com","primary":true,"verified":false},{"email":"b@example.com","verified":true}]`,
			"/user":        `{"id":1,"email":null}`,
		})
		client, err := oauth.NewGitHub(testConfig, oauth.WithExecutor(exec))
		require.NoError(t, err)

		user, err := client.ExchangeForUser(ctx, token(t, client))
		require.NoError(t, err)
		require.Equal(t, "b@example.com", user.Email())

		calls := exec.Calls()
		require.Len(t, calls, 2)
		require.Equal(t, "token tok", calls[1].HeaderValue("Authorization"))
	})

	t.Run("no verified address", func(t *testing.T) {
		t.Parallel()

		exec := routes(map[string]string{
			"/user/emails": `[{"email":"a@example.com","primary":true,"verified":false}]`,
			"/user":        `{"id":1}`,
		})
		client, err := oauth.NewGitHub(testConfig, oauth.WithExecutor(exec))
		require.NoError(t, err)

		user, err := client.ExchangeForUser(ctx, token(t, client))
		require.NoError(t, err)
		require.Empty(t, user.Email())
		require.Equal(t, "1", user.UID())
	})

	t.Run("email list errors are classified", func(t *testing.T) {
		t.Parallel()

		exec := newMock(func(req httpx.Request) (int, string) {
			if strings.HasSuffix(req.BaseURL(), "/user/emails") {
				return http.StatusUnauthorized, `{"message":"Bad credentials"}`
			}
			return http.StatusOK, `{"id":1}`
		})
		client, err := oauth.NewGitHub(testConfig, oauth.WithExecutor(exec))
		require.NoError(t, err)

		_, err = client.ExchangeForUser(ctx, token(t, client))
		require.ErrorIs(t, err, oauth.ErrAccessTokenExpired)
	})
}

func TestGitHub_Errors(t *testing.T) {
	t.Parallel()

	ts := newGitHubServer(t)
	client := newGitHubClient(t, ts)
	ctx := context.Background()

	t.Run("bad code", func(t *testing.T) {
		t.Parallel()

		_, err := client.ExchangeForToken(ctx, "nope")
		var pe *oauth.ProviderError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, "bad_verification_code", pe.Code)
		require.Equal(t, "The code passed is incorrect or expired.", pe.Message)
		require.Equal(t, oauth.KindGeneric, pe.Kind)
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Parallel()

		stale := client.Provider().NewToken(tokenData(t, `{"access_token":"revoked"}`))
		_, err := client.ExchangeForUser(ctx, stale)
		require.ErrorIs(t, err, oauth.ErrAccessTokenExpired)
	})
}

func TestGitHub_CustomScopes(t *testing.T) {
	t.Parallel()

	cfg := testConfig
	cfg.Scopes = []string{"repo"}
	client, err := oauth.NewGitHub(cfg)
	require.NoError(t, err)

	raw, err := client.AuthorizeURL("s")
	require.NoError(t, err)
	require.Contains(t, raw, "scope=repo")
	require.NotContains(t, raw, "read%3Auser")

	raw, err = client.AuthorizeURL("s", "gist", "repo")
	require.NoError(t, err)
	require.Contains(t, raw, "scope=gist+repo")
}
