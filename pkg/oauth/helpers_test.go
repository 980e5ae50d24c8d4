package oauth_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

var testConfig = oauth.Config{
	ClientID:     "app-id",
	ClientSecret: "app-secret",
	RedirectURL:  "https://app.example.com/oauth/callback",
}

// mockExec answers requests with fn and records them.
type mockExec struct {
	fn    func(req httpx.Request) (int, string)
	calls []httpx.Request
	mu    sync.Mutex
}

func newMock(fn func(req httpx.Request) (int, string)) *mockExec {
	return &mockExec{fn: fn}
}

// routes answers by the suffix of the request base URL.
func routes(m map[string]string) *mockExec {
	return newMock(func(req httpx.Request) (int, string) {
		for suffix, body := range m {
			if strings.HasSuffix(req.BaseURL(), suffix) {
				return http.StatusOK, body
			}
		}
		return http.StatusNotFound, `{}`
	})
}

func (m *mockExec) Execute(_ context.Context, req httpx.Request) (*httpx.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	status, body := m.fn(req)
	return httpx.NewResponse(status, nil, []byte(body), req.Parser())
}

func (m *mockExec) Calls() []httpx.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]httpx.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockExec) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func tokenData(t *testing.T, raw string) httpx.Data {
	t.Helper()
	d, err := httpx.ParseJSON([]byte(raw))
	require.NoError(t, err)
	return d
}
