package demo

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func issued(t *testing.T, s *stateStore) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	state, err := s.issue(rec, oauth.PlatformQQ)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return state, cookies[0]
}

func verifyWith(s *stateStore, c *http.Cookie, got string) error {
	req := httptest.NewRequest(http.MethodGet, "/oauth/qq/callback", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return s.verify(httptest.NewRecorder(), req, oauth.PlatformQQ, got)
}

func TestStateStore(t *testing.T) {
	t.Parallel()

	s, err := newStateStore(testSecret, time.Minute, true)
	require.NoError(t, err)

	state, c := issued(t, s)
	require.Equal(t, "oauth_state_qq", c.Name)
	require.Equal(t, 60, c.MaxAge)
	require.True(t, c.Secure)
	require.True(t, c.HttpOnly)
	require.Equal(t, "/oauth/qq", c.Path)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.NotContains(t, c.Value, state, "state is encoded, not stored raw")

	require.NoError(t, verifyWith(s, c, state))
	require.ErrorIs(t, verifyWith(s, c, "other"), ErrStateMismatch)
	require.ErrorIs(t, verifyWith(s, c, ""), ErrStateMismatch)
	require.ErrorIs(t, verifyWith(s, nil, state), ErrStateMissing)
}

func TestStateStore_Tampered(t *testing.T) {
	t.Parallel()

	s, err := newStateStore(testSecret, 0, false)
	require.NoError(t, err)
	state, c := issued(t, s)

	value, _, _ := strings.Cut(c.Value, ".")
	forged := *c
	forged.Value = value + "." + strings.Repeat("A", 43)
	require.ErrorIs(t, verifyWith(s, &forged, state), ErrStateMismatch)

	forged.Value = "no-separator"
	require.ErrorIs(t, verifyWith(s, &forged, state), ErrStateMismatch)

	other, err := newStateStore(strings.Repeat("z", 32), 0, false)
	require.NoError(t, err)
	require.ErrorIs(t, verifyWith(other, c, state), ErrStateMismatch)
}

func TestStateStore_ClearsCookie(t *testing.T) {
	t.Parallel()

	s, err := newStateStore(testSecret, 0, false)
	require.NoError(t, err)
	state, c := issued(t, s)

	req := httptest.NewRequest(http.MethodGet, "/oauth/qq/callback", nil)
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	require.ErrorIs(t, s.verify(rec, req, oauth.PlatformQQ, state+"x"), ErrStateMismatch)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Empty(t, cleared[0].Value)
	require.Equal(t, "/oauth/qq", cleared[0].Path)
	require.Negative(t, cleared[0].MaxAge)
}

func TestNewStateStore(t *testing.T) {
	t.Parallel()

	_, err := newStateStore("short", 0, false)
	require.ErrorIs(t, err, ErrShortSecret)

	a, err := newStateStore("", 0, false)
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, a.ttl)
	state, c := issued(t, a)
	require.NoError(t, verifyWith(a, c, state))

	// Generated secrets differ between stores.
	b, err := newStateStore("", 0, false)
	require.NoError(t, err)
	require.ErrorIs(t, verifyWith(b, c, state), ErrStateMismatch)
}
