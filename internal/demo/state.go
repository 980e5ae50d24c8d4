package demo

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/cookie"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

const stateCookiePrefix = "oauth_state_"

var (
	ErrStateMissing  = errors.New("demo: state cookie missing")
	ErrStateMismatch = errors.New("demo: state mismatch")
	ErrShortSecret   = errors.New("demo: state secret must be 32+ bytes")
)

// stateStore keeps the CSRF state of a pending login in a signed,
// HttpOnly cookie scoped to the platform routes.
type stateStore struct {
	cookies *cookie.Manager
	ttl     time.Duration
}

func newStateStore(secret string, ttl time.Duration, secure bool) (*stateStore, error) {
	key := []byte(secret)
	switch {
	case secret == "":
		key = make([]byte, cookie.MinSecretLen)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	case len(key) < cookie.MinSecretLen:
		return nil, ErrShortSecret
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &stateStore{
		cookies: cookie.New(cookie.WithSecret(key), cookie.WithSecure(secure)),
		ttl:     ttl,
	}, nil
}

// issue creates a state for p and stores it in the response cookie.
func (s *stateStore) issue(w http.ResponseWriter, p oauth.Platform) (string, error) {
	state := uuid.NewString()
	if err := s.scoped(p).SetSigned(w, stateCookiePrefix+string(p), state, int(s.ttl/time.Second)); err != nil {
		return "", err
	}
	return state, nil
}

// verify checks got against the cookie of p. The cookie is cleared either
// way, so a state is usable once.
func (s *stateStore) verify(w http.ResponseWriter, r *http.Request, p oauth.Platform, got string) error {
	m, name := s.scoped(p), stateCookiePrefix+string(p)
	want, err := m.GetSigned(r, name)
	if errors.Is(err, cookie.ErrNotFound) {
		return ErrStateMissing
	}
	m.Delete(w, name)

	if err != nil || got == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

func (s *stateStore) scoped(p oauth.Platform) *cookie.Manager {
	return s.cookies.At("/oauth/" + string(p))
}
