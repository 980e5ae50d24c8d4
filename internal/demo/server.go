package demo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/socialauth/pkg/health"
	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

const healthTimeout = 5 * time.Second

// Authenticators is the part of registry.Registry the server uses.
type Authenticators interface {
	Lookup(name string) (oauth.Authenticator, error)
	Platforms() []oauth.Platform
	Healthcheck(ctx context.Context) error
}

type server struct {
	auths  Authenticators
	states *stateStore
	log    *slog.Logger
}

// NewHandler returns the demo routes:
//
//	GET /                          configured platforms
//	GET /healthz                   dependency checks
//	GET /oauth/{platform}/login    redirect to the consent page
//	GET /oauth/{platform}/callback code exchange and profile
func NewHandler(auths Authenticators, cfg Config, log *slog.Logger) (http.Handler, error) {
	states, err := newStateStore(cfg.StateSecret, cfg.StateTTL, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	s := &server{auths: auths, states: states, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.accessLog, middleware.Recoverer)

	r.Get("/", s.index)
	r.Get("/healthz", health.ReadinessHandler(health.Checks{"cache": auths.Healthcheck},
		health.WithTimeout(healthTimeout), health.WithLogger(log)))
	r.Route("/oauth/{platform}", func(r chi.Router) {
		r.Use(s.platform)
		r.Get("/login", s.login)
		r.Get("/callback", s.callback)
	})
	return r, nil
}

// RequestIDExtractor adds the chi request id to log records.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}

type authKey struct{}

func (s *server) platform(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := s.auths.Lookup(chi.URLParam(r, "platform"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		ctx := logger.WithAttrs(r.Context(), slog.String("platform", string(a.Platform())))
		ctx = context.WithValue(ctx, authKey{}, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authFrom(ctx context.Context) oauth.Authenticator {
	a, _ := ctx.Value(authKey{}).(oauth.Authenticator)
	return a
}

func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)))
	})
}

type platformLinks struct {
	Platform string `json:"platform"`
	Login    string `json:"login"`
}

func (s *server) index(w http.ResponseWriter, _ *http.Request) {
	out := make([]platformLinks, 0)
	for _, p := range s.auths.Platforms() {
		out = append(out, platformLinks{Platform: string(p), Login: "/oauth/" + string(p) + "/login"})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	a := authFrom(r.Context())
	state, err := s.states.issue(w, a.Platform())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := a.AuthorizeURL(state, r.URL.Query()["scope"]...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

type tokenInfo struct {
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`
	OpenID      string `json:"openid,omitempty"`
	UnionID     string `json:"unionid,omitempty"`
	Refreshable bool   `json:"refreshable"`
}

type profile struct {
	Platform  string    `json:"platform"`
	UID       string    `json:"uid"`
	Nickname  string    `json:"nickname,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Email     string    `json:"email,omitempty"`
	Gender    string    `json:"gender"`
	Token     tokenInfo `json:"token"`
}

func (s *server) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a := authFrom(ctx)
	cb := oauth.ParseCallback(r.URL.Query())

	if err := s.states.verify(w, r, a.Platform(), cb.State); err != nil {
		s.fail(w, r, err)
		return
	}
	tok, err := a.ExchangeCallback(ctx, cb)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := a.ExchangeForUser(ctx, tok)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.log.InfoContext(ctx, "user signed in", slog.String("uid", user.UID()))
	writeJSON(w, http.StatusOK, profile{
		Platform:  string(a.Platform()),
		UID:       user.UID(),
		Nickname:  user.Nickname(),
		AvatarURL: user.AvatarURL(),
		Email:     user.Email(),
		Gender:    user.Gender().String(),
		Token: tokenInfo{
			ExpiresIn:   tok.ExpiresIn(),
			Scope:       tok.Scope(),
			OpenID:      tok.OpenID(),
			UnionID:     tok.UnionID(),
			Refreshable: a.SupportsRefresh() && tok.RefreshToken() != "",
		},
	})
}

// fail maps err to a status and logs it. Client mistakes log at warn.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "oauth flow failed", slog.Int("status", status), slog.Any("error", err))
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrStateMissing), errors.Is(err, ErrStateMismatch):
		return http.StatusBadRequest
	case errors.Is(err, oauth.ErrUserRefusedAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, oauth.ErrProvider), errors.Is(err, oauth.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
