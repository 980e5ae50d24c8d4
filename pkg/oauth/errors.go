package oauth

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrMissingRedirectURI is returned when the redirect URI is not provided.
	ErrMissingRedirectURI = errors.New("oauth: missing redirect URI")

	// ErrUnknownPlatform is returned for an unsupported open platform name.
	ErrUnknownPlatform = errors.New("oauth: unknown platform")

	// ErrUserRefusedAuthorization is returned when the redirect carried no
	// authorization code, i.e. the user declined consent.
	ErrUserRefusedAuthorization = errors.New("oauth: user refused authorization")

	// ErrProvider is the parent of every error reported by a provider in its
	// response body. Use errors.As with *ProviderError for details.
	ErrProvider = errors.New("oauth: provider reported an error")

	// ErrAccessTokenExpired is returned when the provider rejects the access
	// token as expired or invalid. Refresh the token if the provider supports it.
	ErrAccessTokenExpired = errors.New("oauth: access token expired")

	// ErrRefreshTokenExpired is returned when the refresh token is no longer
	// accepted. The authorization flow has to be restarted.
	ErrRefreshTokenExpired = errors.New("oauth: refresh token expired")

	// ErrRefreshUnsupported is returned by Refresh for providers without a refresh grant.
	ErrRefreshUnsupported = errors.New("oauth: provider does not support token refresh")

	// ErrMissingRefreshToken is returned by Refresh when the token carries no refresh token.
	ErrMissingRefreshToken = errors.New("oauth: token has no refresh token")

	// ErrTokenMismatch is returned when a token from one provider is passed to another.
	ErrTokenMismatch = errors.New("oauth: token does not belong to this provider")

	// ErrMissingCorpToken is returned when the WeChat Work corp token response
	// carries no access token.
	ErrMissingCorpToken = errors.New("oauth: missing corp access token")

	// ErrNilResponse is returned when an executor returns neither a response nor an error.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrTransport is returned when the HTTP round trip fails.
	// It is the same value as httpx.ErrTransport.
	ErrTransport = httpx.ErrTransport
)

// ErrorKind classifies a provider-reported error.
type ErrorKind uint8

const (
	KindGeneric ErrorKind = iota
	KindAccessTokenExpired
	KindRefreshTokenExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindAccessTokenExpired:
		return "access_token_expired"
	case KindRefreshTokenExpired:
		return "refresh_token_expired"
	default:
		return "generic"
	}
}

// ProviderError is an error the provider reported in its response body.
type ProviderError struct {
	Platform Platform
	Code     string
	Message  string
	Kind     ErrorKind
}

func (e *ProviderError) Error() string {
	if e.Message == "" || e.Message == e.Code {
		return fmt.Sprintf("oauth: %s error %s (%s)", e.Platform, e.Code, e.Kind)
	}
	return fmt.Sprintf("oauth: %s error %s: %s (%s)", e.Platform, e.Code, e.Message, e.Kind)
}

// Unwrap makes errors.Is match ErrProvider and, when classified,
// ErrAccessTokenExpired or ErrRefreshTokenExpired.
func (e *ProviderError) Unwrap() []error {
	switch e.Kind {
	case KindAccessTokenExpired:
		return []error{ErrProvider, ErrAccessTokenExpired}
	case KindRefreshTokenExpired:
		return []error{ErrProvider, ErrRefreshTokenExpired}
	default:
		return []error{ErrProvider}
	}
}

// ErrorSpec tells the client where a provider puts its error code and how
// to classify it. Field names may be dotted paths into nested objects.
type ErrorSpec struct {
	// AccessTokenExpired reports whether code means the access token expired.
	AccessTokenExpired func(code string) bool
	// RefreshTokenExpired reports whether code means the refresh token expired.
	RefreshTokenExpired func(code string) bool
	// CodeFields are tried in order; the first non-empty one is the code.
	CodeFields []string
	// MessageFields are tried in order for the human-readable message.
	MessageFields []string
	// SuccessCodes are codes that mean success (e.g. WeChat errcode 0).
	SuccessCodes []string
}

// Classify inspects a parsed response. It returns nil when the response
// carries no error code, and a *ProviderError otherwise. The access-token
// predicate is consulted before the refresh-token predicate.
func (s ErrorSpec) Classify(p Platform, d httpx.Data) error {
	var code string
	for _, f := range s.CodeFields {
		if v := strings.TrimSpace(d.String(f)); v != "" {
			code = v
			break
		}
	}
	if code == "" || slices.Contains(s.SuccessCodes, code) {
		return nil
	}

	e := &ProviderError{
		Platform: p,
		Code:     code,
		Message:  d.FirstString(s.MessageFields...),
		Kind:     KindGeneric,
	}
	switch {
	case s.AccessTokenExpired != nil && s.AccessTokenExpired(code):
		e.Kind = KindAccessTokenExpired
	case s.RefreshTokenExpired != nil && s.RefreshTokenExpired(code):
		e.Kind = KindRefreshTokenExpired
	}
	return e
}

// CodeIn returns a predicate matching any of the given codes exactly.
func CodeIn(codes ...string) func(string) bool {
	return func(code string) bool {
		return slices.Contains(codes, code)
	}
}

// CodeContains returns a predicate matching codes that contain any of the
// given substrings, case-insensitively.
func CodeContains(subs ...string) func(string) bool {
	return func(code string) bool {
		lc := strings.ToLower(code)
		for _, s := range subs {
			if strings.Contains(lc, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}
}
