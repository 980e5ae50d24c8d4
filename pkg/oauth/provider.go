package oauth

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// Token is an access token issued by a provider.
// Every implementation wraps the parsed token response, available via Data.
type Token interface {
	AccessToken() string
	// ExpiresIn is the access token lifetime in seconds, 0 when unknown.
	ExpiresIn() int64
	RefreshToken() string
	// RefreshExpiresIn is the refresh token lifetime in seconds, 0 when unknown.
	RefreshExpiresIn() int64
	OpenID() string
	UnionID() string
	Scope() string
	Data() httpx.Data
}

// User is the profile of the user who authorized the application.
type User interface {
	// UID is the stable provider-side identifier of the user.
	UID() string
	Nickname() string
	AvatarURL() string
	Email() string
	Gender() Gender
	Data() httpx.Data
}

// Gender as reported by the provider.
type Gender uint8

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// ParseGender maps the many provider encodings onto Gender.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "m", "male", "男":
		return GenderMale
	case "2", "f", "female", "女":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Provider is the set of hooks a provider implements to plug into Client.
// Request hooks receive a fresh copy of the provider's prototype and
// return it with per-call parameters added.
type Provider[T Token, U User] interface {
	Platform() Platform

	// AuthorizeRequest builds the consent page request. Scopes override the defaults when non-empty.
	AuthorizeRequest(state string, scopes []string) httpx.Request

	// TokenRequest builds the authorization code exchange request.
	TokenRequest(code string) httpx.Request

	// UserRequest builds the user profile request.
	UserRequest(ctx context.Context, token T) (httpx.Request, error)

	NewToken(data httpx.Data) T
	NewUser(data httpx.Data) U

	ErrorSpec() ErrorSpec
}

// Refresher is implemented by providers that support the refresh_token grant.
type Refresher[T Token] interface {
	RefreshRequest(token T) httpx.Request
}

// TokenFinisher is implemented by providers needing a second round trip
// after the code exchange to complete the token.
type TokenFinisher[T Token] interface {
	FinishToken(ctx context.Context, exec httpx.Executor, token T) (T, error)
}

// TokenExchanger is implemented by providers that replace the whole code
// exchange step.
type TokenExchanger[T Token] interface {
	ExchangeToken(ctx context.Context, exec httpx.Executor, code string) (T, error)
}

// UserFinisher is implemented by providers whose profile lacks fields
// carried by the token.
type UserFinisher[T Token, U User] interface {
	FinishUser(token T, user U) U
}

// UserEnricher is implemented by providers needing a second round trip
// after the profile request, e.g. GitHub's email list.
type UserEnricher[T Token, U User] interface {
	EnrichUser(ctx context.Context, exec httpx.Executor, token T, user U) (U, error)
}

// errorObserver lets a provider react to errors classified by the client,
// e.g. to drop a cached credential.
type errorObserver interface {
	observeError(ctx context.Context, err *ProviderError)
}
