package oauth

import "context"

// Authenticator is the untyped view of a Client, for code that picks a
// provider at runtime.
type Authenticator interface {
	Platform() Platform
	AuthorizeURL(state string, scopes ...string) (string, error)
	ExchangeForToken(ctx context.Context, code string) (Token, error)
	ExchangeCallback(ctx context.Context, cb Callback) (Token, error)
	ExchangeForUser(ctx context.Context, token Token) (User, error)
	Refresh(ctx context.Context, token Token) (Token, error)
	SupportsRefresh() bool
}

// Authenticator returns the untyped view of c.
func (c *Client[T, U]) Authenticator() Authenticator {
	return authenticator[T, U]{c: c}
}

type authenticator[T Token, U User] struct {
	c *Client[T, U]
}

func (a authenticator[T, U]) Platform() Platform    { return a.c.Platform() }
func (a authenticator[T, U]) SupportsRefresh() bool { return a.c.SupportsRefresh() }

func (a authenticator[T, U]) AuthorizeURL(state string, scopes ...string) (string, error) {
	return a.c.AuthorizeURL(state, scopes...)
}

func (a authenticator[T, U]) ExchangeForToken(ctx context.Context, code string) (Token, error) {
	t, err := a.c.ExchangeForToken(ctx, code)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (a authenticator[T, U]) ExchangeCallback(ctx context.Context, cb Callback) (Token, error) {
	t, err := a.c.ExchangeCallback(ctx, cb)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (a authenticator[T, U]) ExchangeForUser(ctx context.Context, token Token) (User, error) {
	t, ok := token.(T)
	if !ok {
		return nil, ErrTokenMismatch
	}
	u, err := a.c.ExchangeForUser(ctx, t)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (a authenticator[T, U]) Refresh(ctx context.Context, token Token) (Token, error) {
	t, ok := token.(T)
	if !ok {
		return nil, ErrTokenMismatch
	}
	next, err := a.c.Refresh(ctx, t)
	if err != nil {
		return nil, err
	}
	return next, nil
}
