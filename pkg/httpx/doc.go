// Package httpx provides the HTTP plumbing shared by the OAuth clients:
// immutable request prototypes, a parse-once response data tree and a
// pooled executor.
//
// # Requests
//
// A [Request] is a value. Every With* method returns a new Request and
// leaves the receiver untouched, so a prototype built once at client
// construction can be specialized per call without locking:
//
//	tokenProto := httpx.Post("https://gitee.com/oauth/token").
//		WithForm("grant_type", "authorization_code").
//		WithForm("client_id", id)
//
//	req := tokenProto.WithForm("code", code) // tokenProto is unchanged
//
// A nil value passed to WithQuery, WithForm or WithHeader is skipped, which
// keeps optional parameters free of if-blocks at call sites.
//
// # Responses
//
// Bodies are parsed once, at receipt time, by the [Parser] attached to the
// prototype: [ParseJSON] (default) or [ParseForm] for k=v&k=v bodies.
// The result is a [Data] tree whose accessors never mutate it.
//
// # Executors
//
// [Executor] is the single seam between the OAuth flow and the network.
// [HTTPExecutor] is the built-in implementation; tests use [ExecutorFunc]:
//
//	exec := httpx.ExecutorFunc(func(ctx context.Context, r httpx.Request) (*httpx.Response, error) {
//		return httpx.JSONResponse(http.StatusOK, `{"access_token":"tok"}`)
//	})
//
// No retries are performed. A failed round trip is returned to the caller
// wrapped with [ErrTransport].
package httpx
