// Package oauth implements the OAuth2 authorization code flow for a set of
// open platforms: GitHub, Gitee, OSChina, Baidu, QQ, WeChat (open platform
// and official accounts), WeChat Work, DingTalk, Douyin, Eleme and Google.
//
// Every provider is a [Client] over a [Provider] hook set. The client owns
// the flow (build request, execute, classify the response, wrap it) and the
// provider only says where to send what, and how to read the answer.
//
// # Usage
//
//	client, err := oauth.NewGitHub(oauth.Config{
//		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
//		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/oauth/github/callback",
//	})
//	if err != nil {
//		return err
//	}
//
//	// Redirect the user to the consent page.
//	u, err := client.AuthorizeURL(state)
//
//	// In the callback handler.
//	token, err := client.ExchangeCallback(ctx, oauth.ParseCallback(r.URL.Query()))
//	user, err := client.ExchangeForUser(ctx, token)
//
// Tokens and users keep the raw provider response; use Data for fields
// without a typed accessor.
//
// # Errors
//
// Errors reported by a provider are returned as *ProviderError and match
// ErrProvider with errors.Is. Expired credentials additionally match
// ErrAccessTokenExpired or ErrRefreshTokenExpired:
//
//	user, err := client.ExchangeForUser(ctx, token)
//	if errors.Is(err, oauth.ErrAccessTokenExpired) {
//		token, err = client.Refresh(ctx, token)
//	}
//
// Network failures match ErrTransport. A missing authorization code returns
// ErrUserRefusedAuthorization without any network call.
//
// # Testing
//
// Inject an executor to avoid the network:
//
//	exec := httpx.ExecutorFunc(func(ctx context.Context, req httpx.Request) (*httpx.Response, error) {
//		return httpx.JSONResponse(http.StatusOK, `{"access_token":"tok"}`)
//	})
//	client, err := oauth.NewGitHub(cfg, oauth.WithExecutor(exec))
//
// # Security
//
//   - Always validate the state parameter to prevent CSRF attacks
//   - Use HTTPS redirect URIs in production
//   - Keep client secrets out of source control
package oauth
