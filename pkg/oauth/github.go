package oauth

import (
	"context"
	"strings"

	githubOAuth "golang.org/x/oauth2/github"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

// GitHubDefaultScopes returns the default scopes for GitHub OAuth.
func GitHubDefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// GitHubEndpoints are the public GitHub endpoints.
var GitHubEndpoints = Endpoints{
	AuthURL:  githubOAuth.Endpoint.AuthURL,
	TokenURL: githubOAuth.Endpoint.TokenURL,
	APIURL:   "https://api.github.com",
}

// GitHub implements Provider for GitHub OAuth apps.
type GitHub struct {
	authorize httpx.Request
	token     httpx.Request
	user      httpx.Request
	emails    httpx.Request
	scopes    []string
}

// NewGitHub creates a GitHub client.
func NewGitHub(cfg Config, opts ...Option) (*Client[*GitHubToken, *GitHubUser], error) {
	return newClient(cfg, opts, func(cred Credentials, o *options) (Provider[*GitHubToken, *GitHubUser], error) {
		ep := GitHubEndpoints.override(o.endpoints)
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = GitHubDefaultScopes()
		}
		return &GitHub{
			authorize: httpx.Get(ep.AuthURL).
				WithQuery("client_id", cred.ClientID).
				WithQuery("redirect_uri", cred.RedirectURI).
				WithQuery("response_type", "code"),
			token: httpx.Post(ep.TokenURL).
				WithForm("client_id", cred.ClientID).
				WithForm("client_secret", cred.ClientSecret).
				WithForm("redirect_uri", cred.RedirectURI),
			user:   httpx.Get(ep.api("/user")),
			emails: httpx.Get(ep.api("/user/emails")).WithParser(httpx.ParseJSONList),
			scopes: scopes,
		}, nil
	})
}

func (p *GitHub) Platform() Platform { return PlatformGitHub }

func (p *GitHub) AuthorizeRequest(state string, scopes []string) httpx.Request {
	if len(scopes) == 0 {
		scopes = p.scopes
	}
	return p.authorize.
		WithQuery("scope", strings.Join(scopes, " ")).
		WithQuery("state", state)
}

func (p *GitHub) TokenRequest(code string) httpx.Request {
	return p.token.WithForm("code", code)
}

func (p *GitHub) UserRequest(_ context.Context, token *GitHubToken) (httpx.Request, error) {
	return p.user.WithHeader("Authorization", "token "+token.AccessToken()), nil
}

// EnrichUser looks up the primary verified address when the profile has
// no public email. It needs the user:email scope.
func (p *GitHub) EnrichUser(ctx context.Context, exec httpx.Executor, token *GitHubToken, user *GitHubUser) (*GitHubUser, error) {
	if user.Email() != "" {
		return user, nil
	}
	req := p.emails.WithHeader("Authorization", "token "+token.AccessToken())
	data, err := execute(ctx, exec, PlatformGitHub, p.ErrorSpec(), req)
	if err != nil {
		return nil, err
	}
	email := primaryVerifiedEmail(data.Objects(httpx.ListKey))
	if email == "" {
		return user, nil
	}
	return p.NewUser(user.Data().Merge(httpx.NewData(map[string]any{"email": email}))), nil
}

// primaryVerifiedEmail prefers the primary verified address, then any verified one.
func primaryVerifiedEmail(emails []httpx.Data) string {
	for _, e := range emails {
		if e.Bool("primary") && e.Bool("verified") {
			return e.String("email")
		}
	}
	for _, e := range emails {
		if e.Bool("verified") {
			return e.String("email")
		}
	}
	return ""
}

func (p *GitHub) NewToken(data httpx.Data) *GitHubToken { return &GitHubToken{tokenData{data}} }
func (p *GitHub) NewUser(data httpx.Data) *GitHubUser   { return &GitHubUser{userData{data}} }

func (p *GitHub) ErrorSpec() ErrorSpec {
	return ErrorSpec{
		CodeFields:         []string{"error", "message"},
		MessageFields:      []string{"error_description", "message"},
		AccessTokenExpired: CodeIn("Bad credentials"),
	}
}

// GitHubToken is a GitHub OAuth app token. GitHub tokens do not expire.
type GitHubToken struct{ tokenData }

// GitHubUser is the /user profile.
type GitHubUser struct{ userData }

func (u *GitHubUser) UID() string       { return u.data.String("id") }
func (u *GitHubUser) Login() string     { return u.data.String("login") }
func (u *GitHubUser) AvatarURL() string { return u.data.String("avatar_url") }
func (u *GitHubUser) Email() string     { return u.data.String("email") }
func (u *GitHubUser) Gender() Gender    { return GenderUnknown }
func (u *GitHubUser) Bio() string       { return u.data.String("bio") }
func (u *GitHubUser) Blog() string      { return u.data.String("blog") }
func (u *GitHubUser) Location() string  { return u.data.String("location") }
func (u *GitHubUser) HTMLURL() string   { return u.data.String("html_url") }
func (u *GitHubUser) Company() string   { return u.data.String("company") }

// Nickname is the display name, falling back to the login.
func (u *GitHubUser) Nickname() string {
	return u.data.FirstString("name", "login")
}
