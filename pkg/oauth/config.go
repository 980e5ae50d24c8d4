package oauth

import "strings"

// Config holds the application credentials registered with a provider.
// The env tags are relative; the registry package adds a per-platform prefix.
type Config struct {
	ClientID     string   `env:"CLIENT_ID"     yaml:"client_id"`
	ClientSecret string   `env:"CLIENT_SECRET" yaml:"client_secret"`
	RedirectURL  string   `env:"REDIRECT_URL"  yaml:"redirect_url"`
	Scopes       []string `env:"SCOPES"        yaml:"scopes"        envSeparator:","`
}

// WeChatWorkConfig extends Config with the agent ID of the corp application.
// ClientID is the corp ID and ClientSecret the application secret.
type WeChatWorkConfig struct {
	Config  `yaml:",inline"`
	AgentID string `env:"AGENT_ID" yaml:"agent_id"`
}

// Credentials is the validated client id, secret and redirect URI triple.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Credentials returns the credential triple of the config.
func (c Config) Credentials() Credentials {
	return Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURL,
	}
}

// IsZero reports whether no client ID is configured.
func (c Config) IsZero() bool {
	return strings.TrimSpace(c.ClientID) == ""
}

// Validate trims all fields and returns the trimmed copy.
// Every field must be non-blank.
func (c Credentials) Validate() (Credentials, error) {
	out := Credentials{
		ClientID:     strings.TrimSpace(c.ClientID),
		ClientSecret: strings.TrimSpace(c.ClientSecret),
		RedirectURI:  strings.TrimSpace(c.RedirectURI),
	}
	if out.ClientID == "" {
		return Credentials{}, ErrMissingClientID
	}
	if out.ClientSecret == "" {
		return Credentials{}, ErrMissingClientSecret
	}
	if out.RedirectURI == "" {
		return Credentials{}, ErrMissingRedirectURI
	}
	return out, nil
}
