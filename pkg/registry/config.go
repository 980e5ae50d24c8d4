package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

// EnvPrefix prefixes every environment variable read by LoadEnv,
// e.g. SOCIALAUTH_GITHUB_CLIENT_ID.
const EnvPrefix = "SOCIALAUTH_"

// Config selects a platform and holds the credentials of every platform the
// application may use. Zero values mean library defaults; env tags carry no
// defaults so that an env overlay never clobbers values read from a file.
type Config struct {
	// Platform is the platform served by Selected. Optional.
	Platform string `env:"PLATFORM" yaml:"platform"`

	HTTP  HTTPConfig  `envPrefix:"HTTP_"  yaml:"http"`
	Cache CacheConfig `envPrefix:"CACHE_" yaml:"cache"`

	GitHub     oauth.Config           `envPrefix:"GITHUB_"      yaml:"github"`
	Gitee      oauth.Config           `envPrefix:"GITEE_"       yaml:"gitee"`
	OSChina    oauth.Config           `envPrefix:"OSCHINA_"     yaml:"oschina"`
	Baidu      oauth.Config           `envPrefix:"BAIDU_"       yaml:"baidu"`
	QQ         oauth.Config           `envPrefix:"QQ_"          yaml:"qq"`
	WeChat     oauth.Config           `envPrefix:"WECHAT_"      yaml:"wechat"`
	WeChatMP   oauth.Config           `envPrefix:"WECHAT_MP_"   yaml:"wechat_mp"`
	WeChatWork oauth.WeChatWorkConfig `envPrefix:"WECHAT_WORK_" yaml:"wechat_work"`
	DingTalk   oauth.Config           `envPrefix:"DINGTALK_"    yaml:"dingtalk"`
	Douyin     oauth.Config           `envPrefix:"DOUYIN_"      yaml:"douyin"`
	Eleme      oauth.Config           `envPrefix:"ELEME_"       yaml:"eleme"`
	Google     oauth.Config           `envPrefix:"GOOGLE_"      yaml:"google"`
}

// HTTPConfig tunes the executor shared by all clients.
type HTTPConfig struct {
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT"   yaml:"connect_timeout"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"      yaml:"read_timeout"`
	MaxRequests     int           `env:"MAX_REQUESTS"      yaml:"max_requests"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"    yaml:"max_idle_conns"`
	IdleConnTimeout time.Duration `env:"IDLE_CONN_TIMEOUT" yaml:"idle_conn_timeout"`
	// RetryTimes is accepted for configuration compatibility. Requests are
	// never retried: a token exchange must not be replayed.
	RetryTimes int `env:"RETRY_TIMES" yaml:"retry_times"`
}

// CacheConfig selects the token cache backend. An empty RedisURL means an
// in-process cache.
type CacheConfig struct {
	RedisURL string `env:"REDIS_URL" yaml:"redis_url"`
	Prefix   string `env:"PREFIX"    yaml:"prefix"`
}

// LoadFile reads a YAML config. ${VAR} references are expanded from the
// environment before parsing.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if err := loadFile(&cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv reads the config from SOCIALAUTH_* environment variables.
func LoadEnv() (Config, error) {
	var cfg Config
	if err := loadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path when it is non-empty, then overlays the environment.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadConfig, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
		return errors.Join(ErrParseConfig, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.Join(ErrParseConfig, err)
	}
	return nil
}

// Selected returns the parsed Platform field, or "" when unset.
func (c Config) Selected() (oauth.Platform, error) {
	if strings.TrimSpace(c.Platform) == "" {
		return "", nil
	}
	return oauth.ParsePlatform(c.Platform)
}

// credentials returns the credential section of p.
func (c Config) credentials(p oauth.Platform) oauth.Config {
	switch p {
	case oauth.PlatformGitHub:
		return c.GitHub
	case oauth.PlatformGitee:
		return c.Gitee
	case oauth.PlatformOSChina:
		return c.OSChina
	case oauth.PlatformBaidu:
		return c.Baidu
	case oauth.PlatformQQ:
		return c.QQ
	case oauth.PlatformWeChat:
		return c.WeChat
	case oauth.PlatformWeChatMP:
		return c.WeChatMP
	case oauth.PlatformWeChatWork:
		return c.WeChatWork.Config
	case oauth.PlatformDingTalk:
		return c.DingTalk
	case oauth.PlatformDouyin:
		return c.Douyin
	case oauth.PlatformEleme:
		return c.Eleme
	case oauth.PlatformGoogle:
		return c.Google
	default:
		return oauth.Config{}
	}
}

// Configured lists the platforms with a client id, in oauth.Platforms order.
func (c Config) Configured() []oauth.Platform {
	var out []oauth.Platform
	for _, p := range oauth.Platforms() {
		if !c.credentials(p).IsZero() {
			out = append(out, p)
		}
	}
	return out
}
