package demo

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/socialauth/pkg/logger"
)

// ErrConfig wraps environment parsing failures.
var ErrConfig = errors.New("demo: invalid config")

// Config configures the demo server. Provider credentials live in
// registry.Config.
type Config struct {
	Addr            string        `env:"DEMO_ADDR"             envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"DEMO_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// StateSecret signs the state cookie. A random secret is generated when
	// empty, which invalidates pending logins on restart.
	StateSecret   string        `env:"DEMO_STATE_SECRET"`
	StateTTL      time.Duration `env:"DEMO_STATE_TTL"        envDefault:"10m"`
	SecureCookies bool          `env:"DEMO_SECURE_COOKIES"`

	Log logger.Config
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}
	return cfg, nil
}
