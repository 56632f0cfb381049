package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-provided setting for the relay.
// Provider credentials and the state signing secret are required: the
// process refuses to start without them rather than falling back to a
// compiled-in default.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Auth Relay"`
	Env     string `env:"ENV" envDefault:"DEV"`
	Port    string `env:"PORT" envDefault:"3001"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI,required,notEmpty"`
	StateSigningSecret string `env:"STATE_SIGNING_SECRET,required,notEmpty"`

	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	IssuerURL       string        `env:"OIDC_ISSUER" envDefault:"https://accounts.google.com"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return c, nil
}

// ListenAddr returns the address for http.Server, e.g. ":3001".
func (c Config) ListenAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
