package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains client configuration parameters.
type Config struct {
	LogLevel  int       `env:"LOG_LEVEL" envDefault:"0"`
	API       API       `envPrefix:"API_"`
	Storage   Storage   `envPrefix:"STORAGE_"`
	Login     Login     `envPrefix:"LOGIN_"`
	Countdown Countdown `envPrefix:"COUNTDOWN_"`
	JWT       JWT       `envPrefix:"JWT_"`
}

// API contains backend connection parameters.
type API struct {
	BaseURL  string        `env:"BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s" validate:"gt=0"`
	CAFile   string        `env:"CA_FILE"`
	CertFile string        `env:"CERT_FILE" validate:"required_with=KeyFile"`
	KeyFile  string        `env:"KEY_FILE" validate:"required_with=CertFile"`
}

// TLSEnabled reports whether any TLS material is configured.
func (a API) TLSEnabled() bool {
	return a.CAFile != "" || a.CertFile != ""
}

// Storage selects where deadlines and the session are persisted.
type Storage struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite" validate:"oneof=memory sqlite postgres"`
	SQLitePath  string `env:"SQLITE_PATH,expand" envDefault:"${HOME}/.quicklogin/quicklogin.db" validate:"required_if=Driver sqlite"`
	PostgresDSN string `env:"POSTGRES_DSN" validate:"required_if=Driver postgres"`
	Namespace   string `env:"NAMESPACE" envDefault:"default" validate:"required"`
}

// Login contains one-tap login parameters.
type Login struct {
	Provider   string `env:"PROVIDER" envDefault:"weixin" validate:"required"`
	LandingURL string `env:"LANDING_URL" envDefault:"/pages/index/index" validate:"startswith=/"`
}

// Countdown contains countdown storage keys and durations.
type Countdown struct {
	Key            string `env:"KEY" envDefault:"countdown_end_time" validate:"required"`
	SMSKey         string `env:"SMS_KEY" envDefault:"sms_code_countdown" validate:"required,nefield=Key"`
	SMSCooldownSec int    `env:"SMS_COOLDOWN" envDefault:"60" validate:"gt=0"`
}

// JWT contains access token parameters. An empty secret disables
// signature verification; the backend remains the authority.
type JWT struct {
	Secret string `env:"SECRET"`
}

// NewConfig loads configuration from a .env file, if present, and
// environment variables, then validates it.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
