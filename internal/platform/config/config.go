package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrupa todo lo que main necesita para arrancar el servicio.
// Todo viene de env; los defaults sirven para modo dev.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Log       LogConfig
	Analytics AnalyticsConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	App    string `env:"APP_NAME" envDefault:"dog-registration"`
}

// AnalyticsConfig configura el envío remoto de eventos.
// Si URL está vacío, los eventos solo quedan en el log en memoria.
type AnalyticsConfig struct {
	URL          string        `env:"ANALYTICS_URL"`
	APIKey       string        `env:"ANALYTICS_API_KEY"`
	APIKeyHeader string        `env:"ANALYTICS_API_KEY_HEADER" envDefault:"X-Api-Key"`
	Timeout      time.Duration `env:"ANALYTICS_TIMEOUT" envDefault:"5s"`
	QueueSize    int           `env:"ANALYTICS_QUEUE_SIZE" envDefault:"256"`
}

func (a AnalyticsConfig) Enabled() bool {
	return strings.TrimSpace(a.URL) != ""
}

// Load lee la configuración desde variables de entorno.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	if c.Analytics.QueueSize <= 0 {
		return fmt.Errorf("config: ANALYTICS_QUEUE_SIZE must be > 0, got %d", c.Analytics.QueueSize)
	}
	if c.Analytics.Timeout <= 0 {
		return fmt.Errorf("config: ANALYTICS_TIMEOUT must be > 0")
	}
	return nil
}
