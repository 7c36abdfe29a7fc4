package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds process settings of the standalone dev server.
type ServerConfig struct {
	HTTPAddr       string        `env:"BLINDMAZE_HTTP_ADDR"       envDefault:":8080"`
	DBPath         string        `env:"BLINDMAZE_DB_PATH"         envDefault:"blindmaze.db"`
	GameConfigPath string        `env:"BLINDMAZE_CONFIG_PATH"     envDefault:"data/blindmaze.json"`
	TicketSecret   string        `env:"BLINDMAZE_TICKET_SECRET"   envDefault:"dev-ticket-secret"`
	TicketIssuer   string        `env:"BLINDMAZE_TICKET_ISSUER"   envDefault:"blindmaze-dev"`
	RequestTimeout time.Duration `env:"BLINDMAZE_REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel       string        `env:"BLINDMAZE_LOG_LEVEL"       envDefault:"info"`
}

// LoadServerConfig reads ServerConfig from environment variables.
func LoadServerConfig() (ServerConfig, error) {
	var c ServerConfig
	if err := env.Parse(&c); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
