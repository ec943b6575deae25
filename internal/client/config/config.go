// Package config carga la configuración del cliente de terminal.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the identgate terminal client.
//
// Fields:
//   - ServerBaseURL: base URL of the identity service HTTP API.
//   - DeepLinkScheme, DeepLinkHost: expected shape of magic link deep links
//     (Scheme://Host?token=...). Anything else is ignored.
//   - ResendCooldown: minimum wait between magic link resends.
//   - SessionFile: path of the local session store file.
type Config struct {
	ServerBaseURL  string
	DeepLinkScheme string
	DeepLinkHost   string
	ResendCooldown time.Duration
	SessionFile    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080"
	c.DeepLinkScheme = "identgate"
	c.DeepLinkHost = "magic-link"
	c.ResendCooldown = 30 * time.Second
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.SessionFile = home + "/.identgate/session.json"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from environment variables. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	return cfg
}

func parseEnv(cfg *Config) {
	if v := os.Getenv("IDENTITY_SERVICE_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("DEEP_LINK_SCHEME"); v != "" {
		cfg.DeepLinkScheme = v
	}
	if v := os.Getenv("DEEP_LINK_HOST"); v != "" {
		cfg.DeepLinkHost = v
	}
	if v := os.Getenv("RESEND_COOLDOWN_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ResendCooldown = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
}
