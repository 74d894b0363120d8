// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// When neither is set the configuration is read from the environment alone,
// which is how container deployments pass the Airtable token.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// ContentPath optionally points at a YAML file with the landing page
	// copy. The embedded default copy is used when empty.
	ContentPath string `yaml:"content_path" env:"CONTENT_PATH"`

	HTTPServer `yaml:"http_server"`

	Airtable  Airtable  `yaml:"airtable"`
	Camp      Camp      `yaml:"camp"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// Airtable locates the external record store. The token and base id are
// secrets and have no defaults.
type Airtable struct {
	BaseURL string        `yaml:"base_url" env:"AIRTABLE_BASE_URL" env-default:"https://api.airtable.com"`
	BaseID  string        `yaml:"base_id"  env:"AIRTABLE_BASE_ID"  env-required:"true"`
	Table   string        `yaml:"table"    env:"AIRTABLE_TABLE"    env-default:"website signups"`
	Token   string        `yaml:"token"    env:"AIRTABLE_TOKEN"    env-required:"true"`
	Timeout time.Duration `yaml:"timeout"  env:"AIRTABLE_TIMEOUT"  env-default:"10s"`
}

// Camp holds the selectable options of the sign-up form and the optional
// follow-up link revealed after a successful registration.
type Camp struct {
	Sessions    []string `yaml:"sessions"      env:"CAMP_SESSIONS" env-separator:";"`
	Grades      []string `yaml:"grades"        env:"CAMP_GRADES"   env-separator:";"`
	FollowUpURL string   `yaml:"follow_up_url" env:"CAMP_FOLLOW_UP_URL"`
}

// Telemetry configures OpenTelemetry tracing. Tracing stays off while
// OTLPEndpoint is empty.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name"  env:"OTEL_SERVICE_NAME" env-default:"camp-signup"`
}

// Catalog returns the session and grade options, falling back to the
// built-in lists for anything left unset.
func (c *Config) Catalog() types.Catalog {
	catalog := types.DefaultCatalog()
	if len(c.Camp.Sessions) > 0 {
		catalog.Sessions = append([]string(nil), c.Camp.Sessions...)
	}
	if len(c.Camp.Grades) > 0 {
		catalog.Grades = append([]string(nil), c.Camp.Grades...)
	}
	return catalog
}

// Load reads the configuration. path wins over CONFIG_PATH; with neither
// set only environment variables are consulted.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config: file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file, then applies env overrides
	// and env-required checks.
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return &cfg, nil
}
