package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the tablero dashboard.
type Config struct {
	Upstream  Upstream  `yaml:"upstream"`
	Dashboard Dashboard `yaml:"dashboard"`
	Streams   []Stream  `yaml:"streams" validate:"dive"`
	Server    Server    `yaml:"server"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Journal   Journal   `yaml:"journal"`
	Logging   Logging   `yaml:"logging"`
}

// Upstream describes the market-data host behind every http stream.
type Upstream struct {
	BaseURL         string        `yaml:"base_url" validate:"required,url"`
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	Retries         int           `yaml:"retries" validate:"gte=0,lte=10"`
	RetryBackoff    time.Duration `yaml:"retry_backoff" validate:"gte=0"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min" validate:"gte=0"`
}

// Dashboard holds settings shared by every stream.
type Dashboard struct {
	PollInterval    time.Duration `yaml:"poll_interval" validate:"gt=0"`
	HighlightWindow time.Duration `yaml:"highlight_window" validate:"gt=0"`
	Currency        string        `yaml:"currency" validate:"len=3,uppercase"`
	Timezone        string        `yaml:"timezone"`
	HiddenColumns   []string      `yaml:"hidden_columns"`
}

// Stream configures one independently polled table.
type Stream struct {
	Name          string        `yaml:"name" validate:"required,streamname"`
	Title         string        `yaml:"title"`
	ErrorTitle    string        `yaml:"error_title"`
	Kind          string        `yaml:"kind" validate:"oneof=http alpaca_positions alpaca_orders replay"`
	Path          string        `yaml:"path"`
	Columns       string        `yaml:"columns" validate:"oneof=intraday last_orders crypto pending generic"`
	Interval      time.Duration `yaml:"interval" validate:"gte=0"`
	HiddenColumns []string      `yaml:"hidden_columns"`
	Shape         Shape         `yaml:"shape"`
	Disabled      bool          `yaml:"disabled"`

	// Broker and replay streams only.
	AssetClass string `yaml:"asset_class"`
	Limit      int    `yaml:"limit" validate:"gte=0"`
	From       string `yaml:"from"`
}

// Shape holds the JSONPath expressions that locate the canonical snapshot
// fields inside an upstream payload.
type Shape struct {
	Success string            `yaml:"success"`
	Message string            `yaml:"message"`
	Rows    string            `yaml:"rows"`
	Totals  map[string]string `yaml:"totals"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=0,lte=65535"`
}

// Addr returns host:port for the HTTP listener.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Alpaca holds credentials and endpoints for the Alpaca broker API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
}

// Enabled reports whether credentials are present.
func (a Alpaca) Enabled() bool { return a.APIKey != "" && a.APISecret != "" }

// Journal configures the on-disk poll journal.
type Journal struct {
	Enabled    bool   `yaml:"enabled"`
	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Enabled true"`
	ExportDir  string `yaml:"export_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
	Dir    string `yaml:"dir"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. Empty input yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, as if Parse had been given an
// empty document.
func Default() (*Config, error) {
	return Parse(nil)
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TABLERO_UPSTREAM_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}

	if v := os.Getenv("TABLERO_SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
		cfg.Journal.Enabled = true
	}

	if v := os.Getenv("TABLERO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("TABLERO_TIMEZONE"); v != "" {
		cfg.Dashboard.Timezone = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// Stream returns the stream named name.
func (c *Config) Stream(name string) (Stream, bool) {
	for _, s := range c.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return Stream{}, false
}

// Enabled returns the streams that are not disabled, in configured order.
func (c *Config) Enabled() []Stream {
	out := make([]Stream, 0, len(c.Streams))
	for _, s := range c.Streams {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}
