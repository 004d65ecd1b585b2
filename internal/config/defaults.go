package config

import "time"

// Default values applied when the config file leaves a field empty.
const (
	DefaultUpstreamURL     = "http://50.17.242.174:8122"
	DefaultTimeout         = 5 * time.Second
	DefaultRetryBackoff    = 200 * time.Millisecond
	DefaultPollInterval    = 1000 * time.Millisecond
	DefaultHighlightWindow = 2000 * time.Millisecond
	DefaultCurrency        = "ARS"
	DefaultTimezone        = "America/Argentina/Buenos_Aires"
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8090
	DefaultSQLitePath      = "tablero.db"
	DefaultExportDir       = "export"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"

	DefaultSuccessPath = "$.success"
	DefaultMessagePath = "$.message"
	DefaultRowsPath    = "$.data"
)

// DefaultHiddenColumns are upstream fields the dashboard never shows.
var DefaultHiddenColumns = []string{"PPP1", "Intraday", "PPP2", "PnL-acumulado"}

// DefaultStreams returns the four feeds the upstream host publishes.
func DefaultStreams() []Stream {
	return []Stream{
		{
			Name:       "intraday",
			Title:      "Intraday",
			ErrorTitle: "Estado del mercado",
			Path:       "/get_data_intraday",
			Columns:    "intraday",
			Shape: Shape{
				Rows: "$.data",
				Totals: map[string]string{
					"valuation": `$["Valuacion total"]`,
					"pnl":       `$["PNL total"]`,
				},
			},
		},
		{
			Name:    "last_orders",
			Title:   "Últimas 10 órdenes",
			Path:    "/get_data_ultimas",
			Columns: "last_orders",
		},
		{
			Name:    "crypto",
			Title:   "Tabla Crypto",
			Path:    "/get_data_crypto",
			Columns: "crypto",
			Shape: Shape{
				Rows: "$.data.data",
				Totals: map[string]string{
					"valuation":       `$.data.totales["Valuacion total"]`,
					"pnl":             `$.data.totales["PnL total"]`,
					"pnl_accumulated": `$.data.totales["PnL acumulado total"]`,
				},
			},
		},
		{
			Name:    "pending",
			Title:   "Tabla de pendientes",
			Path:    "/get_data_pendientes",
			Columns: "pending",
		},
	}
}

var knownPresets = map[string]bool{
	"intraday":    true,
	"last_orders": true,
	"crypto":      true,
	"pending":     true,
}

// applyDefaults fills zero-valued fields. It runs after env overrides so an
// override always wins over a default.
func applyDefaults(cfg *Config) {
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamURL
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultTimeout
	}
	if cfg.Upstream.RetryBackoff == 0 {
		cfg.Upstream.RetryBackoff = DefaultRetryBackoff
	}

	if cfg.Dashboard.PollInterval == 0 {
		cfg.Dashboard.PollInterval = DefaultPollInterval
	}
	if cfg.Dashboard.HighlightWindow == 0 {
		cfg.Dashboard.HighlightWindow = DefaultHighlightWindow
	}
	if cfg.Dashboard.Currency == "" {
		cfg.Dashboard.Currency = DefaultCurrency
	}
	if cfg.Dashboard.Timezone == "" {
		cfg.Dashboard.Timezone = DefaultTimezone
	}
	if cfg.Dashboard.HiddenColumns == nil {
		cfg.Dashboard.HiddenColumns = DefaultHiddenColumns
	}

	if len(cfg.Streams) == 0 {
		cfg.Streams = DefaultStreams()
	}
	for i := range cfg.Streams {
		applyStreamDefaults(&cfg.Streams[i], cfg.Dashboard)
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}

	if cfg.Journal.SQLitePath == "" {
		cfg.Journal.SQLitePath = DefaultSQLitePath
	}
	if cfg.Journal.ExportDir == "" {
		cfg.Journal.ExportDir = DefaultExportDir
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

func applyStreamDefaults(s *Stream, d Dashboard) {
	if s.Title == "" {
		s.Title = s.Name
	}
	if s.Kind == "" {
		s.Kind = "http"
	}
	if s.Columns == "" {
		if knownPresets[s.Name] {
			s.Columns = s.Name
		} else {
			s.Columns = "generic"
		}
	}
	if s.Interval == 0 {
		s.Interval = d.PollInterval
	}
	if s.HiddenColumns == nil {
		s.HiddenColumns = d.HiddenColumns
	}
	if s.Shape.Success == "" {
		s.Shape.Success = DefaultSuccessPath
	}
	if s.Shape.Message == "" {
		s.Shape.Message = DefaultMessagePath
	}
	if s.Shape.Rows == "" {
		s.Shape.Rows = DefaultRowsPath
	}
}
