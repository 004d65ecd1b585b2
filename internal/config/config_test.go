package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "tablero-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TABLERO_UPSTREAM_URL", "TABLERO_SQLITE_PATH", "TABLERO_PORT", "TABLERO_TIMEZONE",
		"LOG_LEVEL", "ALPACA_BASE_URL", "APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `
upstream:
  base_url: "http://upstream.local:8122"
  timeout: 3s
  retries: 2
dashboard:
  poll_interval: 500ms
  highlight_window: 1500ms
  currency: USD
  hidden_columns: ["PPP1"]
streams:
  - name: intraday
    path: /get_data_intraday
    shape:
      totals:
        valuation: '$["Valuacion total"]'
  - name: extra
    title: Extra
    path: /get_extra
    interval: 2s
server:
  host: "0.0.0.0"
  port: 9000
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Upstream --
	if cfg.Upstream.BaseURL != "http://upstream.local:8122" {
		t.Errorf("Upstream.BaseURL = %q, want %q", cfg.Upstream.BaseURL, "http://upstream.local:8122")
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Errorf("Upstream.Timeout = %v, want %v", cfg.Upstream.Timeout, 3*time.Second)
	}
	if cfg.Upstream.Retries != 2 {
		t.Errorf("Upstream.Retries = %d, want %d", cfg.Upstream.Retries, 2)
	}

	// -- Dashboard --
	if cfg.Dashboard.PollInterval != 500*time.Millisecond {
		t.Errorf("Dashboard.PollInterval = %v, want %v", cfg.Dashboard.PollInterval, 500*time.Millisecond)
	}
	if cfg.Dashboard.HighlightWindow != 1500*time.Millisecond {
		t.Errorf("Dashboard.HighlightWindow = %v, want %v", cfg.Dashboard.HighlightWindow, 1500*time.Millisecond)
	}
	if cfg.Dashboard.Currency != "USD" {
		t.Errorf("Dashboard.Currency = %q, want %q", cfg.Dashboard.Currency, "USD")
	}

	// -- Streams --
	if len(cfg.Streams) != 2 {
		t.Fatalf("len(Streams) = %d, want 2", len(cfg.Streams))
	}
	intraday := cfg.Streams[0]
	if intraday.Columns != "intraday" {
		t.Errorf("intraday.Columns = %q, want %q", intraday.Columns, "intraday")
	}
	if intraday.Interval != 500*time.Millisecond {
		t.Errorf("intraday.Interval = %v, want dashboard poll interval", intraday.Interval)
	}
	if intraday.Shape.Rows != DefaultRowsPath {
		t.Errorf("intraday.Shape.Rows = %q, want %q", intraday.Shape.Rows, DefaultRowsPath)
	}
	if len(intraday.HiddenColumns) != 1 || intraday.HiddenColumns[0] != "PPP1" {
		t.Errorf("intraday.HiddenColumns = %v, want [PPP1]", intraday.HiddenColumns)
	}
	extra := cfg.Streams[1]
	if extra.Columns != "generic" {
		t.Errorf("extra.Columns = %q, want %q", extra.Columns, "generic")
	}
	if extra.Interval != 2*time.Second {
		t.Errorf("extra.Interval = %v, want %v", extra.Interval, 2*time.Second)
	}
	if extra.Kind != "http" {
		t.Errorf("extra.Kind = %q, want %q", extra.Kind, "http")
	}

	// -- Server / Logging --
	if got := cfg.Server.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Server.Addr() = %q, want %q", got, "0.0.0.0:9000")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() returned error: %v", err)
	}

	if cfg.Dashboard.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.Dashboard.PollInterval)
	}
	if cfg.Dashboard.HighlightWindow != 2*time.Second {
		t.Errorf("HighlightWindow = %v, want 2s", cfg.Dashboard.HighlightWindow)
	}

	names := make([]string, 0, len(cfg.Streams))
	for _, s := range cfg.Streams {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != "intraday,last_orders,crypto,pending" {
		t.Errorf("default streams = %q", got)
	}

	crypto, ok := cfg.Stream("crypto")
	if !ok {
		t.Fatal("crypto stream missing")
	}
	if crypto.Shape.Rows != "$.data.data" {
		t.Errorf("crypto rows path = %q, want %q", crypto.Shape.Rows, "$.data.data")
	}
	if crypto.Shape.Totals["pnl"] == "" {
		t.Error("crypto pnl totals path missing")
	}
	if len(crypto.HiddenColumns) != len(DefaultHiddenColumns) {
		t.Errorf("crypto.HiddenColumns = %v, want defaults", crypto.HiddenColumns)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `
upstream:
  base_url: "http://yaml.local"
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
`)

	t.Setenv("TABLERO_UPSTREAM_URL", "http://env.local:9")
	t.Setenv("APCA_API_KEY_ID", "env-key")
	t.Setenv("TABLERO_SQLITE_PATH", "/tmp/env.db")
	t.Setenv("TABLERO_PORT", "7001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Upstream.BaseURL != "http://env.local:9" {
		t.Errorf("Upstream.BaseURL = %q, want %q (env override)", cfg.Upstream.BaseURL, "http://env.local:9")
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if !cfg.Journal.Enabled || cfg.Journal.SQLitePath != "/tmp/env.db" {
		t.Errorf("Journal = %+v, want enabled at /tmp/env.db", cfg.Journal)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7001)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad stream name",
			yaml:    "streams:\n  - name: \"Bad Name\"\n    path: /x\n",
			wantErr: "streamname",
		},
		{
			name:    "duplicate stream",
			yaml:    "streams:\n  - name: a\n    path: /x\n  - name: a\n    path: /y\n",
			wantErr: "duplicate stream",
		},
		{
			name:    "missing path",
			yaml:    "streams:\n  - name: a\n",
			wantErr: "path must start with /",
		},
		{
			name:    "unknown kind",
			yaml:    "streams:\n  - name: a\n    kind: ftp\n    path: /x\n",
			wantErr: "oneof",
		},
		{
			name:    "alpaca without credentials",
			yaml:    "streams:\n  - name: a\n    kind: alpaca_positions\n",
			wantErr: "needs alpaca credentials",
		},
		{
			name:    "replay without journal",
			yaml:    "streams:\n  - name: a\n    kind: replay\n",
			wantErr: "journal but it is disabled",
		},
		{
			name:    "all disabled",
			yaml:    "streams:\n  - name: a\n    path: /x\n    disabled: true\n",
			wantErr: "no enabled streams",
		},
		{
			name:    "bad currency",
			yaml:    "dashboard:\n  currency: pesos\n",
			wantErr: "currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() returned nil error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
