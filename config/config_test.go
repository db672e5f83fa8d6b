package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != dialog.DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
namespace: user-service
secret: s3cret
format: msgpack
list_timeout: 250ms
start_rate_limit: 5
start_rate_burst: 10
`)

	cfg, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Namespace != "user-service" || cfg.Secret != "s3cret" || cfg.Format != "msgpack" {
		t.Errorf("unexpected cfg: %+v", cfg)
	}
	if cfg.ListTimeout != 250*time.Millisecond {
		t.Errorf("ListTimeout = %s", cfg.ListTimeout)
	}
	if cfg.StartRateLimit != 5 || cfg.StartRateBurst != 10 {
		t.Errorf("rate = %v/%d", cfg.StartRateLimit, cfg.StartRateBurst)
	}
	if cfg.HTTPAddr != dialog.DefaultConfig().HTTPAddr {
		t.Errorf("unset keys should keep defaults, HTTPAddr = %q", cfg.HTTPAddr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "namespace: from-file\n")
	t.Setenv("DIALOG_NAMESPACE", "from-env")
	t.Setenv("DIALOG_HEARTBEAT_INTERVAL", "5s")

	cfg, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Namespace != "from-env" {
		t.Errorf("Namespace = %q, want from-env", cfg.Namespace)
	}
	if cfg.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %s", cfg.HeartbeatInterval)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DIALOG_HTTP_ADDR", ":9000")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("http-addr", ":8080", "")
	fs.String("namespace", "default", "")
	if err := fs.Parse([]string{"--http-addr", ":7000"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := config.Load("", fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Errorf("HTTPAddr = %q, want :7000", cfg.HTTPAddr)
	}
	if cfg.Namespace != "default" {
		t.Errorf("unchanged flag should not override, Namespace = %q", cfg.Namespace)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dialog.Config)
		ok     bool
	}{
		{"defaults", func(*dialog.Config) {}, true},
		{"msgpack", func(c *dialog.Config) { c.Format = "msgpack" }, true},
		{"unknown format", func(c *dialog.Config) { c.Format = "xml" }, false},
		{"zero list timeout", func(c *dialog.Config) { c.ListTimeout = 0 }, false},
		{"zero heartbeat", func(c *dialog.Config) { c.HeartbeatInterval = 0 }, false},
		{"zero reconnect delay", func(c *dialog.Config) { c.ReconnectMaxDelay = 0 }, false},
		{"negative rate", func(c *dialog.Config) { c.StartRateLimit = -1 }, false},
		{"rate with burst", func(c *dialog.Config) { c.StartRateLimit = 5; c.StartRateBurst = 2 }, true},
		{"rate without burst", func(c *dialog.Config) { c.StartRateLimit = 5; c.StartRateBurst = 0 }, false},
		{"no rate, no burst", func(c *dialog.Config) { c.StartRateBurst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := dialog.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("expected an error for a missing explicit file")
	}

	path := writeFile(t, "format: xml\n")
	if _, err := config.Load(path, nil); err == nil {
		t.Error("expected a validation error for an unknown format")
	}
}
