// Package config loads dialog.Config from a YAML file, DIALOG_* environment
// variables, and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xraph/dialog"
)

// EnvPrefix prefixes every environment variable, e.g. DIALOG_SECRET.
const EnvPrefix = "DIALOG"

// keys lists every setting with its default.
func keys() map[string]any {
	d := dialog.DefaultConfig()
	return map[string]any{
		"namespace":           d.Namespace,
		"secret":              d.Secret,
		"http_addr":           d.HTTPAddr,
		"hub_url":             d.HubURL,
		"format":              d.Format,
		"list_timeout":        d.ListTimeout,
		"heartbeat_interval":  d.HeartbeatInterval,
		"reconnect_max_delay": d.ReconnectMaxDelay,
		"start_rate_limit":    d.StartRateLimit,
		"start_rate_burst":    d.StartRateBurst,
	}
}

// Load reads the configuration. An empty path searches for dialog.yaml in
// the working directory and ./config and tolerates its absence; an explicit
// path must exist. Flags whose names match a key with dashes for
// underscores (e.g. --http-addr) override file and environment values.
func Load(path string, flags *pflag.FlagSet) (dialog.Config, error) {
	v := viper.New()
	for k, def := range keys() {
		v.SetDefault(k, def)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dialog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return dialog.Config{}, fmt.Errorf("dialog: read config: %w", err)
		}
	}

	if flags != nil {
		for k := range keys() {
			if f := flags.Lookup(strings.ReplaceAll(k, "_", "-")); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return dialog.Config{}, fmt.Errorf("dialog: bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg dialog.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return dialog.Config{}, fmt.Errorf("dialog: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return dialog.Config{}, err
	}
	return cfg, nil
}
