package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyProfilingDefaults(&cfg.Profiling)
	applyAdminAPIDefaults(&cfg.AdminAPI)
	applyMetricsDefaults(&cfg.Metrics)
	applyHandleDefaults(&cfg.Handles)
	applyTransportDefaults(&cfg.Transport)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	// Note: no defaults for Shares — the operator must configure at least one.
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyAdminAPIDefaults sets admin API server defaults.
func applyAdminAPIDefaults(cfg *AdminAPIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8081
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyHandleDefaults sets handle table / open-file cache defaults.
func applyHandleDefaults(cfg *HandleConfig) {
	if cfg.MaxFileNodesPerSession == 0 {
		cfg.MaxFileNodesPerSession = 1024
	}
	if cfg.MaxCachedOpenNodes == 0 {
		cfg.MaxCachedOpenNodes = 256
	}
	if cfg.MaxSearchesPerSession == 0 {
		cfg.MaxSearchesPerSession = 64
	}
}

// applyTransportDefaults sets the guest transport binding defaults.
func applyTransportDefaults(cfg *TransportConfig) {
	if cfg.Kind == "" {
		cfg.Kind = "unix"
	}
	if cfg.Address == "" {
		cfg.Address = "/run/hgfsd/hgfsd.sock"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied,
// plus one sample share so a freshly scaffolded config is immediately usable
// for manual testing.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Shares: []ShareConfig{
			{
				Name:          "export",
				Root:          "/srv/hgfs/export",
				ReadAllowed:   true,
				WriteAllowed:  true,
				CaseSensitive: true,
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
