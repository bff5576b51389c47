package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestApplyDefaults_AdminAPI(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, 8081, cfg.AdminAPI.Port)
	require.Equal(t, 10*time.Second, cfg.AdminAPI.ReadTimeout)
	require.Equal(t, 10*time.Second, cfg.AdminAPI.WriteTimeout)
	require.Equal(t, 60*time.Second, cfg.AdminAPI.IdleTimeout)
}

func TestApplyDefaults_Handles(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, 1024, cfg.Handles.MaxFileNodesPerSession)
	require.Equal(t, 256, cfg.Handles.MaxCachedOpenNodes)
	require.Equal(t, 64, cfg.Handles.MaxSearchesPerSession)
}

func TestApplyDefaults_Transport(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, "unix", cfg.Transport.Kind)
	require.NotEmpty(t, cfg.Transport.Address)
}

func TestApplyDefaults_Metrics_PortOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	require.Zero(t, cfg.Metrics.Port)

	cfg2 := &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg2)
	require.Equal(t, 9090, cfg2.Metrics.Port)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "debug", Format: "json", Output: "/var/log/hgfsd.log"},
		Handles: HandleConfig{MaxCachedOpenNodes: 10},
	}
	ApplyDefaults(cfg)

	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "/var/log/hgfsd.log", cfg.Logging.Output)
	require.Equal(t, 10, cfg.Handles.MaxCachedOpenNodes)
}

func TestGetDefaultConfig_PassesValidation(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
}
