package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "oneof")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	require.Error(t, Validate(cfg))
}

func TestValidate_InvalidAdminAPIPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.AdminAPI.Port = 70000 // Out of range

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max")
}

func TestValidate_NegativeMetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = -1

	require.Error(t, Validate(cfg))
}

func TestValidate_NoShares(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Shares = nil

	err := Validate(cfg)
	require.Error(t, err)
	errStr := strings.ToLower(err.Error())
	require.Contains(t, errStr, "shares")
}

func TestValidate_ShareWithNoAccess(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Shares[0].ReadAllowed = false
	cfg.Shares[0].WriteAllowed = false

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, strings.ToLower(err.Error()), "read_allowed")
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	require.Error(t, err)
	errStr := strings.ToLower(err.Error())
	require.True(t, strings.Contains(errStr, "telemetry") || strings.Contains(errStr, "endpoint"))
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.SampleRate = 1.5 // Out of range (should be 0.0-1.0)

	require.Error(t, Validate(cfg))
}

func TestValidate_InvalidTransportKind(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Transport.Kind = "carrier-pigeon"

	require.Error(t, Validate(cfg))
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Validation accepts both uppercase and lowercase log levels.
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		err := Validate(cfg)
		require.NoError(t, err, "level %q should validate", level)

		// Validation should NOT normalize - level should remain as-is.
		require.Equal(t, level, cfg.Logging.Level)
	}

	// Normalization happens in ApplyDefaults, not Validate.
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	require.Equal(t, "INFO", cfg.Logging.Level)
}
