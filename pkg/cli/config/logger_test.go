package config_test

import (
	"bytes"
	"testing"

	"github.com/m-mizutani/buildhook/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "Valid level: debug", level: "debug"},
		{name: "Valid level: DEBUG (case insensitive)", level: "DEBUG"},
		{name: "Valid level: info", level: "info"},
		{name: "Valid level: INFO", level: "INFO"},
		{name: "Valid level: warn", level: "warn"},
		{name: "Valid level: WARN", level: "WARN"},
		{name: "Valid level: error", level: "error"},
		{name: "Valid level: ERROR", level: "ERROR"},
		{name: "Invalid level: invalid", level: "invalid", wantErr: true},
		{name: "Invalid level: empty string", level: "", wantErr: true},
		{name: "Invalid level: random", level: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level:  tt.level,
				Format: "console",
			}

			result, err := logger.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.NotNil(t, result)
		})
	}
}

func TestLogger_Configure_Format(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{name: "JSON format", format: "json"},
		{name: "Console format", format: "console"},
		{name: "Default format", format: ""},
		{name: "Unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &config.Logger{
				Level:  "info",
				Format: tt.format,
			}

			result, err := logger.ConfigureWriter(&buf)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)

			result.Info("test log message")
			gt.String(t, buf.String()).Contains("test log message")
		})
	}
}

func TestLogger_Configure_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "info", Format: "json"}

	result, err := logger.ConfigureWriter(&buf)
	gt.NoError(t, err)

	result.Info("config", "server", config.Server{
		Addr:          ":3000",
		WebhookSecret: "very-secret-value",
	})

	gt.String(t, buf.String()).Contains(":3000")
	gt.String(t, buf.String()).NotContains("very-secret-value")
}

func TestLogger_Configure_LevelBehavior(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "warn", Format: "json"}

	result, err := logger.ConfigureWriter(&buf)
	gt.NoError(t, err)

	result.Info("hidden message")
	result.Warn("visible message")

	gt.String(t, buf.String()).NotContains("hidden message")
	gt.String(t, buf.String()).Contains("visible message")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	gt.Number(t, len(flags)).Equal(2)

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		names := flag.Names()
		if len(names) > 0 {
			flagNames[names[0]] = true
		}
	}

	gt.True(t, flagNames["log-level"])
	gt.True(t, flagNames["log-format"])
}
