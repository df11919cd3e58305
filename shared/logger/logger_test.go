package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"lodge/config"
	"lodge/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

// preserve restores the global logger state mutated by a test.
func preserve(t *testing.T) {
	t.Helper()

	original := log.Logger
	level := zerolog.GlobalLevel()
	format := zerolog.TimeFieldFormat

	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = format
	})
}

func TestInitLogger(t *testing.T) {
	preserve(t)

	logger.InitLogger()

	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{input: "debug", want: zerolog.DebugLevel},
		{input: "warn", want: zerolog.WarnLevel},
		{input: "error", want: zerolog.ErrorLevel},
		{input: "disabled", want: zerolog.Disabled},
		{input: "", want: logger.DefaultLevel},
		{input: "loud", want: logger.DefaultLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			preserve(t)

			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.input

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestErrorWithStack(t *testing.T) {
	preserve(t)
	logger.InitLogger()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger.ErrorWithStack(errors.New("exclusion constraint violated"))

	line := map[string]any{}
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "exclusion constraint violated", line["error"])
	assert.NotEmpty(t, line["stack"])
}

func TestSetOutput(t *testing.T) {
	preserve(t)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer

	cfg := &config.Config{}
	cfg.Server.Env = "production"
	cfg.App.Name = "lodge"

	logger.SetOutput(cfg, &buf)
	log.Info().Str("booking_reference", "KL-2024-1234").Msg("booking created")

	line := map[string]any{}
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "lodge", line["app"])
	assert.Equal(t, "KL-2024-1234", line["booking_reference"])
	assert.Equal(t, "booking created", line["message"])
}

func TestSetOutputKeepsConsoleInDevelopment(t *testing.T) {
	preserve(t)

	var buf bytes.Buffer

	cfg := &config.Config{}
	cfg.Server.Env = "development"

	logger.SetOutput(cfg, &buf)
	log.Info().Msg("still console")

	assert.Empty(t, buf.String())
}
