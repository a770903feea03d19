package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "development"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.PasswordResetTTL)
	assert.Equal(t, "service-client@respira-care.fr", cfg.SupportEmail)

	pg := cfg.Postgres()
	assert.Equal(t, "respira", pg.DBName)
	assert.EqualValues(t, 10, pg.MaxConns)

	tr := cfg.Tracing()
	assert.Equal(t, "respira-api", tr.ServiceName)
	assert.False(t, tr.Enabled)
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  defaultJWTSecret,
	})

	cfg, err := Load()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "too-short",
	})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_Production_RequiresAIKey(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  strings.Repeat("s", 40),
	})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")

	t.Setenv("AI_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
		want string
	}{
		{"port", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"access expiry", map[string]string{"JWT_ACCESS_TOKEN_EXPIRY": "soon"}, "JWT_ACCESS_TOKEN_EXPIRY"},
		{"rate limit", map[string]string{"FUNCTIONS_RATE_LIMIT_BURST": "0"}, "rate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "development")
			setEnvs(t, tt.envs)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
