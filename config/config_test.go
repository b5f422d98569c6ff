package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "")
	t.Setenv("AUTH_LOCKOUT_DURATION", "")

	cfg := Load()
	assert.Equal(t, 5, cfg.AuthMaxFailedAttempts)
	assert.Equal(t, 30*time.Minute, cfg.AuthLockoutDuration)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.False(t, cfg.MailSendEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("AUTH_LOCKOUT_DURATION", "5m")
	t.Setenv("MAIL_SEND_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("COOKIE_SAMESITE", "strict")
	t.Setenv("MAILGUN_API_BASE", "https://api.eu.mailgun.net")

	cfg := Load()
	assert.Equal(t, 3, cfg.AuthMaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, cfg.AuthLockoutDuration)
	assert.True(t, cfg.MailSendEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "strict", cfg.CookieSameSite)
	assert.Equal(t, "https://api.eu.mailgun.net", cfg.MailgunAPIBase)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_CONNECT_RETRIES", "many")
	t.Setenv("DB_HEALTH_INTERVAL", "soon")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()
	assert.Equal(t, 5, cfg.DBConnectRetries)
	assert.Equal(t, 30*time.Second, cfg.DBHealthInterval)
	assert.False(t, cfg.CookieSecure)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}
