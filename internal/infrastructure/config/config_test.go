package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("OTP_TTL", "20")
	t.Setenv("PAYMENT_CURRENCY", "usd")
	t.Setenv("READ_TIMEOUT", "not-a-number")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "https://safarsathi.in")
	t.Setenv("DASHBOARD_URL", "https://admin.safarsathi.in")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "USD", cfg.PaymentCurrency)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "https://safarsathi.in,https://admin.safarsathi.in", cfg.AllowedOrigins())
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET_KEY")
}
