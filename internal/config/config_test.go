package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Order.ConfirmationTimeout)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "XAF", cfg.Store.Currency)
	assert.Equal(t, 3, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.Order.TxTimeout)
	assert.False(t, cfg.Mail.Enabled())
	assert.True(t, cfg.Mail.Secure)
	assert.Equal(t, 465, cfg.Mail.Port)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/shop.db")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "orders@example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_SECURE", "false")
	t.Setenv("STORE_CURRENCY", "xof")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/shop.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Secure)
	assert.Equal(t, "XOF", cfg.Store.Currency)
	assert.Equal(t, "https://shop.example.com", cfg.Store.PublicBaseURL)
	assert.Equal(t, "whsec_test", cfg.Payment.StripeWebhookSecret)
	// merchant address falls back to the relay user
	assert.Equal(t, "orders@example.com", cfg.Store.MerchantEmail)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ORDER_TX_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDER_TX_TIMEOUT")
}

func TestLoad_RelayWithoutCredentials(t *testing.T) {
	t.Setenv("SMTP_HOST", "relay.internal")
	t.Setenv("SMTP_PORT", "25")
	t.Setenv("MERCHANT_EMAIL", "shop@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Mail.Enabled())
	assert.Empty(t, cfg.Mail.User)
	assert.Equal(t, "shop@example.com", cfg.Store.MerchantEmail)
}

func TestLoad_ConfirmationTimeoutOutlastsWriteTimeout(t *testing.T) {
	t.Setenv("ORDER_CONFIRMATION_TIMEOUT", "2m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_WRITE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, WriteTimeout: 45 * time.Second},
			Database: DatabaseConfig{Driver: DriverMySQL},
			Store:    StoreConfig{Currency: "XAF"},
			Order:    OrderConfig{MaxRetryAttempts: 3, ConfirmationTimeout: 30 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mongo" }, wantErr: "DB_DRIVER"},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "SERVER_PORT"},
		{name: "no attempts", mutate: func(c *Config) { c.Order.MaxRetryAttempts = 0 }, wantErr: "ORDER_MAX_RETRY_ATTEMPTS"},
		{name: "bad currency", mutate: func(c *Config) { c.Store.Currency = "FCFA" }, wantErr: "STORE_CURRENCY"},
		{name: "relay without sender", mutate: func(c *Config) { c.Mail.Host = "smtp.example.com" }, wantErr: "MERCHANT_EMAIL"},
		{name: "relay without user", mutate: func(c *Config) {
			c.Mail.Host = "smtp.example.com"
			c.Store.MerchantEmail = "shop@example.com"
		}},
		{name: "no write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = 0 }, wantErr: "SERVER_WRITE_TIMEOUT"},
		{name: "confirmation equals write timeout", mutate: func(c *Config) {
			c.Order.ConfirmationTimeout = c.Server.WriteTimeout
		}, wantErr: "ORDER_CONFIRMATION_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
