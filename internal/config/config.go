package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Store    StoreConfig
	Mail     MailConfig
	Payment  PaymentConfig
	Order    OrderConfig
	Receipt  ReceiptConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Port int
	// WriteTimeout bounds a whole order response, receipt and email included.
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
	// Format is "json" or "console".
	Format string
}

type StoreConfig struct {
	Name          string
	Currency      string
	Locale        string
	MerchantEmail string
	PublicBaseURL string
}

// MailConfig describes the outbound SMTP relay. An empty Host disables
// order confirmation emails; an empty User sends without authentication.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// Secure selects implicit TLS; otherwise STARTTLS is required.
	Secure  bool
	Timeout time.Duration
}

func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != ""
}

type PaymentConfig struct {
	StripeSecretKey          string
	StripeWebhookSecret      string
	CinetPayAPIKey           string
	CinetPaySiteID           string
	MobileMoneyWebhookSecret string
}

type OrderConfig struct {
	TxTimeout           time.Duration
	MaxRetryAttempts    int
	ConfirmationTimeout time.Duration
}

type ReceiptConfig struct {
	// FontPath is an optional TTF font; the core Helvetica font is used when empty.
	FontPath string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "45s")
	viper.SetDefault("DB_DRIVER", DriverMySQL)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "storefront")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "storefront")
	viper.SetDefault("DB_SQLITE_PATH", "storefront.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("STORE_NAME", "MULA")
	viper.SetDefault("STORE_CURRENCY", "XAF")
	viper.SetDefault("STORE_LOCALE", "fr")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("SMTP_SECURE", true)
	viper.SetDefault("SMTP_TIMEOUT", "15s")
	viper.SetDefault("ORDER_TX_TIMEOUT", "5s")
	viper.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("ORDER_CONFIRMATION_TIMEOUT", "30s")
	viper.SetDefault("OTEL_ENABLED", true)

	writeTimeout, err := time.ParseDuration(viper.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_WRITE_TIMEOUT: %w", err)
	}
	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}
	smtpTimeout, err := time.ParseDuration(viper.GetString("SMTP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SMTP_TIMEOUT: %w", err)
	}
	txTimeout, err := time.ParseDuration(viper.GetString("ORDER_TX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_TX_TIMEOUT: %w", err)
	}
	confirmationTimeout, err := time.ParseDuration(viper.GetString("ORDER_CONFIRMATION_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_CONFIRMATION_TIMEOUT: %w", err)
	}

	merchantEmail := viper.GetString("MERCHANT_EMAIL")
	if merchantEmail == "" {
		merchantEmail = viper.GetString("SMTP_USER")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("SERVER_PORT"),
			WriteTimeout: writeTimeout,
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SQLitePath:      viper.GetString("DB_SQLITE_PATH"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: strings.ToLower(viper.GetString("LOG_FORMAT")),
		},
		Store: StoreConfig{
			Name:          viper.GetString("STORE_NAME"),
			Currency:      strings.ToUpper(viper.GetString("STORE_CURRENCY")),
			Locale:        viper.GetString("STORE_LOCALE"),
			MerchantEmail: merchantEmail,
			PublicBaseURL: strings.TrimRight(viper.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Mail: MailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			Secure:   viper.GetBool("SMTP_SECURE"),
			Timeout:  smtpTimeout,
		},
		Payment: PaymentConfig{
			StripeSecretKey:          viper.GetString("STRIPE_SECRET_KEY"),
			StripeWebhookSecret:      viper.GetString("STRIPE_WEBHOOK_SECRET"),
			CinetPayAPIKey:           viper.GetString("CINETPAY_API_KEY"),
			CinetPaySiteID:           viper.GetString("CINETPAY_SITE_ID"),
			MobileMoneyWebhookSecret: viper.GetString("MOBILE_MONEY_WEBHOOK_SECRET"),
		},
		Order: OrderConfig{
			TxTimeout:           txTimeout,
			MaxRetryAttempts:    viper.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
			ConfirmationTimeout: confirmationTimeout,
		},
		Receipt: ReceiptConfig{
			FontPath: viper.GetString("RECEIPT_FONT_PATH"),
		},
		Tracing: TracingConfig{
			Enabled:  viper.GetBool("OTEL_ENABLED"),
			Endpoint: viper.GetString("OTEL_EXPORTER_ENDPOINT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be positive")
	}
	if c.Order.MaxRetryAttempts < 1 {
		return fmt.Errorf("ORDER_MAX_RETRY_ATTEMPTS must be at least 1")
	}
	if len(c.Store.Currency) != 3 {
		return fmt.Errorf("STORE_CURRENCY must be a three-letter code")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}
	if c.Order.ConfirmationTimeout >= c.Server.WriteTimeout {
		return fmt.Errorf("ORDER_CONFIRMATION_TIMEOUT must be shorter than SERVER_WRITE_TIMEOUT")
	}
	if c.Mail.Enabled() && c.Mail.User == "" && c.Store.MerchantEmail == "" {
		return fmt.Errorf("MERCHANT_EMAIL or SMTP_USER is required when SMTP_HOST is set")
	}
	return nil
}
