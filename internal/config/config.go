package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreDriver       string        `mapstructure:"STORE_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`

	RedisHost       string        `mapstructure:"REDIS_HOST"`
	RedisPort       string        `mapstructure:"REDIS_PORT"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	BalanceCacheTTL time.Duration `mapstructure:"BALANCE_CACHE_TTL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	PaymentProvider      string        `mapstructure:"PAYMENT_PROVIDER"`
	RazorpayKeyID        string        `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret    string        `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayBaseURL      string        `mapstructure:"RAZORPAY_BASE_URL"`
	StripeSecretKey      string        `mapstructure:"STRIPE_SECRET_KEY"`
	PaymentSigningSecret string        `mapstructure:"PAYMENT_SIGNING_SECRET"`
	GatewayTimeout       time.Duration `mapstructure:"GATEWAY_TIMEOUT"`

	ReferralFee   string `mapstructure:"REFERRAL_FEE"`
	PlatformFee   string `mapstructure:"PLATFORM_FEE"`
	Currency      string `mapstructure:"CURRENCY"`
	PayoutMinimum string `mapstructure:"PAYOUT_MINIMUM"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORE_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"DB_MAX_IDLE_CONNS", "DB_MAX_OPEN_CONNS", "DB_CONN_MAX_LIFETIME",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "BALANCE_CACHE_TTL",
	"JWT_SECRET", "CORS_ORIGINS",
	"PAYMENT_PROVIDER", "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET", "RAZORPAY_BASE_URL",
	"STRIPE_SECRET_KEY", "PAYMENT_SIGNING_SECRET", "GATEWAY_TIMEOUT",
	"REFERRAL_FEE", "PLATFORM_FEE", "CURRENCY", "PAYOUT_MINIMUM",
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// Load reads .env (if any) and the process environment into a Config.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "medipay")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BALANCE_CACHE_TTL", "5m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("PAYMENT_PROVIDER", "sandbox")
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("REFERRAL_FEE", "150")
	v.SetDefault("PLATFORM_FEE", "40")
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("PAYOUT_MINIMUM", "100")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no sensible default.
func (c *Config) Validate() error {
	if _, _, err := c.Fees(); err != nil {
		return err
	}
	if _, err := decimal.NewFromString(c.PayoutMinimum); err != nil {
		return fmt.Errorf("invalid PAYOUT_MINIMUM %q: %w", c.PayoutMinimum, err)
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.PaymentProvider == "sandbox" {
			return fmt.Errorf("sandbox payment provider is not allowed in production")
		}
	}
	switch c.PaymentProvider {
	case "razorpay":
		if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
		}
	case "stripe":
		if c.StripeSecretKey == "" || c.PaymentSigningSecret == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY and PAYMENT_SIGNING_SECRET are required")
		}
	case "sandbox":
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	return nil
}

// Fees returns the referral fee charged to the patient and the platform cut.
func (c *Config) Fees() (referralFee, platformFee decimal.Decimal, err error) {
	referralFee, err = decimal.NewFromString(c.ReferralFee)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid REFERRAL_FEE %q: %w", c.ReferralFee, err)
	}
	platformFee, err = decimal.NewFromString(c.PlatformFee)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid PLATFORM_FEE %q: %w", c.PlatformFee, err)
	}
	if !referralFee.IsPositive() || platformFee.IsNegative() || platformFee.GreaterThanOrEqual(referralFee) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("platform fee %s must be below referral fee %s", platformFee, referralFee)
	}
	return referralFee, platformFee, nil
}

// MinimumPayout returns the smallest amount a hospital may withdraw.
func (c *Config) MinimumPayout() decimal.Decimal {
	d, err := decimal.NewFromString(c.PayoutMinimum)
	if err != nil {
		return decimal.NewFromInt(100)
	}
	return d
}

// Origins splits CORS_ORIGINS into a list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SigningSecret is the HMAC key used to verify gateway callbacks.
func (c *Config) SigningSecret() string {
	if c.PaymentProvider == "razorpay" {
		return c.RazorpayKeySecret
	}
	if c.PaymentSigningSecret != "" {
		return c.PaymentSigningSecret
	}
	return "sandbox-secret"
}
