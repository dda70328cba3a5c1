package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for MAIL_PROVIDER.
const (
	ProviderMailgun = "mailgun"
	ProviderSES     = "ses"
	ProviderSMTP    = "smtp"
	ProviderLog     = "log"
)

type Config struct {
	Port      string
	GinMode   string
	StaticDir string
	// Mail delivery
	MailProvider    string
	MailFrom        string // Verified sender, always the technical From
	MailTo          string
	ProviderTimeout time.Duration
	// Mailgun
	MailgunAPIKey string
	MailgunDomain string
	MailgunEU     bool // Use the EU API base instead of the US one
	// Amazon SES
	AWSRegion string
	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	// HTTP surface
	AllowedOrigins []string
	MaxBodyBytes   int64
	// Proxies whose X-Forwarded-For is believed. Empty means the socket
	// address is the client IP.
	TrustedProxies []string
	// Rate Limiting Configuration
	RateLimitWindowSeconds int
	RateLimitSendThreshold int
	// Redis (optional, rate limit store)
	RedisURL      string
	RedisPassword string
	// Logging
	LogLevel string
	LogFile  string
}

// LoadConfig reads the environment (and a local .env when present) and
// refuses to return a config that cannot deliver mail.
func LoadConfig() (*Config, error) {
	// .env is only a local convenience; missing file is fine
	_ = godotenv.Load()

	from := strings.TrimSpace(getEnv("MAIL_FROM", ""))

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		StaticDir: getEnv("STATIC_DIR", "public"),
		// Mail delivery
		MailProvider:    strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", ProviderMailgun))),
		MailFrom:        from,
		MailTo:          strings.TrimSpace(getEnv("MAIL_TO", from)),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		// Mailgun
		MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),
		MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
		MailgunEU:     getEnvBool("MAILGUN_EU", false),
		// Amazon SES
		AWSRegion: getEnv("AWS_REGION", ""),
		// SMTP
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		// HTTP surface
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 16*1024)),
		TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
		// Rate Limiting Configuration
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60), // 1 minute window
		RateLimitSendThreshold: getEnvInt("RATE_LIMIT_SEND_THRESHOLD", 5),  // 5 submissions per window
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory store.")
	}

	return cfg, nil
}

// Validate checks the startup preconditions. A config that fails here must
// never serve traffic.
func (c *Config) Validate() error {
	var errs []error

	if c.MailFrom == "" {
		errs = append(errs, errors.New("MAIL_FROM is required"))
	}
	if c.MailTo == "" {
		c.MailTo = c.MailFrom
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must list at least one origin"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", p))
			}
		}
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT_SECONDS must be positive"))
	}

	switch c.MailProvider {
	case ProviderMailgun:
		if c.MailgunAPIKey == "" {
			errs = append(errs, errors.New("MAILGUN_API_KEY is required for the mailgun provider"))
		}
		if c.MailgunDomain == "" {
			errs = append(errs, errors.New("MAILGUN_DOMAIN is required for the mailgun provider"))
		}
	case ProviderSES:
		if c.AWSRegion == "" {
			errs = append(errs, errors.New("AWS_REGION is required for the ses provider"))
		}
	case ProviderSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp provider"))
		}
		if c.SMTPPassword == "" {
			errs = append(errs, errors.New("SMTP_PASSWORD is required for the smtp provider"))
		}
	case ProviderLog:
		// accepts every message without delivering it
		if c.GinMode == "release" {
			errs = append(errs, errors.New("MAIL_PROVIDER=log cannot run with GIN_MODE=release"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
