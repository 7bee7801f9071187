package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"reset-recovery-backend/internal/apperr"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	HTTPAddr    string
	HTTPH2C     bool
	CORSOrigins []string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// HS256 secret of the identity provider that signs access tokens.
	AuthJWTSecret string
	AuthAudience  string

	AIProvider    string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	AITimeout     time.Duration

	CatalogPath string
	LogLevel    string
}

func Load() *Config {

	// DB_PORT
	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		port = 5432 // fallback
	}

	timeout, err := time.ParseDuration(os.Getenv("AI_TIMEOUT"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	h2c, _ := strconv.ParseBool(os.Getenv("HTTP_H2C"))

	return &Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		HTTPH2C:     h2c,
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "*")),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     port,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envOr("DB_SSLMODE", "disable"),

		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		AuthAudience:  os.Getenv("AUTH_AUDIENCE"),

		AIProvider:    strings.ToLower(envOr("AI_PROVIDER", ProviderOpenAI)),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:     timeout,

		CatalogPath: os.Getenv("CATALOG_PATH"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}
}

// ValidateDB checks only the settings needed to reach the database (used by `migrate`).
func (c *Config) ValidateDB() error {
	var problems []string
	if c.DBHost == "" {
		problems = append(problems, "DB_HOST is required")
	}
	if c.DBUser == "" {
		problems = append(problems, "DB_USER is required")
	}
	if c.DBName == "" {
		problems = append(problems, "DB_NAME is required")
	}
	if len(problems) > 0 {
		return apperr.Configuration(problems)
	}
	return nil
}

// Validate reports every missing credential at once. The server must not
// start when it fails.
func (c *Config) Validate() error {
	var problems []string
	if err := c.ValidateDB(); err != nil {
		problems = append(problems, strings.TrimPrefix(err.Error(), "invalid configuration: "))
	}
	if c.AuthJWTSecret == "" {
		problems = append(problems, "AUTH_JWT_SECRET is required")
	}
	switch c.AIProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			problems = append(problems, "GEMINI_API_KEY is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("AI_PROVIDER %q is not supported", c.AIProvider))
	}
	if len(problems) > 0 {
		return apperr.Configuration(problems)
	}
	return nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
