package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	ServerPort int

	DatabaseURL string

	JWTSecret      []byte
	TokenTTL       int // seconds
	CSRFTokenTTL   int // seconds
	SessionTimeout int // seconds

	CORSAllowedOrigins []string

	KafkaBrokers []string

	PDFPath     string
	CompanyName string

	LogLevel string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		AppEnv:     EnvDefault("APP_ENV", "development"),
		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: databaseURL(),

		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:       EnvIntDefault("JWT_EXPIRY", 3600),
		CSRFTokenTTL:   EnvIntDefault("CSRF_TOKEN_EXPIRY", 3600),
		SessionTimeout: EnvIntDefault("SESSION_TIMEOUT", 1800),

		CORSAllowedOrigins: CSV(EnvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		PDFPath:     EnvDefault("PDF_PATH", "pdfs"),
		CompanyName: EnvDefault("COMPANY_NAME", "Your Company"),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DATABASE_URL wins; otherwise the DSN is assembled from the DB_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := EnvDefault("DB_HOST", "localhost")
	port := EnvDefault("DB_PORT", "5432")
	user := EnvDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := EnvDefault("DB_NAME", "payroll")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
