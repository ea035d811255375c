// Package config lit la configuration du serveur depuis .env et l'environnement.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

type Config struct {
	Port    string
	BaseURL string

	DataBackend       string
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	SupabaseTimeout   time.Duration

	RedisHost     string
	RedisPassword string
	RedisDB       int

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	ImageCDNBase   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	UPIVPA       string
	UPIPayeeName string

	SessionSecret  string
	SessionIdleTTL time.Duration
	CookieSecure   bool
	CORSOrigins    []string

	CatalogCacheTTL time.Duration

	LogLevel  string
	LogFormat string
}

// Load charge .env s'il existe puis construit la configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Info("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		logrus.Info("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration depuis l'environnement courant.
func FromEnv() (*Config, error) {
	var errs []error
	cfg := &Config{
		Port:    getenv("PORT", "8080"),
		BaseURL: getenv("BASE_URL", "http://localhost:8080"),

		DataBackend:       strings.ToLower(getenv("DATA_BACKEND", BackendSupabase)),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		SupabaseTimeout:   duration("SUPABASE_TIMEOUT", 15*time.Second, &errs),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       integer("REDIS_DB", 0, &errs),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "samudra-images"),
		MinioUseSSL:    boolean("MINIO_USE_SSL", false, &errs),
		ImageCDNBase:   getenv("IMAGE_CDN_BASE", "https://images.unsplash.com"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     integer("SMTP_PORT", 587, &errs),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		UPIVPA:       os.Getenv("UPI_VPA"),
		UPIPayeeName: getenv("UPI_PAYEE_NAME", "Samudra Seafood"),

		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionIdleTTL: duration("SESSION_IDLE_TTL", 2*time.Hour, &errs),
		CookieSecure:   boolean("COOKIE_SECURE", false, &errs),
		CORSOrigins:    list("CORS_ORIGINS", []string{"http://localhost:5173"}),

		CatalogCacheTTL: duration("CATALOG_CACHE_TTL", 2*time.Minute, &errs),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
	}

	switch cfg.DataBackend {
	case BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL et SUPABASE_ANON_KEY requis avec DATA_BACKEND=supabase"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("DATA_BACKEND inconnu: %q", cfg.DataBackend))
	}
	if len(cfg.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET manquant ou trop court (32 caractères minimum)"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) RedisEnabled() bool   { return c.RedisHost != "" }
func (c *Config) ElasticEnabled() bool { return c.ElasticURL != "" }
func (c *Config) MinioEnabled() bool   { return c.MinioEndpoint != "" }
func (c *Config) SMTPEnabled() bool    { return c.SMTPHost != "" && c.MailFrom != "" }

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s invalide: %q", key, v))
		return fallback
	}
	return d
}

func integer(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s invalide: %q", key, v))
		return fallback
	}
	return n
}

func boolean(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s invalide: %q", key, v))
		return fallback
	}
	return b
}

func list(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
