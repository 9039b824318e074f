package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

const (
	StorageSupabase = "supabase"
	StorageDisk     = "disk"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string

	JWTSecret    string
	CookieDomain string
	CookieSecure bool

	// Default allowed origins for development plus CORS_ORIGIN and ALLOWED_ORIGINS.
	AllowedOrigins []string

	StorageBackend     string
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string
	UploadDir          string
	PublicBaseURL      string

	AssignmentWebhookURL  string
	AssignmentWebhookKind string

	ExposeErrorCause bool
	GinMode          string
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads the configuration from the environment.
func Load() *Config {
	port := getEnvOrDefault("PORT", "4000")

	return &Config{
		Port: port,

		DBDriver:    getEnvOrDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		CookieSecure: getBoolOrDefault("COOKIE_SECURE", true),

		AllowedOrigins: allowedOrigins(),

		StorageBackend:     getEnvOrDefault("STORAGE_BACKEND", StorageDisk),
		SupabaseURL:        strings.TrimSuffix(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		StorageBucket:      getEnvOrDefault("STORAGE_BUCKET", "curriculum-image"),
		UploadDir:          getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:      strings.TrimSuffix(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),

		AssignmentWebhookURL:  os.Getenv("ASSIGNMENT_WEBHOOK_URL"),
		AssignmentWebhookKind: getEnvOrDefault("ASSIGNMENT_WEBHOOK_KIND", "slack"),

		ExposeErrorCause: getBoolOrDefault("EXPOSE_ERROR_CAUSE", false),
		GinMode:          os.Getenv("GIN_MODE"),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
	}

	switch c.StorageBackend {
	case StorageSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage backend"))
		}
	case StorageDisk:
	default:
		errs = append(errs, errors.New("STORAGE_BACKEND must be supabase or disk"))
	}

	return errors.Join(errs...)
}

func allowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if corsOrigin := strings.TrimSpace(os.Getenv("CORS_ORIGIN")); corsOrigin != "" {
		origins = append(origins, corsOrigin)
	}

	if extra := os.Getenv("ALLOWED_ORIGINS"); extra != "" {
		for _, origin := range strings.Split(extra, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)

	if err != nil {
		return defaultValue
	}

	return parsed
}
