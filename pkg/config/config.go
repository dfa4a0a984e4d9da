package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup and passed down
type Config struct {
	Server struct {
		Port      string
		Env       string
		SecretKey string
	}

	Database struct {
		URL      string
		MaxConns int
	}

	Logging struct {
		Level  string
		Format string
	}

	// Reverse-geocoding API
	Geo struct {
		URL     string
		Token   string
		Timeout time.Duration
	}

	// Text-generation API
	AI struct {
		BaseURL        string
		AccountID      string
		Token          string
		Model          string
		Timeout        time.Duration
		ResponseLength int
	}

	// Message lifecycle
	Messages struct {
		TTL              time.Duration
		ProfanityFile    string
		ProfanityEnforce bool
	}

	Cache struct {
		Type        string
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
		RedisURL    string
	}

	Security struct {
		RateLimitPerMinute int
		TrustedProxies     []string
	}

	// Observability and tooling
	Features struct {
		TracingEnabled    bool
		OpenAPISchemaPath string
	}
}

// MissingError lists the required settings that were not provided.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// Load reads the .env file (if any) and the process environment.
// Unset, empty or malformed values fall back to their defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server.Port = env("PORT", "8080", text)
	cfg.Server.Env = env("APP_ENV", "development", text)
	cfg.Server.SecretKey = env("SECRET_KEY", "", text)

	cfg.Database.URL = env("DATABASE_URL", "", text)
	cfg.Database.MaxConns = env("DB_MAX_CONNS", 20, strconv.Atoi)

	cfg.Logging.Level = env("LOG_LEVEL", "info", text)
	cfg.Logging.Format = env("LOG_FORMAT", "json", text)

	cfg.Geo.URL = env("GEO_API", "https://api.geoapify.com/v1/geocode/reverse", text)
	cfg.Geo.Token = env("GEO_TOKEN", "", text)
	cfg.Geo.Timeout = 5 * time.Second

	cfg.AI.BaseURL = env("CF_API_BASE", "https://api.cloudflare.com/client/v4", text)
	cfg.AI.AccountID = env("CF_ACCOUNT_ID", "", text)
	cfg.AI.Token = env("CF_API_TOKEN", "", text)
	cfg.AI.Model = env("CF_MODEL", "@cf/meta/llama-3-8b-instruct", text)
	cfg.AI.Timeout = 30 * time.Second
	cfg.AI.ResponseLength = env("RESPONSE_LENGTH", 50, strconv.Atoi)

	cfg.Messages.TTL = env("MESSAGE_TTL_MINUTES", 525600*time.Minute, inUnits(time.Minute))
	cfg.Messages.ProfanityFile = env("PROFANITY_FILE", "profanity.txt", text)
	cfg.Messages.ProfanityEnforce = env("PROFANITY_ENFORCE", false, strconv.ParseBool)

	cfg.Cache.Type = env("CACHE_TYPE", "memory", text)
	cfg.Cache.TTL = env("CACHE_DEFAULT_TIMEOUT", 86400*time.Second, inUnits(time.Second))
	cfg.Cache.MaxSize = env("CACHE_MAX_SIZE", 1000, strconv.Atoi)
	cfg.Cache.PurgeWindow = env("CACHE_PURGE_WINDOW", 10*time.Minute, time.ParseDuration)
	cfg.Cache.RedisURL = env("REDIS_URL", "localhost:6379", text)

	cfg.Security.RateLimitPerMinute = env("RATE_LIMIT_PER_MINUTE", 10, strconv.Atoi)
	cfg.Security.TrustedProxies = env("TRUSTED_PROXIES", nil, commaList)

	cfg.Features.TracingEnabled = env("TRACING_ENABLED", false, strconv.ParseBool)
	cfg.Features.OpenAPISchemaPath = env("OPENAPI_SCHEMA_PATH", "", text)

	return cfg
}

// Validate reports every required setting that is still empty.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"SECRET_KEY", c.Server.SecretKey},
		{"DATABASE_URL", c.Database.URL},
		{"GEO_TOKEN", c.Geo.Token},
		{"CF_ACCOUNT_ID", c.AI.AccountID},
		{"CF_API_TOKEN", c.AI.Token},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// env parses the variable key, returning def when it is unset, blank or
// does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func text(s string) (string, error) { return s, nil }

// inUnits parses an integer count of unit
func inUnits(unit time.Duration) func(string) (time.Duration, error) {
	return func(s string) (time.Duration, error) {
		n, err := strconv.Atoi(s)
		return time.Duration(n) * unit, err
	}
}

func commaList(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
