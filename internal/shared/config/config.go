package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"mindwell-backend/internal/shared/telemetry"
)

// ConfigPathEnvVar points at an optional YAML file. Without it config.yaml or config.yml
// in the working directory is used when present.
const ConfigPathEnvVar = "CONFIG_PATH"

var (
	defaultConfigPaths = []string{"config.yaml", "config.yml"}
	dotenvPaths        = []string{"cmd/.env", ".env"}
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	DatabaseURL        string
	Env                string
	JWTSecret          string
	JWTTTL             time.Duration
	ModelPath          string
	StrictInput        bool
	ChatProvider       string
	ChatModel          string
	GeminiAPIKey       string
	ChatMaxRetries     int
	ChatRetryDelay     time.Duration
	ChatHistoryTurns   int
	ReviewsRecentLimit int
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load layers defaults, the YAML file, .env files and the process environment, later layers winning.
// Keys are the environment variable names; YAML files use them in lower case.
// Malformed values are logged and replaced by their default.
func Load() Config {
	src := layers()

	cfg := Config{
		Port:               src.str("PORT", "8080"),
		CORSAllowOrigin:    src.list("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		ObjectStoreType:    normalizeStoreType(src.str("OBJECT_STORE", "local")),
		LocalStoreDir:      src.str("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          src.str("AWS_REGION", ""),
		S3Bucket:           src.str("S3_BUCKET", ""),
		S3Prefix:           src.str("S3_PREFIX", ""),
		SSEKMSKeyID:        src.str("SSE_KMS_KEY_ID", ""),
		DatabaseURL:        src.str("DATABASE_URL", ""),
		Env:                normalizeEnv(src.str("ENV", "dev")),
		JWTSecret:          src.str("JWT_SECRET", ""),
		JWTTTL:             src.duration("JWT_TTL", 24*time.Hour),
		ModelPath:          src.str("MODEL_PATH", "models/stress_model.json"),
		StrictInput:        src.boolean("ASSESSMENT_STRICT_INPUT", false),
		ChatProvider:       normalizeChatProvider(src.str("CHAT_PROVIDER", "gemini")),
		ChatModel:          src.str("CHAT_MODEL", "gemini-2.5-flash"),
		GeminiAPIKey:       src.str("GEMINI_API_KEY", ""),
		ChatMaxRetries:     src.integer("CHAT_MAX_RETRIES", 3),
		ChatRetryDelay:     src.duration("CHAT_RETRY_DELAY", 12*time.Second),
		ChatHistoryTurns:   src.integer("CHAT_HISTORY_TURNS", 20),
		ReviewsRecentLimit: src.integer("REVIEWS_RECENT_LIMIT", 6),
		GoogleClientID:     src.str("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: src.str("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  src.str("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      src.str("UI_REDIRECT_URL", ""),
	}

	if cfg.Env == "production" {
		for key, val := range map[string]string{"DATABASE_URL": cfg.DatabaseURL, "JWT_SECRET": cfg.JWTSecret} {
			if val == "" {
				telemetry.Warn("config.missing", map[string]any{"key": key, "env": cfg.Env})
			}
		}
	}
	return cfg
}

type source struct {
	k *koanf.Koanf
}

func keyName(envKey string) string { return strings.ToLower(strings.TrimSpace(envKey)) }

// envValue drops blank variables so they do not mask file values.
func envValue(key, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return keyName(key), value
}

func layers() source {
	k := koanf.New(".")
	if path := configFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			telemetry.Warn("config.file_invalid", map[string]any{"path": path, "error": err.Error()})
		}
	}
	for _, path := range dotenvPaths {
		if err := k.Load(dotenvProvider{path: path}, nil); err != nil {
			telemetry.Warn("config.dotenv_invalid", map[string]any{"path": path, "error": err.Error()})
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"error": err.Error()})
	}
	return source{k: k}
}

func configFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (s source) raw(key string) string {
	return strings.TrimSpace(s.k.String(keyName(key)))
}

func (s source) str(key, def string) string {
	if v := s.raw(key); v != "" {
		return v
	}
	return def
}

func (s source) list(key, def string) []string {
	name := keyName(key)
	if _, ok := s.k.Get(name).([]interface{}); ok {
		return compact(s.k.Strings(name))
	}
	return compact(strings.Split(s.str(key, def), ","))
}

func (s source) integer(key string, def int) int {
	raw := s.raw(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		invalid(key, "int", err)
		return def
	}
	return v
}

func (s source) boolean(key string, def bool) bool {
	raw := s.raw(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		invalid(key, "bool", err)
		return def
	}
	return v
}

func (s source) duration(key string, def time.Duration) time.Duration {
	raw := s.raw(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		invalid(key, "duration", err)
		return def
	}
	return v
}

func invalid(key, kind string, err error) {
	telemetry.Warn("config.invalid", map[string]any{"key": key, "type": kind, "error": err.Error()})
}

func compact(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "none", "off":
		return "none"
	default:
		return "local"
	}
}

func normalizeChatProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	default:
		return "none"
	}
}
