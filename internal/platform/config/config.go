package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names accepted in STOREFRONT_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const defaultDevSigningKey = "dev-secret-key-change-in-production"

// Server captures process level configuration. Empty connection URLs select
// the in-memory adapters so the service runs with no infrastructure.
type Server struct {
	Addr           string
	Environment    string
	RequestTimeout time.Duration

	Log       LogConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	CORS      CORSConfig
	Scheduler SchedulerConfig
	Currency  CurrencyConfig
	RateLimit RateLimitConfig
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	EmailTopic        string
	ClientID          string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SchedulerConfig struct {
	Enabled bool
}

type CurrencyConfig struct {
	RateCacheTTL time.Duration
}

// RateLimitConfig holds per-client request budgets. Reads are GET, HEAD and
// OPTIONS; everything else counts as a write.
type RateLimitConfig struct {
	Enabled        bool
	ReadPerWindow  int
	WritePerWindow int
	Window         time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return fromLookup(os.Getenv)
}

func fromLookup(get func(string) string) Server {
	env := strings.ToLower(withDefault(get("STOREFRONT_ENV"), EnvDevelopment))

	signingKey := get("JWT_SIGNING_KEY")
	if signingKey == "" && env != EnvProduction {
		// Use a default for development - production refuses to start without one
		signingKey = defaultDevSigningKey
	}

	return Server{
		Addr:           withDefault(get("STOREFRONT_ADDR"), ":8080"),
		Environment:    env,
		RequestTimeout: durationOr(get("REQUEST_TIMEOUT"), 30*time.Second),
		Log: LogConfig{
			Level:  strings.ToLower(withDefault(get("LOG_LEVEL"), "info")),
			Format: strings.ToLower(withDefault(get("LOG_FORMAT"), formatFor(env))),
		},
		Auth: AuthConfig{
			JWTSigningKey: signingKey,
			JWTIssuer:     withDefault(get("JWT_ISSUER"), "storefront"),
			JWTAudience:   withDefault(get("JWT_AUDIENCE"), "storefront-api"),
			TokenTTL:      durationOr(get("JWT_TTL"), time.Hour),
		},
		Database: DatabaseConfig{
			URL:             get("DATABASE_URL"),
			MaxOpenConns:    intOr(get("DATABASE_MAX_OPEN_CONNS"), 25),
			MaxIdleConns:    intOr(get("DATABASE_MAX_IDLE_CONNS"), 5),
			ConnMaxLifetime: durationOr(get("DATABASE_CONN_MAX_LIFETIME"), 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          get("REDIS_URL"),
			PoolSize:     intOr(get("REDIS_POOL_SIZE"), 10),
			MinIdleConns: intOr(get("REDIS_MIN_IDLE_CONNS"), 2),
			DialTimeout:  durationOr(get("REDIS_DIAL_TIMEOUT"), 5*time.Second),
			ReadTimeout:  durationOr(get("REDIS_READ_TIMEOUT"), 3*time.Second),
			WriteTimeout: durationOr(get("REDIS_WRITE_TIMEOUT"), 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(get("KAFKA_BROKERS")),
			NotificationTopic: withDefault(get("KAFKA_NOTIFICATION_TOPIC"), "storefront.notifications"),
			EmailTopic:        withDefault(get("KAFKA_EMAIL_TOPIC"), "storefront.emails"),
			ClientID:          withDefault(get("KAFKA_CLIENT_ID"), "storefront"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitListOr(get("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		},
		Scheduler: SchedulerConfig{
			Enabled: boolOr(get("SCHEDULER_ENABLED"), true),
		},
		Currency: CurrencyConfig{
			RateCacheTTL: durationOr(get("CURRENCY_RATE_TTL"), time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:        boolOr(get("RATE_LIMIT_ENABLED"), true),
			ReadPerWindow:  intOr(get("RATE_LIMIT_READ"), 100),
			WritePerWindow: intOr(get("RATE_LIMIT_WRITE"), 50),
			Window:         durationOr(get("RATE_LIMIT_WINDOW"), time.Minute),
		},
	}
}

// IsProduction reports whether the service runs with production settings.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

func formatFor(env string) string {
	if env == EnvProduction {
		return "json"
	}
	return "text"
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func intOr(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func boolOr(v string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func durationOr(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d < 0 {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitListOr(v string, def []string) []string {
	if out := splitList(v); len(out) > 0 {
		return out
	}
	return def
}
