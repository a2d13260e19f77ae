package shared

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreFile  = "file"
	StoreMySQL = "mysql"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	Store          string
	RoomsFile      string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	AMQPURL        string
	RateLimitRPS   int
	Workers        int
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	SessionTTL     time.Duration
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg(".env loaded")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		Store:          env("STORE", StoreFile),
		RoomsFile:      env("ROOMS_FILE", DefaultRoomsFile()),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/rooms?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		AMQPURL:        env("AMQP_URL", ""),
		RateLimitRPS:   atoi("RATE_LIMIT_RPS", 50),
		Workers:        atoi("MIGRATE_WORKERS", 8),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 900)) * time.Second,
	}
	if c.Store != StoreFile && c.Store != StoreMySQL {
		log.Warn().Str("store", c.Store).Msg("unknown STORE, using file")
		c.Store = StoreFile
	}
	return c
}

// DefaultRoomsFile is rooms.json in the user's home directory.
func DefaultRoomsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("home directory unknown, using working directory")
		return "rooms.json"
	}
	return filepath.Join(home, "rooms.json")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
