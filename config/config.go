package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"financing-ledger/ledger"
)

type Config struct {
	Port     string
	LogLevel string

	DBDriver           string
	DBDSN              string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	DBConnMaxIdleTime  time.Duration
	DBMigrateOnStartup bool

	RedisAddress string
	CacheTTL     time.Duration
	LockTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Ledger                ledger.Config
	LedgerBreakerFailures int
	LedgerBreakerTimeout  time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from the environment, after merging an optional
// .env file in the working directory. Variables already set win over .env.
func Load() Config {
	_ = godotenv.Load()

	ledgerTimeout := durationFromEnv("LEDGER_TIMEOUT_SECONDS", ledger.DefaultTimeout)

	return Config{
		Port:     stringFromEnv("PORT", "8080"),
		LogLevel: stringFromEnv("LOG_LEVEL", "info"),

		DBDriver:           strings.ToLower(stringFromEnv("DB_DRIVER", DriverMemory)),
		DBDSN:              os.Getenv("DB_DSN"),
		DBMaxOpenConns:     intFromEnv("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns:     intFromEnv("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:  durationFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300*time.Second),
		DBConnMaxIdleTime:  durationFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60*time.Second),
		DBMigrateOnStartup: boolFromEnv("DB_MIGRATE", true),

		RedisAddress: os.Getenv("REDIS_ADDRESS"),
		CacheTTL:     durationFromEnv("CACHE_TTL_SECONDS", time.Hour),
		// The lock must outlive the slowest ledger call.
		LockTTL: durationFromEnv("LOCK_TTL_SECONDS", ledgerTimeout+15*time.Second),

		KafkaBrokers: listFromEnv("KAFKA_BROKERS"),
		KafkaTopic:   stringFromEnv("KAFKA_TOPIC", "financing_approved"),

		Ledger: ledger.Config{
			Binary:     stringFromEnv("SOROBAN_BIN", ledger.DefaultBinary),
			ContractID: os.Getenv("LEDGER_CONTRACT_ID"),
			SecretKey:  os.Getenv("STELLAR_SECRET_KEY"),
			Network:    stringFromEnv("LEDGER_NETWORK", ledger.DefaultNetwork),
			Function:   stringFromEnv("LEDGER_FUNCTION", ledger.DefaultFunction),
			ArgName:    stringFromEnv("LEDGER_ARG_NAME", ledger.DefaultArgName),
			Timeout:    ledgerTimeout,
		},
		LedgerBreakerFailures: intFromEnv("LEDGER_BREAKER_FAILURES", 5),
		LedgerBreakerTimeout:  durationFromEnv("LEDGER_BREAKER_TIMEOUT_SECONDS", 60*time.Second),

		RateLimitRequests: intFromEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   durationFromEnv("RATE_LIMIT_WINDOW_SECONDS", time.Minute),
	}
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// durationFromEnv reads a whole number of seconds.
func durationFromEnv(key string, def time.Duration) time.Duration {
	n := intFromEnv(key, -1)
	if n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func listFromEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
