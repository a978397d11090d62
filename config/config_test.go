package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financing-ledger/ledger"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "REDIS_ADDRESS", "KAFKA_BROKERS", "LEDGER_TIMEOUT_SECONDS", "LOCK_TTL_SECONDS", "SOROBAN_BIN", "LEDGER_NETWORK"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, ledger.DefaultBinary, cfg.Ledger.Binary)
	assert.Equal(t, ledger.DefaultNetwork, cfg.Ledger.Network)
	assert.Equal(t, ledger.DefaultTimeout, cfg.Ledger.Timeout)
	assert.Equal(t, ledger.DefaultTimeout+15*time.Second, cfg.LockTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STELLAR_SECRET_KEY", "SSECRET")
	t.Setenv("LEDGER_CONTRACT_ID", "CCONTRACT")
	t.Setenv("LEDGER_TIMEOUT_SECONDS", "10")
	t.Setenv("LOCK_TTL_SECONDS", "")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "SSECRET", cfg.Ledger.SecretKey)
	assert.Equal(t, "CCONTRACT", cfg.Ledger.ContractID)
	assert.Equal(t, 10*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, 25*time.Second, cfg.LockTTL)
	assert.False(t, cfg.DBMigrateOnStartup)
	assert.Equal(t, 60, cfg.RateLimitRequests)
}

func TestOpenDatabase_Memory(t *testing.T) {
	db, err := OpenDatabase(Config{DBDriver: DriverMemory})

	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestOpenDatabase_Errors(t *testing.T) {
	_, err := OpenDatabase(Config{DBDriver: "sqlite"})
	assert.Error(t, err)

	_, err = OpenDatabase(Config{DBDriver: DriverPostgres})
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestConnectRedis_Disabled(t *testing.T) {
	rdb, locker, err := ConnectRedis(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, rdb)
	assert.Nil(t, locker)
}

func TestConnectRedis_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, locker, err := ConnectRedis(context.Background(), mr.Addr())

	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer rdb.Close()
	assert.NotNil(t, locker)
}
