package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("REDIS_CLUSTER_ADDRS", "")

	cfg := LoadConfig()
	require.Equal(t, "file", cfg.Store.Backend)
	require.Equal(t, "stockbook", cfg.Store.Namespace)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Empty(t, cfg.Redis.ClusterAddrs)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("REDIS_CLUSTER_ADDRS", "a:7000, b:7001,")
	t.Setenv("RATE_LIMIT", "5-S")

	cfg := LoadConfig()
	require.Equal(t, "redis", cfg.Store.Backend)
	require.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	require.Equal(t, []string{"a:7000", "b:7001"}, cfg.Redis.ClusterAddrs)
	require.Equal(t, "5-S", cfg.Server.RateLimit)
}

func TestDBConfig_ConnString(t *testing.T) {
	require.Equal(t, "postgres://x", DBConfig{DSN: "postgres://x", Host: "h", Name: "n"}.ConnString())
	require.Empty(t, DBConfig{}.ConnString())
	require.Contains(t, DBConfig{Host: "db", Port: "5432", User: "u", Name: "stock"}.ConnString(), "dbname=stock")
}
