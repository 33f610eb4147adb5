package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"stockbook/config"
)

func exerciseKV(t *testing.T, store KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "a", []byte(`[1,2]`)))
	require.NoError(t, store.Set(ctx, "b", []byte(`{}`)))

	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[1,2]`, string(v))

	require.NoError(t, store.Set(ctx, "a", []byte(`[3]`)))
	v, _, err = store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, `[3]`, string(v))

	require.NoError(t, store.Delete(ctx, "a", "b", "never-set"))
	_, ok, err = store.Get(ctx, "b")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Delete(ctx))
	require.NoError(t, store.Ping(ctx))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryKV()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))
}

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	f, err := NewFileKV(path)
	require.NoError(t, err)
	exerciseKV(t, f)
}

func TestFileKV_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	f, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "stockbook_products", []byte(`[{"id":"p1"}]`)))

	reopened, err := NewFileKV(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, "stockbook_products")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"p1"}]`, string(v))

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileKV_Errors(t *testing.T) {
	_, err := NewFileKV("")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = NewFileKV(path)
	require.Error(t, err)
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisKV(rdb)
	defer store.Close()

	exerciseKV(t, store)

	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	got, err := mr.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := Open(config.Config{Store: config.StoreConfig{Backend: "memory"}})
		require.NoError(t, err)
		require.IsType(t, &MemoryKV{}, store)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "s.json")
		store, err := Open(config.Config{Store: config.StoreConfig{Backend: "file", FilePath: path}})
		require.NoError(t, err)
		require.IsType(t, &FileKV{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Config{Store: config.StoreConfig{Backend: "redis"}}
		cfg.Redis.Host, cfg.Redis.Port = mr.Host(), mr.Port()
		store, err := Open(cfg)
		require.NoError(t, err)
		defer store.Close()
		require.IsType(t, &RedisKV{}, store)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		_, err := Open(config.Config{Store: config.StoreConfig{Backend: "postgres"}})
		require.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(config.Config{Store: config.StoreConfig{Backend: "etcd"}})
		require.Error(t, err)
	})
}
