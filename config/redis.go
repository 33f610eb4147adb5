package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	ClusterAddrs []string
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func NewRedisClient(config RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr(),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("Redis connected: %s", pong)

	return rdb, nil
}

func NewRedisCluster(addrs []string, password string) (*redis.ClusterClient, error) {
	rdb := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:    addrs,
		Password: password,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis Cluster: %w", err)
	}
	log.Printf("Redis Cluster connected: %s", pong)

	return rdb, nil
}

// NewUniversalClient returns a cluster client when cluster addresses are
// configured and a single-node client otherwise.
func NewUniversalClient(config RedisConfig) (redis.UniversalClient, error) {
	if len(config.ClusterAddrs) > 0 {
		return NewRedisCluster(config.ClusterAddrs, config.Password)
	}
	return NewRedisClient(config)
}
