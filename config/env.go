package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis  RedisConfig
	DB     DBConfig
	Auth   AuthConfig
	Store  StoreConfig
	Server ServerConfig
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// ConnString returns DSN when set, otherwise builds a postgres DSN from the parts.
func (c DBConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Host == "" || c.Name == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

type AuthConfig struct {
	JWTSecret           string
	TokenTTL            time.Duration
	SeedAdminPassword   string
	SeedManagerPassword string
	SeedCashierPassword string
}

// StoreConfig selects the key-value backend behind the entity store:
// file, memory, redis or postgres.
type StoreConfig struct {
	Backend   string
	Namespace string
	FilePath  string
}

type ServerConfig struct {
	HTTPPort  string
	GRPCPort  string
	RateLimit string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		log.Printf("Invalid TOKEN_TTL, falling back to 24h: %v", err)
		ttl = 24 * time.Hour
	}

	return Config{
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			ClusterAddrs: splitList(getEnv("REDIS_CLUSTER_ADDRS", "")),
		},
		DB: DBConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("JWT_SECRET", "stockbook-dev-secret"),
			TokenTTL:            ttl,
			SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", "admin123"),
			SeedManagerPassword: getEnv("SEED_MANAGER_PASSWORD", "manager123"),
			SeedCashierPassword: getEnv("SEED_CASHIER_PASSWORD", "cashier123"),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(getEnv("STORE_BACKEND", "file")),
			Namespace: getEnv("STORE_NAMESPACE", "stockbook"),
			FilePath:  getEnv("STORE_FILE", "data/stockbook.json"),
		},
		Server: ServerConfig{
			HTTPPort:  getEnv("HTTP_PORT", "8080"),
			GRPCPort:  getEnv("GRPC_PORT", "50051"),
			RateLimit: getEnv("RATE_LIMIT", "100-M"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
