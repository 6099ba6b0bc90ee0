package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	Storage string
	DB      struct {
		DSN string
	}
	Seed struct {
		Users      int
		Posts      int
		Comments   int
		RandomSeed uint64
	}
	TickerInterval time.Duration
	WS             struct {
		AllowedOrigins []string
		KeepAlive      time.Duration
	}
}

// Load reads config from environment (FEED_ prefix) and optional socialfeed.yaml.
// Values already set on v (e.g. bound cobra flags) take precedence.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("FEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("socialfeed")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage", StorageInMemory)
	v.SetDefault("seed.users", 10)
	v.SetDefault("seed.posts", 20)
	v.SetDefault("seed.comments", 50)
	v.SetDefault("seed.random_seed", 0)
	v.SetDefault("ticker.interval", "30s")
	v.SetDefault("ws.allowed_origins", "http://localhost:3000")
	v.SetDefault("ws.keepalive", "10s")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.Storage = v.GetString("storage")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Seed.Users = v.GetInt("seed.users")
	cfg.Seed.Posts = v.GetInt("seed.posts")
	cfg.Seed.Comments = v.GetInt("seed.comments")
	cfg.Seed.RandomSeed = v.GetUint64("seed.random_seed")
	cfg.WS.AllowedOrigins = splitList(v.GetString("ws.allowed_origins"))

	interval, err := time.ParseDuration(v.GetString("ticker.interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TICKER_INTERVAL: %w", err)
	}
	cfg.TickerInterval = interval

	keepAlive, err := time.ParseDuration(v.GetString("ws.keepalive"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_WS_KEEPALIVE: %w", err)
	}
	cfg.WS.KeepAlive = keepAlive

	switch cfg.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("FEED_DB_DSN is required for postgres storage")
		}
	default:
		return nil, fmt.Errorf("unknown storage %q (in-memory or postgres)", cfg.Storage)
	}
	if cfg.Seed.Users < 0 || cfg.Seed.Posts < 0 || cfg.Seed.Comments < 0 {
		return nil, fmt.Errorf("seed counts must not be negative")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
