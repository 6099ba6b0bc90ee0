package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StorageInMemory, cfg.Storage)
	assert.Equal(t, 10, cfg.Seed.Users)
	assert.Equal(t, 20, cfg.Seed.Posts)
	assert.Equal(t, 50, cfg.Seed.Comments)
	assert.Equal(t, 30*time.Second, cfg.TickerInterval)
	assert.Equal(t, 10*time.Second, cfg.WS.KeepAlive)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.WS.AllowedOrigins)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("FEED_HTTP_ADDR", ":9000")
	t.Setenv("FEED_TICKER_INTERVAL", "0s")
	t.Setenv("FEED_WS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("FEED_SEED_USERS", "3")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, time.Duration(0), cfg.TickerInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.WS.AllowedOrigins)
	assert.Equal(t, 3, cfg.Seed.Users)
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	t.Setenv("FEED_STORAGE", "postgres")

	v := viper.New()
	v.Set("storage", StorageInMemory)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, StorageInMemory, cfg.Storage)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("FEED_STORAGE", "postgres")

	_, err := Load(nil)
	assert.ErrorContains(t, err, "FEED_DB_DSN")

	t.Setenv("FEED_DB_DSN", "postgres://localhost/feed")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/feed", cfg.DB.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("storage", func(t *testing.T) {
		t.Setenv("FEED_STORAGE", "redis")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "unknown storage")
	})
	t.Run("interval", func(t *testing.T) {
		t.Setenv("FEED_TICKER_INTERVAL", "soon")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "FEED_TICKER_INTERVAL")
	})
	t.Run("seed", func(t *testing.T) {
		t.Setenv("FEED_SEED_POSTS", "-1")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "seed counts")
	})
}
