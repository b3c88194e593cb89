package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("feeder.target_queue_count", 100)
	v.SetDefault("feeder.max_cycles", 1)
	v.SetDefault("feeder.max_processing_time", "50s")
	v.SetDefault("feeder.inner_scan_batch_size", 50)
	v.SetDefault("feeder.chunk_size", 50)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "feeder")
	v.SetDefault("database.name", "recipefeeder")
	v.SetDefault("database.sslmode", "disable")
	return v
}

func TestNew_AppliesDefaults(t *testing.T) {
	cfg := New(newTestViper())

	assert.Equal(t, 100, cfg.Feeder.TargetQueueCount)
	assert.Equal(t, 1, cfg.Feeder.MaxCycles)
	assert.Equal(t, 50*time.Second, cfg.Feeder.MaxProcessingTime)
	assert.Equal(t, 50, cfg.Feeder.InnerScanBatchSize)
	assert.Equal(t, 50, cfg.Feeder.ChunkSize)
	assert.Equal(t, 0, cfg.Feeder.CheckConcurrency)
}

func TestNew_PanicsOnInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "missing database user", key: "database.user", value: ""},
		{name: "missing database name", key: "database.name", value: ""},
		{name: "bad database port", key: "database.port", value: 99999},
		{name: "zero target", key: "feeder.target_queue_count", value: 0},
		{name: "zero cycles", key: "feeder.max_cycles", value: 0},
		{name: "zero inner batch", key: "feeder.inner_scan_batch_size", value: 0},
		{name: "zero chunk size", key: "feeder.chunk_size", value: 0},
		{name: "negative concurrency", key: "feeder.check_concurrency", value: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper()
			v.Set(tt.key, tt.value)
			assert.Panics(t, func() { New(v) })
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "feeder",
		Password: "secret",
		Name:     "recipes",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=recipes")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestFeederConfig_Validate(t *testing.T) {
	valid := FeederConfig{
		TargetQueueCount:   100,
		MaxCycles:          1,
		MaxProcessingTime:  50 * time.Second,
		InnerScanBatchSize: 50,
		ChunkSize:          50,
	}
	require.NoError(t, valid.Validate())

	negativeBudget := valid
	negativeBudget.MaxProcessingTime = -time.Second
	assert.Error(t, negativeBudget.Validate())
}
