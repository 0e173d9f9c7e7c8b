package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://data-argo.ifremer.fr", cfg.GDAC)
	assert.Equal(t, "phy", cfg.Dataset)
	assert.Equal(t, "typed", cfg.Backend)
	assert.Equal(t, 60*time.Second, cfg.APITimeout)
	assert.False(t, cfg.Cache)
	assert.Equal(t, StoreLocal, cfg.Artifacts.Store)
	assert.Equal(t, int64(64<<20), cfg.Limits.MemCacheBytes)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argoindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gdac: /data/gdac
dataset: bgc
cache: true
api_timeout: 5s
artifacts:
  store: redis
  url: redis://localhost:6379/0
log:
  level: debug
`), 0o644))

	t.Setenv("ARGOINDEX_BACKEND", "labeled")
	t.Setenv("ARGOINDEX_ARTIFACTS_TTL", "1h")
	t.Setenv("ARGOINDEX_DATASET", "phy")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dataset", "phy", "")
	flags.String("gdac", "", "")
	require.NoError(t, flags.Parse([]string{"--dataset", "bgc"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "/data/gdac", cfg.GDAC, "an unset flag does not override the file")
	assert.Equal(t, "bgc", cfg.Dataset, "a set flag overrides the environment")
	assert.Equal(t, "labeled", cfg.Backend)
	assert.True(t, cfg.Cache)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, StoreRedis, cfg.Artifacts.Store)
	assert.Equal(t, time.Hour, cfg.Artifacts.TTL)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Artifacts: ArtifactsConfig{Store: StoreLocal}, Log: LogConfig{Level: "info"}}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"local", func(c *Config) {}, true},
		{"memory", func(c *Config) { c.Artifacts.Store = StoreMemory }, true},
		{"redis without url", func(c *Config) { c.Artifacts.Store = StoreRedis }, false},
		{"s3 without bucket", func(c *Config) { c.Artifacts.Store = StoreS3 }, false},
		{"s3", func(c *Config) { c.Artifacts.Store = StoreS3; c.Artifacts.Bucket = "argo" }, true},
		{"minio without endpoint", func(c *Config) { c.Artifacts.Store = StoreMinio; c.Artifacts.Bucket = "argo" }, false},
		{"unknown store", func(c *Config) { c.Artifacts.Store = "gcs" }, false},
		{"lz4 codec", func(c *Config) { c.Artifacts.Codec = "binary+lz4" }, true},
		{"unknown codec", func(c *Config) { c.Artifacts.Codec = "gob" }, false},
		{"json codec", func(c *Config) { c.Artifacts.Codec = "json" }, false},
		{"negative timeout", func(c *Config) { c.APITimeout = -time.Second }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
