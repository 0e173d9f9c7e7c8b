// Package config loads argoindex settings from a YAML file, ARGOINDEX_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/codec"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ARGOINDEX_GDAC or
// ARGOINDEX_ARTIFACTS_STORE.
const EnvPrefix = "ARGOINDEX"

// Artifact store kinds.
const (
	StoreLocal  = "local"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreS3     = "s3"
	StoreMinio  = "minio"
)

// Config is the full application configuration.
type Config struct {
	GDAC       string        `mapstructure:"gdac"`
	Dataset    string        `mapstructure:"dataset"`
	IndexFile  string        `mapstructure:"index_file"`
	Backend    string        `mapstructure:"backend"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
	Cache      bool          `mapstructure:"cache"`
	CacheDir   string        `mapstructure:"cachedir"`

	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Log       LogConfig       `mapstructure:"log"`
}

// ArtifactsConfig selects where search results and frames are cached.
type ArtifactsConfig struct {
	// Store is one of local, memory, redis, s3 or minio.
	Store string `mapstructure:"store"`
	// Codec names the artifact encoding: binary, binary+lz4 or
	// binary+zstd. Empty means binary+zstd.
	Codec string `mapstructure:"codec"`
	// URL is the redis URL, e.g. redis://localhost:6379/0.
	URL    string        `mapstructure:"url"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`

	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LimitsConfig bounds remote reads and the raw index cache.
type LimitsConfig struct {
	MaxRequests    int64 `mapstructure:"max_requests"`
	BytesPerSec    int64 `mapstructure:"bytes_per_sec"`
	MemCacheBytes  int64 `mapstructure:"mem_cache_bytes"`
	DiskCacheBytes int64 `mapstructure:"disk_cache_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultCacheDir is ~/.cache/argoindex, or a temp directory when the home
// directory is unknown.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "argoindex")
	}
	return filepath.Join(os.TempDir(), "argoindex")
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("gdac", "https://data-argo.ifremer.fr")
	v.SetDefault("dataset", "phy")
	v.SetDefault("index_file", "")
	v.SetDefault("backend", "typed")
	v.SetDefault("api_timeout", 60*time.Second)
	v.SetDefault("cache", false)
	v.SetDefault("cachedir", DefaultCacheDir())

	v.SetDefault("artifacts.store", StoreLocal)
	v.SetDefault("artifacts.codec", codec.Default.Name())
	v.SetDefault("artifacts.url", "")
	v.SetDefault("artifacts.prefix", "argoindex/")
	v.SetDefault("artifacts.ttl", 24*time.Hour)
	v.SetDefault("artifacts.bucket", "")
	v.SetDefault("artifacts.region", "")
	v.SetDefault("artifacts.endpoint", "")
	v.SetDefault("artifacts.access_key", "")
	v.SetDefault("artifacts.secret_key", "")
	v.SetDefault("artifacts.use_ssl", true)

	v.SetDefault("limits.max_requests", 0)
	v.SetDefault("limits.bytes_per_sec", 0)
	v.SetDefault("limits.mem_cache_bytes", 64<<20)
	v.SetDefault("limits.disk_cache_bytes", 1<<30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the configuration. An empty path looks for argoindex.yaml in
// the working directory and in the user config directory; a missing file is
// not an error then. flags may be nil; set flags override every other
// source.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("argoindex")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "argoindex"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be checked by the store itself.
func (c *Config) Validate() error {
	switch c.Artifacts.Store {
	case StoreLocal, StoreMemory:
	case StoreRedis:
		if c.Artifacts.URL == "" {
			return errors.New("config: artifacts.url is required for the redis store")
		}
	case StoreS3, StoreMinio:
		if c.Artifacts.Bucket == "" {
			return fmt.Errorf("config: artifacts.bucket is required for the %s store", c.Artifacts.Store)
		}
		if c.Artifacts.Store == StoreMinio && c.Artifacts.Endpoint == "" {
			return errors.New("config: artifacts.endpoint is required for the minio store")
		}
	default:
		return fmt.Errorf("config: unknown artifacts.store %q", c.Artifacts.Store)
	}
	if _, err := c.ArtifactCodec(); err != nil {
		return err
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("config: api_timeout %s is negative", c.APITimeout)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return l, nil
}

// ArtifactCodec resolves Artifacts.Codec.
func (c *Config) ArtifactCodec() (codec.Codec, error) {
	if c.Artifacts.Codec == "" {
		return codec.Default, nil
	}
	cd, ok := codec.ByName(c.Artifacts.Codec)
	if !ok || !codec.IsBinary(cd) {
		return nil, fmt.Errorf("config: unsupported artifacts.codec %q", c.Artifacts.Codec)
	}
	return cd, nil
}
