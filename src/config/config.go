package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory = "memory"
	DriverLocal  = "local"
	DriverS3     = "s3"
)

// StorageConfig describes one named storage backend.
type StorageConfig struct {
	Name     string `mapstructure:"name"`
	Driver   string `mapstructure:"driver"`
	ReadOnly bool   `mapstructure:"read_only"`

	// local
	Root string `mapstructure:"root"`

	// s3
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	Prefix        string `mapstructure:"prefix"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKeyFile string `mapstructure:"secret_key_file"`
	PathStyle     bool   `mapstructure:"path_style"`

	// SecretKey is loaded from SecretKeyFile, never from the config file itself.
	SecretKey string `mapstructure:"-"`
}

// Config holds the server configuration.
type Config struct {
	Port            string          `mapstructure:"port"`
	Environment     string          `mapstructure:"environment"`
	LogLevel        string          `mapstructure:"log_level"`
	EnableCORS      bool            `mapstructure:"enable_cors"`
	CORSOrigins     []string        `mapstructure:"cors_origins"`
	RateLimitPerMin int             `mapstructure:"rate_limit_per_min"`
	MaxUploadMB     int64           `mapstructure:"max_upload_mb"`
	URLExpiry       time.Duration   `mapstructure:"url_expiry"`
	Storages        []StorageConfig `mapstructure:"storages"`

	// StorageProbeSchedule is the cron spec of the storage health probe.
	// Empty disables the probe.
	StorageProbeSchedule string `mapstructure:"storage_probe_schedule"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("rate_limit_per_min", 600)
	v.SetDefault("max_upload_mb", 100)
	v.SetDefault("url_expiry", 15*time.Minute)
	v.SetDefault("storage_probe_schedule", "@every 1m")
}

// LoadConfig reads filemanager.yaml (or the file named by FILEMANAGER_CONFIG)
// and applies FILEMANAGER_* environment overrides. Invalid settings fail fast.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("filemanager")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/nas-filemanager")
	if path := os.Getenv("FILEMANAGER_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FILEMANAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration, fills the default storage and loads
// secrets from their files.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("CRITICAL: port is required")
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("rate_limit_per_min must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}
	c.CORSOrigins = splitOrigins(c.CORSOrigins)

	if len(c.Storages) == 0 {
		c.Storages = []StorageConfig{{Name: "local", Driver: DriverLocal, Root: "./data"}}
	}

	seen := make(map[string]bool, len(c.Storages))
	for i := range c.Storages {
		sc := &c.Storages[i]
		if sc.Name == "" {
			return fmt.Errorf("storages[%d]: name is required", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("storages[%d]: duplicate name %q", i, sc.Name)
		}
		seen[sc.Name] = true

		switch sc.Driver {
		case DriverMemory:
		case DriverLocal:
			if sc.Root == "" {
				return fmt.Errorf("storage %q: root is required for the local driver", sc.Name)
			}
		case DriverS3:
			if sc.Bucket == "" {
				return fmt.Errorf("storage %q: bucket is required for the s3 driver", sc.Name)
			}
			if err := loadStorageSecret(sc); err != nil {
				return err
			}
		default:
			return fmt.Errorf("storage %q: unknown driver %q", sc.Name, sc.Driver)
		}
	}
	return nil
}

// splitOrigins accepts both list values and a single comma separated string.
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
