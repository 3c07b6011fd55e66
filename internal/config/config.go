package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // report.timezone must resolve on hosts without zoneinfo

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides: SPENDLENS_SERVER__PORT=9090 sets server.port.
const EnvPrefix = "SPENDLENS_"

// Tag definition sources.
const (
	SourceFilesystem = "filesystem"
	SourcePostgres   = "postgres"
	SourceMemory     = "memory"
)

// Config represents the top-level configuration for spendlens.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Tags     TagsConfig     `koanf:"tags"`
	Tagging  TaggingConfig  `koanf:"tagging"`
	Retag    RetagConfig    `koanf:"retag"`
	Report   ReportConfig   `koanf:"report"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

// Addr is host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the Postgres connection settings. An empty DSN keeps
// transactions in memory.
type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

// TagsConfig selects where tag definitions live.
type TagsConfig struct {
	SourceType    string `koanf:"source_type"` // filesystem | postgres | memory
	Dir           string `koanf:"dir"`
	CacheCapacity int    `koanf:"cache_capacity"`
}

type TaggingConfig struct {
	Workers      int  `koanf:"workers"`
	ChunkSize    int  `koanf:"chunk_size"`
	EnforceOrder bool `koanf:"enforce_order"`
}

// RetagConfig controls the periodic full recompute of stored tags.
type RetagConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Interval string `koanf:"interval"` // parsed and validated on startup
}

// IntervalDuration returns the parsed interval. Validate has already checked it.
func (c RetagConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

type ReportConfig struct {
	Timezone string `koanf:"timezone"`
}

// Location loads the configured timezone.
func (c ReportConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug | info | warn | error
	Format string `koanf:"format"` // text | json
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Database.Enabled() {
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	}

	switch c.Tags.SourceType {
	case SourceFilesystem:
		if strings.TrimSpace(c.Tags.Dir) == "" {
			return fmt.Errorf("tags.dir is required")
		}
		if _, err := os.Stat(c.Tags.Dir); err != nil {
			return fmt.Errorf("tags.dir %q is not accessible: %w", c.Tags.Dir, err)
		}
	case SourcePostgres:
		if !c.Database.Enabled() {
			return fmt.Errorf("tags.source_type postgres requires database.dsn")
		}
	case SourceMemory:
	default:
		return fmt.Errorf("unsupported tags.source_type %q", c.Tags.SourceType)
	}
	if c.Tags.CacheCapacity <= 0 {
		return fmt.Errorf("tags.cache_capacity must be > 0")
	}

	if c.Tagging.Workers < 0 {
		return fmt.Errorf("tagging.workers must be >= 0")
	}
	if c.Tagging.ChunkSize < 0 {
		return fmt.Errorf("tagging.chunk_size must be >= 0")
	}

	interval, err := time.ParseDuration(c.Retag.Interval)
	if err != nil {
		return fmt.Errorf("invalid retag.interval %q: %w", c.Retag.Interval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("retag.interval must be > 0")
	}

	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("invalid report.timezone %q: %w", c.Report.Timezone, err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q (must be text or json)", c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Load layers defaults, the YAML file at configPath (optional when empty) and
// SPENDLENS_ environment variables, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 4,
		"server.mode":             "release",
		"database.dsn":            "",
		"database.max_open_conns": 10,
		"database.max_idle_conns": 10,
		"database.auto_migrate":   true,
		"tags.source_type":        SourceFilesystem,
		"tags.dir":                "./tags",
		"tags.cache_capacity":     256,
		"tagging.workers":         4,
		"tagging.chunk_size":      1024,
		"tagging.enforce_order":   true,
		"retag.enabled":           false,
		"retag.interval":          "15m",
		"report.timezone":         "UTC",
		"log.level":               "info",
		"log.format":              "text",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
