package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	envPrefix          = "APP__"
	defaultPageSize    = 10
	defaultMaxPageSize = 50
	defaultMetricsPath = "/metrics"
)

var (
	sslModes       = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	secureSSLModes = []string{"require", "verify-ca", "verify-full"}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"text", "json"}
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Log        LogConfig        `koanf:"log"`
	Pagination PaginationConfig `koanf:"pagination"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	Mode    string `koanf:"mode"`
	Timeout string `koanf:"timeout"`
	// TrustRequestID reuses a well-formed X-Request-ID sent by a proxy.
	TrustRequestID bool       `koanf:"trust_request_id"`
	CORS           CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	ExposeHeaders    []string `koanf:"expose_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds database connection settings.
// Driver "memory" keeps all records in process and needs no connection.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// PaginationConfig holds the listing page size defaults.
// Zero values fall back to 10 and 50.
type PaginationConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Load reads the YAML file at configPath, overlays APP__ environment
// variables and validates the result. A double underscore separates levels
// and a single one stays part of the key, so APP__DATABASE__POOL__MAX_IDLE_CONNS
// sets database.pool.max_idle_conns.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
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

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate normalises c in place and reports the first invalid setting.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.Server.validate,
		c.validateDatabase,
		c.Pagination.validate,
		c.Metrics.validate,
		c.Log.validate,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServerConfig) validate() error {
	mode := strings.TrimSpace(s.Mode)
	if !slices.Contains([]string{gin.DebugMode, gin.ReleaseMode, gin.TestMode}, mode) {
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
	s.Mode = mode

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port)
	}

	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		return fmt.Errorf("server.host is required")
	}

	var err error
	if s.Timeout, err = optionalDuration("server.timeout", s.Timeout); err != nil {
		return err
	}
	s.CORS.MaxAge, err = optionalDuration("server.cors.max_age", s.CORS.MaxAge)
	return err
}

func (c *Config) validateDatabase() error {
	db := &c.Database
	switch db.Driver {
	case DriverSQLite:
		db.SQLite.Path = strings.TrimSpace(db.SQLite.Path)
		if db.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
	case DriverPostgres:
		if err := db.Postgres.validate(c.Server.Mode == gin.ReleaseMode); err != nil {
			return err
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q, %q", db.Driver, DriverSQLite, DriverPostgres, DriverMemory)
	}

	var err error
	db.Pool.ConnMaxLifetime, err = optionalDuration("database.pool.conn_max_lifetime", db.Pool.ConnMaxLifetime)
	return err
}

// validate checks the connection fields. Release servers must encrypt
// the connection.
func (p *PostgresConfig) validate(release bool) error {
	p.Host = strings.TrimSpace(p.Host)
	p.User = strings.TrimSpace(p.User)
	p.DBName = strings.TrimSpace(p.DBName)
	p.SSLMode = strings.TrimSpace(p.SSLMode)

	switch {
	case p.Host == "":
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	case p.Port < 1 || p.Port > 65535:
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", p.Port)
	case p.User == "":
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	case p.DBName == "":
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	case !slices.Contains(sslModes, p.SSLMode):
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %s", p.SSLMode, strings.Join(sslModes, ", "))
	case release && !slices.Contains(secureSSLModes, p.SSLMode):
		return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %s", p.SSLMode, gin.ReleaseMode, strings.Join(secureSSLModes, ", "))
	}
	return nil
}

func (p *PaginationConfig) validate() error {
	if p.DefaultPageSize < 0 {
		return fmt.Errorf("invalid pagination.default_page_size %d: must not be negative", p.DefaultPageSize)
	}
	if p.MaxPageSize < 0 {
		return fmt.Errorf("invalid pagination.max_page_size %d: must not be negative", p.MaxPageSize)
	}
	if p.DefaultPageSize == 0 {
		p.DefaultPageSize = defaultPageSize
	}
	if p.MaxPageSize == 0 {
		p.MaxPageSize = defaultMaxPageSize
	}
	if p.DefaultPageSize > p.MaxPageSize {
		return fmt.Errorf("invalid pagination.default_page_size %d: must not exceed pagination.max_page_size %d", p.DefaultPageSize, p.MaxPageSize)
	}
	return nil
}

// validate defaults the path to /metrics. A disabled exporter is not checked.
func (m *MetricsConfig) validate() error {
	if !m.Enabled {
		return nil
	}
	path := strings.TrimSpace(m.Path)
	if path == "" {
		path = defaultMetricsPath
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid metrics.path %q: must start with '/'", m.Path)
	}
	m.Path = path
	return nil
}

func (l *LogConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	if !slices.Contains(logLevels, level) {
		return fmt.Errorf("invalid log.level %q: must be one of %s", l.Level, strings.Join(logLevels, ", "))
	}
	l.Level = level

	format := strings.ToLower(strings.TrimSpace(l.Format))
	if !slices.Contains(logFormats, format) {
		return fmt.Errorf("invalid log.format %q: must be one of %s", l.Format, strings.Join(logFormats, ", "))
	}
	l.Format = format
	return nil
}

// optionalDuration trims raw and, when anything is left, requires a positive
// Go duration. Blank values stay unset.
func optionalDuration(key, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return "", fmt.Errorf("invalid %s %q: must be greater than 0", key, raw)
	}
	return v, nil
}
