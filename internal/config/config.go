package config

import "time"

// Default configuration values.
const (
	defaultServiceName     = "curator"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8090
	defaultStorage         = StoragePostgres
	defaultDBHost          = "localhost"
	defaultDBPort          = "5432"
	defaultDBUser          = "postgres"
	defaultDBName          = "curator"
	defaultDBSSLMode       = "disable"
	defaultRedisAddr       = "localhost:6379"
	defaultCacheTTL        = 5 * time.Minute
	defaultSourceTimeout   = 10 * time.Second
	defaultSourceRateLimit = 10.0
	defaultSourceBurst     = 20
	defaultFetchLimit      = 100
	defaultBatchSize       = 10
	defaultContextTTL      = 10 * time.Minute
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

// Storage backend names.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the curator service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Source   SourceConfig   `yaml:"source"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"CURATOR_PORT"     yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"        yaml:"debug"`
	Storage         string        `env:"CURATOR_STORAGE"  yaml:"storage"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     string `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// RedisConfig holds Redis configuration for the config cache.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED"  yaml:"enabled"`
	Addr     string        `env:"REDIS_ADDR"     yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database int           `yaml:"database"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// SourceConfig holds content index client configuration.
type SourceConfig struct {
	BaseURL   string        `env:"SOURCE_BASE_URL" yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

// PipelineConfig holds feed assembly settings.
type PipelineConfig struct {
	FetchLimit int           `yaml:"fetch_limit"`
	BatchSize  int           `yaml:"batch_size"`
	ContextTTL time.Duration `yaml:"context_ttl"`
	UserDID    string        `env:"CURATOR_USER_DID" yaml:"user_did"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL" yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setSourceDefaults(&cfg.Source)
	setPipelineDefaults(&cfg.Pipeline)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Storage == "" {
		s.Storage = defaultStorage
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == "" {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = defaultRedisAddr
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTL
	}
}

func setSourceDefaults(s *SourceConfig) {
	if s.Timeout == 0 {
		s.Timeout = defaultSourceTimeout
	}
	if s.RateLimit == 0 {
		s.RateLimit = defaultSourceRateLimit
	}
	if s.Burst == 0 {
		s.Burst = defaultSourceBurst
	}
}

func setPipelineDefaults(p *PipelineConfig) {
	if p.FetchLimit == 0 {
		p.FetchLimit = defaultFetchLimit
	}
	if p.BatchSize == 0 {
		p.BatchSize = defaultBatchSize
	}
	if p.ContextTTL == 0 {
		p.ContextTTL = defaultContextTTL
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
}
