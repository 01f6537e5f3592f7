package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Vendor   VendorConfig
	Ingest   IngestConfig
	Redis    RedisConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string // full connection URL, takes precedence when set
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// VendorConfig holds print-vendor API settings
type VendorConfig struct {
	ClientID     string
	ClientSecret string
	Audience     string
	APIBase      string
	AuthURL      string // derived from APIBase when empty
	Locale       string // storefront locale for the fallback category crawl
	Timeout      time.Duration
	MaxAttempts  int
	BackoffBase  time.Duration
	RequestDelay time.Duration // courtesy delay after every detail call
}

// IngestConfig holds pipeline tuning settings
type IngestConfig struct {
	StoreCodes []string
	Workers    int
}

// RedisConfig holds the optional detail-payload cache settings.
// The cache is disabled while Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

const (
	defaultAPIBase  = "https://api.printvendor.com/v1"
	defaultAudience = "https://api.printvendor.com/"
)

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CATALOG_ prefix (e.g. CATALOG_VENDOR_CLIENT_ID)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DATABASE_URL without the prefix is a common deployment convention,
	// keep it as an alias.
	_ = v.BindEnv("database.url", "CATALOG_DATABASE_URL", "DATABASE_URL")

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database.url"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Vendor: VendorConfig{
			ClientID:     v.GetString("vendor.client_id"),
			ClientSecret: v.GetString("vendor.client_secret"),
			Audience:     v.GetString("vendor.audience"),
			APIBase:      v.GetString("vendor.api_base"),
			AuthURL:      v.GetString("vendor.auth_url"),
			Locale:       v.GetString("vendor.locale"),
			Timeout:      v.GetDuration("vendor.timeout"),
			MaxAttempts:  v.GetInt("vendor.max_attempts"),
			BackoffBase:  v.GetDuration("vendor.backoff_base"),
			RequestDelay: v.GetDuration("vendor.request_delay"),
		},
		Ingest: IngestConfig{
			StoreCodes: v.GetStringSlice("ingest.store_codes"),
			Workers:    v.GetInt("ingest.workers"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
	}

	// Comma-separated store codes arrive as a single string through env vars.
	if len(cfg.Ingest.StoreCodes) == 1 && strings.Contains(cfg.Ingest.StoreCodes[0], ",") {
		cfg.Ingest.StoreCodes = splitAndTrim(cfg.Ingest.StoreCodes[0])
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "catalog-ingest"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "catalog"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Vendor.APIBase == "" {
		cfg.Vendor.APIBase = defaultAPIBase
	}
	if cfg.Vendor.AuthURL == "" {
		cfg.Vendor.AuthURL = deriveAuthURL(cfg.Vendor.APIBase)
	}
	if cfg.Vendor.Audience == "" {
		cfg.Vendor.Audience = defaultAudience
	}
	if cfg.Vendor.Locale == "" {
		cfg.Vendor.Locale = "en"
	}
	if cfg.Vendor.Timeout == 0 {
		cfg.Vendor.Timeout = 30 * time.Second
	}
	if cfg.Vendor.MaxAttempts == 0 {
		cfg.Vendor.MaxAttempts = 4
	}
	if cfg.Vendor.BackoffBase == 0 {
		cfg.Vendor.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Vendor.RequestDelay == 0 {
		cfg.Vendor.RequestDelay = 200 * time.Millisecond
	}
	if len(cfg.Ingest.StoreCodes) == 0 {
		cfg.Ingest.StoreCodes = []string{"en_us", "en_ca"}
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 1
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 6 * time.Hour
	}
}

// Validate performs validation on the configuration. Failures here abort the
// run before any network call is made.
func (c *Config) Validate() error {
	if c.Vendor.ClientID == "" {
		return fmt.Errorf("vendor.client_id is required (set CATALOG_VENDOR_CLIENT_ID)")
	}
	if c.Vendor.ClientSecret == "" {
		return fmt.Errorf("vendor.client_secret is required (set CATALOG_VENDOR_CLIENT_SECRET)")
	}
	if c.Vendor.MaxAttempts < 1 {
		return fmt.Errorf("vendor.max_attempts must be positive")
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	for _, code := range c.Ingest.StoreCodes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("ingest.store_codes contains an empty store code")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// deriveAuthURL maps an API base like https://api.example.com/v1 to the
// vendor's token endpoint on the same host.
func deriveAuthURL(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil || u.Host == "" {
		return strings.TrimRight(apiBase, "/") + "/oauth/token"
	}
	return u.Scheme + "://" + u.Host + "/oauth/token"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
