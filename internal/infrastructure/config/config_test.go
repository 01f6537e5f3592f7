package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("CATALOG_VENDOR_CLIENT_ID", "test-client")
	t.Setenv("CATALOG_VENDOR_CLIENT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "catalog-ingest", cfg.App.Name)
	assert.Equal(t, defaultAPIBase, cfg.Vendor.APIBase)
	assert.Equal(t, defaultAudience, cfg.Vendor.Audience)
	assert.Equal(t, "https://api.printvendor.com/oauth/token", cfg.Vendor.AuthURL)
	assert.Equal(t, 30*time.Second, cfg.Vendor.Timeout)
	assert.Equal(t, 4, cfg.Vendor.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Vendor.RequestDelay)
	assert.Equal(t, []string{"en_us", "en_ca"}, cfg.Ingest.StoreCodes)
	assert.Equal(t, 1, cfg.Ingest.Workers)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CATALOG_VENDOR_API_BASE", "https://sandbox.printvendor.com/v2")
	t.Setenv("CATALOG_INGEST_STORE_CODES", "en_us,en_ca,en_gb")
	t.Setenv("CATALOG_INGEST_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.printvendor.com/v2", cfg.Vendor.APIBase)
	assert.Equal(t, "https://sandbox.printvendor.com/oauth/token", cfg.Vendor.AuthURL)
	assert.Equal(t, []string{"en_us", "en_ca", "en_gb"}, cfg.Ingest.StoreCodes)
	assert.Equal(t, 4, cfg.Ingest.Workers)
}

func TestLoad_DatabaseURLAlias(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "postgres://ingest:pw@db.internal:5432/catalog")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://ingest:pw@db.internal:5432/catalog", cfg.Database.DSN())
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("CATALOG_VENDOR_CLIENT_ID", "")
	t.Setenv("CATALOG_VENDOR_CLIENT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vendor.client_id")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Vendor.ClientID = "id"
		cfg.Vendor.ClientSecret = "secret"
		applyDefaults(cfg)
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := base()
		cfg.Vendor.ClientSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("idle exceeds open", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.Validate())
	})

	t.Run("blank store code", func(t *testing.T) {
		cfg := base()
		cfg.Ingest.StoreCodes = []string{"en_us", "  "}
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "p@ss:word",
		DBName:   "catalog",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%3Aword")
	assert.Contains(t, dsn, "sslmode=disable")
}
