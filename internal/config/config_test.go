package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "sqlite3", cfg.DBDriver)
	require.NotEmpty(t, cfg.DBDSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "user=app dbname=urbanluxe sslmode=disable")
	t.Setenv("ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, ":9090", cfg.Addr)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongodb")
	_, err := Load()
	require.Error(t, err)
}
