package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30, cfg.Assets.HorizonDays)
	assert.Equal(t, 5*time.Minute, cfg.Assets.DashboardCacheTTL)
	assert.Equal(t, "15 0 * * *", cfg.Assets.DepreciationCron)
	assert.True(t, cfg.Postgres.RunMigrations)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/assets")
	t.Setenv("ASSETS_HORIZON_DAYS", "14")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/assets", cfg.Postgres.DSN)
	assert.Equal(t, 14, cfg.Assets.HorizonDays)
	assert.Equal(t, "9090", cfg.Server.Port)
}
