package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DATANEKO_PLAN_GB", "")
	t.Setenv("DATANEKO_DATA_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
	require.False(t, Exists())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DATANEKO_PLAN_GB", "")
	t.Setenv("DATANEKO_DATA_DIR", "")

	cfg := DefaultConfig()
	cfg.Plan.LimitGB = 20
	cfg.General.WeekStart = "monday"
	cfg.Counters.WWANPrefixes = []string{"rmnet_data"}
	require.NoError(t, Save(cfg))
	require.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg, got)
	require.Equal(t, time.Monday, got.FirstWeekday())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DATANEKO_PLAN_GB", "")
	t.Setenv("DATANEKO_DATA_DIR", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dataneko"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataneko", "config.toml"), []byte("[plan]\nlimit_gb = 3\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Plan.LimitGB)
	require.Equal(t, 1.0, cfg.Plan.DefaultWifiDailyGB)
	require.Equal(t, "@every 15m", cfg.Daemon.Schedule)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DATANEKO_PLAN_GB", "12")
	t.Setenv("DATANEKO_DATA_DIR", "/tmp/neko")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Plan.LimitGB)
	require.Equal(t, "/tmp/neko", cfg.DataDir())
	require.Equal(t, filepath.Join("/tmp/neko", "dataneko.db"), cfg.DBPath())

	t.Setenv("DATANEKO_PLAN_GB", "lots")
	_, err = Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Plan.LimitGB = 0
	cfg.General.WeekStart = "someday"
	cfg.Daemon.Schedule = "every now and then"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "plan.limit_gb")
	require.Contains(t, err.Error(), "week start")
	require.Contains(t, err.Error(), "daemon.schedule")
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" Saturday ")
	require.NoError(t, err)
	require.Equal(t, time.Saturday, d)
	_, err = ParseWeekday("funday")
	require.Error(t, err)
}

func TestPredictorConfig(t *testing.T) {
	cfg := DefaultConfig()
	pc := cfg.PredictorConfig()
	require.Equal(t, DefaultPlanGB, pc.PlanLimitGB)
	require.Equal(t, 1.0, pc.DefaultWifiDailyGB)
	require.Equal(t, "5 GB / month", cfg.PlanLabel())
}
