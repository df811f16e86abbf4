// Package config loads and saves the dataneko TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// Config holds all dataneko configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Plan       PlanConfig       `toml:"plan"`
	Counters   CountersConfig   `toml:"counters"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir   string `toml:"data_dir,omitempty"`
	WeekStart string `toml:"week_start"`
}

// PlanConfig describes the mobile data plan.
type PlanConfig struct {
	LimitGB            int     `toml:"limit_gb"`
	DefaultWifiDailyGB float64 `toml:"default_wifi_daily_gb"`
}

// CountersConfig controls where interface counters are read and how
// interfaces are classified.
type CountersConfig struct {
	ProcDir      string   `toml:"proc_dir"`
	WifiPrefixes []string `toml:"wifi_prefixes"`
	WWANPrefixes []string `toml:"wwan_prefixes"`
}

// DaemonConfig holds background refresh settings.
type DaemonConfig struct {
	Addr           string `toml:"addr"`
	Schedule       string `toml:"schedule"`
	TickTimeoutSec int    `toml:"tick_timeout_sec"`
	EventsBuffer   int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			WeekStart: "sunday",
		},
		Plan: PlanConfig{
			LimitGB:            DefaultPlanGB,
			DefaultWifiDailyGB: 1.0,
		},
		Counters: CountersConfig{
			ProcDir:      "/proc",
			WifiPrefixes: []string{"wl", "wlan"},
			WWANPrefixes: []string{"wwan", "rmnet", "ppp", "ccmni"},
		},
		Daemon: DaemonConfig{
			Addr:           "127.0.0.1:8788",
			Schedule:       "@every 15m",
			TickTimeoutSec: 30,
			EventsBuffer:   200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dataneko")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dataneko")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATANEKO_PLAN_GB"); v != "" {
		gb, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing DATANEKO_PLAN_GB: %w", err)
		}
		cfg.Plan.LimitGB = gb
	}
	if v := os.Getenv("DATANEKO_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate reports every problem with cfg.
func (c Config) Validate() error {
	var errs []error
	if c.Plan.LimitGB <= 0 {
		errs = append(errs, fmt.Errorf("plan.limit_gb must be positive, got %d", c.Plan.LimitGB))
	}
	if c.Plan.DefaultWifiDailyGB < 0 {
		errs = append(errs, fmt.Errorf("plan.default_wifi_daily_gb must not be negative"))
	}
	if _, err := ParseWeekday(c.General.WeekStart); err != nil {
		errs = append(errs, err)
	}
	if _, err := cron.ParseStandard(c.Daemon.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("daemon.schedule: %w", err))
	}
	if c.Daemon.TickTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("daemon.tick_timeout_sec must be positive"))
	}
	return errors.Join(errs...)
}

// ParseWeekday maps an English day name to a time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if name == strings.ToLower(d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown week start %q", s)
}

// FirstWeekday returns the configured week start, falling back to Sunday.
func (c Config) FirstWeekday() time.Weekday {
	d, err := ParseWeekday(c.General.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return d
}

// TickTimeout returns the per-tick deadline.
func (c Config) TickTimeout() time.Duration {
	return time.Duration(c.Daemon.TickTimeoutSec) * time.Second
}

// DataDir returns where the database and pid file live.
func (c Config) DataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dataneko")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dataneko")
}

// DBPath returns the SQLite database path.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir(), "dataneko.db")
}
