package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// CacheBudgets are the eviction limits for the derived-artifact caches.
type CacheBudgets struct {
	MaxAgeDays             int `yaml:"maxAgeDays"`
	MaxSizeGB              int `yaml:"maxSizeGB"`
	CleanupIntervalHours   int `yaml:"cleanupIntervalHours"`
	ThumbnailRetentionDays int `yaml:"thumbnailRetentionDays"`
}

// configFile is the on-disk YAML configuration shape.
type configFile struct {
	Folders []library.Folder `yaml:"folders"`
	Cache   CacheBudgets     `yaml:"cache"`
}

// Config holds all application configuration.
type Config struct {
	ConfigPath string
	CacheDir   string
	DataDir    string
	Port       string

	Folders []library.Folder
	Cache   CacheBudgets

	// Derived paths
	HistoryDBPath string

	MetricsEnabled bool
}

// defaultBudgets applies when the config file omits a cache setting.
var defaultBudgets = CacheBudgets{
	MaxAgeDays:             30,
	MaxSizeGB:              10,
	CleanupIntervalHours:   6,
	ThumbnailRetentionDays: 7,
}

// LoadConfig loads configuration from the environment and the YAML
// config file, logs the effective settings, and validates directories.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ConfigPath: getEnv("CONFIG_FILE", "./config.yaml"),
		CacheDir:   getEnv("CACHE_DIR", "./cache"),
		DataDir:    getEnv("DATA_DIR", "./data"),
		Port:       getEnv("PORT", "7777"),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	fileCfg, err := loadConfigFile(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Folders = fileCfg.Folders
	cfg.Cache = mergeBudgets(fileCfg.Cache)

	if len(cfg.Folders) == 0 {
		return nil, fmt.Errorf("no video folders configured in %s", cfg.ConfigPath)
	}
	seen := make(map[string]bool)
	for _, f := range cfg.Folders {
		if f.Name == "" || f.Path == "" {
			return nil, fmt.Errorf("folder entries need both name and path (got name=%q path=%q)", f.Name, f.Path)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate folder name %q", f.Name)
		}
		seen[f.Name] = true
	}

	for _, dir := range []string{cfg.CacheDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	cfg.HistoryDBPath = filepath.Join(cfg.DataDir, "history.db")

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  CONFIG_FILE:               %s", cfg.ConfigPath)
	logging.Info("  CACHE_DIR:                 %s", cfg.CacheDir)
	logging.Info("  DATA_DIR:                  %s", cfg.DataDir)
	logging.Info("  PORT:                      %s", cfg.Port)
	logging.Info("  METRICS_ENABLED:           %v", cfg.MetricsEnabled)
	logging.Info("  LOG_LEVEL:                 %s", logging.GetLevel())
	logging.Info("  folders:                   %d configured", len(cfg.Folders))
	for _, f := range cfg.Folders {
		logging.Info("    - %s: %s", f.Name, f.Path)
	}
	logging.Info("  cache.maxAgeDays:          %d", cfg.Cache.MaxAgeDays)
	logging.Info("  cache.maxSizeGB:           %d", cfg.Cache.MaxSizeGB)
	logging.Info("  cache.cleanupIntervalHours: %d", cfg.Cache.CleanupIntervalHours)
	logging.Info("  cache.thumbnailRetentionDays: %d", cfg.Cache.ThumbnailRetentionDays)

	return cfg, nil
}

// MaxAge returns the cache age budget as a duration.
func (b CacheBudgets) MaxAge() time.Duration {
	return time.Duration(b.MaxAgeDays) * 24 * time.Hour
}

// MaxSizeBytes returns the cache size budget in bytes.
func (b CacheBudgets) MaxSizeBytes() int64 {
	return int64(b.MaxSizeGB) * 1024 * 1024 * 1024
}

// CleanupInterval returns the sweep interval as a duration.
func (b CacheBudgets) CleanupInterval() time.Duration {
	return time.Duration(b.CleanupIntervalHours) * time.Hour
}

// ThumbnailRetention returns the orphan retention window as a duration.
func (b CacheBudgets) ThumbnailRetention() time.Duration {
	return time.Duration(b.ThumbnailRetentionDays) * 24 * time.Hour
}

func loadConfigFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func mergeBudgets(b CacheBudgets) CacheBudgets {
	if b.MaxAgeDays <= 0 {
		b.MaxAgeDays = defaultBudgets.MaxAgeDays
	}
	if b.MaxSizeGB <= 0 {
		b.MaxSizeGB = defaultBudgets.MaxSizeGB
	}
	if b.CleanupIntervalHours <= 0 {
		b.CleanupIntervalHours = defaultBudgets.CleanupIntervalHours
	}
	if b.ThumbnailRetentionDays <= 0 {
		b.ThumbnailRetentionDays = defaultBudgets.ThumbnailRetentionDays
	}
	return b
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		logging.Warn("  invalid boolean for %s: %q, using %v", key, v, fallback)
	}
	return fallback
}

// LogFatal logs a fatal startup error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
