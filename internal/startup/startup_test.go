package startup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setBaseEnv(t *testing.T, configPath string) {
	t.Helper()
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("CACHE_DIR", filepath.Join(t.TempDir(), "cache"))
	t.Setenv("DATA_DIR", filepath.Join(t.TempDir(), "data"))
	t.Setenv("PORT", "")
	t.Setenv("METRICS_ENABLED", "")
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
folders:
  - name: movies
    path: /media/movies
  - name: shows
    path: /media/shows
cache:
  maxAgeDays: 14
  maxSizeGB: 5
`)
	setBaseEnv(t, path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Folders) != 2 || cfg.Folders[0].Name != "movies" || cfg.Folders[1].Path != "/media/shows" {
		t.Errorf("folders = %+v", cfg.Folders)
	}
	if cfg.Port != "7777" {
		t.Errorf("port = %q, want default 7777", cfg.Port)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics not enabled by default")
	}

	// Explicit budgets kept, omitted ones defaulted.
	if cfg.Cache.MaxAgeDays != 14 || cfg.Cache.MaxSizeGB != 5 {
		t.Errorf("explicit budgets = %+v", cfg.Cache)
	}
	if cfg.Cache.CleanupIntervalHours != 6 || cfg.Cache.ThumbnailRetentionDays != 7 {
		t.Errorf("defaulted budgets = %+v", cfg.Cache)
	}

	if cfg.HistoryDBPath != filepath.Join(cfg.DataDir, "history.db") {
		t.Errorf("history db path = %q", cfg.HistoryDBPath)
	}
	for _, dir := range []string{cfg.CacheDir, cfg.DataDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "NoFolders",
			content: "folders: []",
			wantErr: "no video folders",
		},
		{
			name: "MissingName",
			content: `
folders:
  - path: /media/movies
`,
			wantErr: "name and path",
		},
		{
			name: "MissingPath",
			content: `
folders:
  - name: movies
`,
			wantErr: "name and path",
		},
		{
			name: "DuplicateName",
			content: `
folders:
  - name: movies
    path: /a
  - name: movies
    path: /b
`,
			wantErr: "duplicate folder name",
		},
		{
			name:    "BadYAML",
			content: "folders: [",
			wantErr: "parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t, writeConfig(t, tt.content))
			_, err := LoadConfig()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	setBaseEnv(t, filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig succeeded with no config file")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
folders:
  - name: movies
    path: /media/movies
`)
	setBaseEnv(t, path)
	t.Setenv("PORT", "9000")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics still enabled with METRICS_ENABLED=false")
	}
}

func TestCacheBudgetConversions(t *testing.T) {
	b := CacheBudgets{
		MaxAgeDays:             30,
		MaxSizeGB:              10,
		CleanupIntervalHours:   6,
		ThumbnailRetentionDays: 7,
	}

	if got := b.MaxAge(); got != 30*24*time.Hour {
		t.Errorf("MaxAge() = %s", got)
	}
	if got := b.MaxSizeBytes(); got != 10<<30 {
		t.Errorf("MaxSizeBytes() = %d", got)
	}
	if got := b.CleanupInterval(); got != 6*time.Hour {
		t.Errorf("CleanupInterval() = %s", got)
	}
	if got := b.ThumbnailRetention(); got != 7*24*time.Hour {
		t.Errorf("ThumbnailRetention() = %s", got)
	}
}

func TestMergeBudgets(t *testing.T) {
	got := mergeBudgets(CacheBudgets{MaxSizeGB: 50})
	if got.MaxSizeGB != 50 {
		t.Errorf("explicit MaxSizeGB overwritten: %d", got.MaxSizeGB)
	}
	if got != (CacheBudgets{MaxAgeDays: 30, MaxSizeGB: 50, CleanupIntervalHours: 6, ThumbnailRetentionDays: 7}) {
		t.Errorf("mergeBudgets = %+v", got)
	}
}
