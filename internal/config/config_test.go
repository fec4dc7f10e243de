package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantDebug bool
		wantPort  int
	}{
		{
			name:     "server and storage",
			content:  "server:\n  host: \"127.0.0.1\"\n  port: 9000\nstorage:\n  database_path: \"summaries.db\"\n",
			wantPort: 9000,
		},
		{
			name:      "debug enabled",
			content:   "debug: true\nsummarize:\n  default_strategy: centroid\n",
			wantDebug: true,
			wantPort:  8080,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Debug != tt.wantDebug {
				t.Errorf("debug = %v, want %v", cfg.Debug, tt.wantDebug)
			}
			if cfg.Server.Port != tt.wantPort {
				t.Errorf("port = %d, want %d", cfg.Server.Port, tt.wantPort)
			}
			if !filepath.IsAbs(cfg.Storage.DatabasePath) {
				t.Errorf("database_path should be absolute, got %s", cfg.Storage.DatabasePath)
			}
		})
	}
}

func TestLoad_expandPath(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./var/summaries.db"
watch:
  directories: ["./inbox", "notes/inbox"]
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "var", "summaries.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if len(cfg.Watch.Directories) != 2 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	if want := filepath.Join(dir, "inbox"); cfg.Watch.Directories[0] != want {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], want)
	}
	if home, err := os.UserHomeDir(); err == nil {
		if want := filepath.Join(home, "notes", "inbox"); cfg.Watch.Directories[1] != want {
			t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[1], want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Summarize.DefaultStrategy != "textrank" || cfg.Summarize.DefaultLimit != 5 {
		t.Errorf("summarize defaults: got %+v", cfg.Summarize)
	}
	if cfg.Summarize.SentenceSplitter != "prose" || cfg.Summarize.WordAnalyzer != "standard" {
		t.Errorf("pipeline defaults: got %+v", cfg.Summarize)
	}
	if cfg.Ranking.Damping != 0.85 || cfg.Ranking.MaxIterations != 100 {
		t.Errorf("ranking defaults: got %+v", cfg.Ranking)
	}
	if cfg.Watch.Strategy != "textrank" || cfg.Watch.Limit != 5 {
		t.Errorf("watch should inherit summarize defaults: got %+v", cfg.Watch)
	}
	if len(cfg.Watch.Extensions) != 7 || cfg.Watch.Extensions[0] != ".txt" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_rankingSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
summarize:
  default_strategy: lexrank
ranking:
  similarity_threshold: 0.1
  lexrank_binary: true
  centroid_mode: sum
  dems_weights:
    lead_value: 2
    location: 1
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ranking.SimilarityThreshold != 0.1 || !cfg.Ranking.LexRankBinary || cfg.Ranking.CentroidMode != "sum" {
		t.Errorf("ranking section not parsed: %+v", cfg.Ranking)
	}
	if cfg.Ranking.Weights.LeadValue != 2 || cfg.Ranking.Weights.Pronoun != 0 {
		t.Errorf("partial weights should be kept: %+v", cfg.Ranking.Weights)
	}
	if cfg.Ranking.Damping != 0.85 {
		t.Errorf("unset damping should default, got %v", cfg.Ranking.Damping)
	}
	if cfg.Watch.Strategy != "lexrank" {
		t.Errorf("watch strategy should follow the default strategy, got %s", cfg.Watch.Strategy)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown strategy", "summarize:\n  default_strategy: bm25\n"},
		{"bad damping", "ranking:\n  damping: 1.5\n"},
		{"bad centroid mode", "ranking:\n  centroid_mode: median\n"},
		{"limit above max", "summarize:\n  default_limit: 50\n  max_limit: 10\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/docs"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("true_returns_true", func(t *testing.T) {
		v := true
		w := &WatchConfig{Recursive: &v}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
