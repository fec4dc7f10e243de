package config

import "github.com/hyperjump/yoyaku/internal/nlp"

// DefaultConfigPath is where the CLI looks for a config file.
const DefaultConfigPath = "/usr/local/etc/yoyaku/config.yaml"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/yoyaku/data/db/summaries.db"
	}
	if cfg.Summarize.DefaultStrategy == "" {
		cfg.Summarize.DefaultStrategy = "textrank"
	}
	if cfg.Summarize.DefaultLimit == 0 {
		cfg.Summarize.DefaultLimit = 5
	}
	if cfg.Summarize.MaxLimit == 0 {
		cfg.Summarize.MaxLimit = 100
	}
	if cfg.Summarize.SentenceSplitter == "" {
		cfg.Summarize.SentenceSplitter = nlp.SplitterProse
	}
	if cfg.Summarize.WordAnalyzer == "" {
		cfg.Summarize.WordAnalyzer = nlp.AnalyzerStandard
	}
	cfg.Ranking.ApplyDefaults()
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".odt", ".rtf"}
	}
	if cfg.Watch.Strategy == "" {
		cfg.Watch.Strategy = cfg.Summarize.DefaultStrategy
	}
	if cfg.Watch.Limit == 0 {
		cfg.Watch.Limit = cfg.Summarize.DefaultLimit
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 500
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
