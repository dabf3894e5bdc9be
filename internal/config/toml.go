// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Journal JournalConfig `toml:"journal"`
	Stats   StatsConfig   `toml:"stats"`
	Charts  ChartsConfig  `toml:"charts"`
	Log     LogConfig     `toml:"log"`
}

// JournalConfig maps storage settings.
type JournalConfig struct {
	DBPath *string `toml:"db-path"`
}

// StatsConfig maps report settings.
type StatsConfig struct {
	Recent   *int `toml:"recent"`
	BarWidth *int `toml:"bar-width"`
}

// ChartsConfig maps HTML chart settings.
type ChartsConfig struct {
	OutDir *string `toml:"out-dir"`
	Theme  *string `toml:"theme"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (use debug, info, warn or error)", s)
	}
	return level, nil
}

// Template is written by `tcgjournal config` when no file exists yet.
const Template = `# tcgjournal configuration

[journal]
# db-path = "~/.local/share/tcgjournal/journal.db"

[stats]
# recent = 10
# bar-width = 40

[charts]
# out-dir = "~/.local/share/tcgjournal/charts"
# theme = "light"

[log]
# level = "info"
`
