// Package config handles loading and managing streamview configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/wesm/streamview/internal/fileutil"
)

// Config represents the streamview configuration.
type Config struct {
	Data  DataConfig  `toml:"data"`
	User  UserConfig  `toml:"user"`
	UI    UIConfig    `toml:"ui"`
	Watch WatchConfig `toml:"watch"`

	// Computed paths (not from config file)
	HomeDir    string `toml:"-"`
	configPath string
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// UserConfig identifies the viewing user. Stream access checks and
// self-mention highlighting are relative to this user.
type UserConfig struct {
	ID       int64  `toml:"id"`
	FullName string `toml:"full_name"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Locale       string `toml:"locale"`       // BCP 47 tag, e.g. "de" or "pt-BR"
	Translations string `toml:"translations"` // Optional TOML message catalogue
	DarkTheme    bool   `toml:"dark_theme"`   // Adjust stream colours for dark backgrounds
	Mouse        bool   `toml:"mouse"`        // Enable mouse motion (hover tooltips)
	TooltipWidth int    `toml:"tooltip_width"`
}

// WatchConfig controls how stream changes made by other processes are picked up.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

// Duration decodes TOML strings like "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DefaultHome returns the default streamview home directory.
// Respects STREAMVIEW_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("STREAMVIEW_HOME"); h != "" {
		return expandPath(h)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".streamview"
	}
	return filepath.Join(home, ".streamview")
}

// Load reads the configuration from the specified file.
// If path is empty, uses <home>/config.toml. homeDir overrides DefaultHome.
func Load(path, homeDir string) (*Config, error) {
	if homeDir == "" {
		homeDir = DefaultHome()
	} else {
		homeDir = expandPath(homeDir)
	}

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir:    homeDir,
		configPath: path,
		// Defaults
		Data: DataConfig{
			DataDir: homeDir,
		},
		User: UserConfig{
			ID: 1,
		},
		UI: UIConfig{
			Locale:       "en",
			DarkTheme:    true,
			Mouse:        true,
			TooltipWidth: 40,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration{150 * time.Millisecond},
		},
	}

	// Config file is optional - use defaults if not present
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Expand ~ in paths
	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)
	cfg.UI.Translations = expandPath(cfg.UI.Translations)

	if cfg.UI.TooltipWidth < 10 {
		cfg.UI.TooltipWidth = 10
	}

	return cfg, nil
}

// ConfigFilePath returns the path the configuration was (or would be) loaded from.
func (c *Config) ConfigFilePath() string {
	return c.configPath
}

// EnsureHomeDir creates the home and data directories owner-only if they
// do not exist.
func (c *Config) EnsureHomeDir() error {
	if err := fileutil.PrivateDir(c.HomeDir); err != nil {
		return err
	}
	if c.Data.DataDir != "" && c.Data.DataDir != c.HomeDir {
		return fileutil.PrivateDir(c.Data.DataDir)
	}
	return nil
}

// DatabasePath returns the path to the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.DataDir, "streamview.db")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
