package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	UI      UIConfig      `mapstructure:"ui"`
	Player  PlayerConfig  `mapstructure:"player"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DataConfig locates the exported bundle
type DataConfig struct {
	Base        string        `mapstructure:"base"`         // Directory or http(s) URL of the bundle root
	ImagePrefix string        `mapstructure:"image_prefix"` // Prefix for IMAGES/ and THUMBS/ paths
	FeedFile    string        `mapstructure:"feed_file"`    // Patient/study feed
	IndexFile   string        `mapstructure:"index_file"`   // Study/series index page
	ReportsDir  string        `mapstructure:"reports_dir"`  // PDF reports, named <accession>.pdf
	Timeout     time.Duration `mapstructure:"timeout"`      // HTTP only
	Retries     int           `mapstructure:"retries"`      // HTTP only
}

// ViewerConfig holds image viewer configuration
type ViewerConfig struct {
	PlayInterval   time.Duration `mapstructure:"play_interval"`
	ResolveWorkers int           `mapstructure:"resolve_workers"` // Concurrent detail page fetches
}

// UIConfig holds UI configuration
type UIConfig struct {
	CompactWidth int    `mapstructure:"compact_width"` // Below this width the compact layout is used
	DefaultTab   string `mapstructure:"default_tab"`
}

// PlayerConfig holds the external opener configuration for reports and frames
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // Empty for the system default handler
	Args    []string `mapstructure:"args"`
}

// CacheConfig holds document cache configuration
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Bounds for viewer.play_interval
const (
	MinPlayInterval = 100 * time.Millisecond
	MaxPlayInterval = 2000 * time.Millisecond
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Base:        ".",
			ImagePrefix: "IHE_PDI",
			FeedFile:    "data.json",
			IndexFile:   "INDEX.HTM",
			ReportsDir:  "REPORTS",
			Timeout:     20 * time.Second,
			Retries:     2,
		},
		Viewer: ViewerConfig{
			PlayInterval:   125 * time.Millisecond,
			ResolveWorkers: 4,
		},
		UI: UIConfig{
			CompactWidth: 100,
			DefaultTab:   "images",
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pdiview", "pdiview.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "pdiview", "pdiview.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pdiview")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pdiview")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "pdiview", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "pdiview", "cache")
	}
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"base":      "data.base",
	"log-level": "logging.level",
}

// LoadConfig loads configuration from file, environment and flags.
// configFile overrides the search path; flags may be nil.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. PDIVIEW_DATA_BASE
	v.SetEnvPrefix("PDIVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("error binding flag %s: %w", name, err)
			}
		}
		if f := flags.Lookup("no-cache"); f != nil && f.Changed && f.Value.String() == "true" {
			v.Set("cache.enabled", false)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data.base", d.Data.Base)
	v.SetDefault("data.image_prefix", d.Data.ImagePrefix)
	v.SetDefault("data.feed_file", d.Data.FeedFile)
	v.SetDefault("data.index_file", d.Data.IndexFile)
	v.SetDefault("data.reports_dir", d.Data.ReportsDir)
	v.SetDefault("data.timeout", d.Data.Timeout)
	v.SetDefault("data.retries", d.Data.Retries)

	v.SetDefault("viewer.play_interval", d.Viewer.PlayInterval)
	v.SetDefault("viewer.resolve_workers", d.Viewer.ResolveWorkers)

	v.SetDefault("ui.compact_width", d.UI.CompactWidth)
	v.SetDefault("ui.default_tab", d.UI.DefaultTab)

	v.SetDefault("player.command", d.Player.Command)
	v.SetDefault("player.args", d.Player.Args)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Validate clamps soft settings into range and rejects unusable ones
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Base) == "" {
		return fmt.Errorf("data.base must not be empty")
	}
	if c.Data.Retries < 0 {
		return fmt.Errorf("data.retries must be >= 0, got %d", c.Data.Retries)
	}
	if c.Viewer.PlayInterval < MinPlayInterval {
		c.Viewer.PlayInterval = MinPlayInterval
	}
	if c.Viewer.PlayInterval > MaxPlayInterval {
		c.Viewer.PlayInterval = MaxPlayInterval
	}
	if c.Viewer.ResolveWorkers < 1 {
		c.Viewer.ResolveWorkers = 1
	}
	if c.UI.CompactWidth < 0 {
		c.UI.CompactWidth = 0
	}
	return nil
}

// CacheDir returns the document cache directory, or "" when caching is disabled
func (c *Config) CacheDir() string {
	if !c.Cache.Enabled {
		return ""
	}
	return c.Cache.Dir
}

// ClearCache removes all cached data
func ClearCache(dir string) error {
	if dir == "" {
		dir = defaultCachePath()
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetConfigPath returns the directory searched for config.yaml
func GetConfigPath() string {
	return defaultConfigPath()
}
