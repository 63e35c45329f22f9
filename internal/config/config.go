// Package config provides configuration types, defaults, and persistence for
// smartmd. Configuration covers process level concerns: where data lives,
// file watching, logging, tracing and palette overrides. Editor preferences
// are settings and live in the database.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/tracing"
)

// AppName is used for the config directory and default file names.
const AppName = "smartmd"

// Config is the root configuration.
type Config struct {
	// DataDir holds the database. Default: ~/.config/smartmd
	DataDir string         `mapstructure:"data_dir"`
	Watch   WatchConfig    `mapstructure:"watch"`
	Cache   CacheConfig    `mapstructure:"cache"`
	State   StateConfig    `mapstructure:"state"`
	Log     LogConfig      `mapstructure:"log"`
	Theme   ThemeConfig    `mapstructure:"theme"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// WatchConfig controls reloading files changed by other programs.
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMs int  `mapstructure:"debounce_ms"`
}

// Debounce returns the debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// CacheConfig controls the syntax tree cache.
type CacheConfig struct {
	// DisableTrees reparses on every recompute. Useful when profiling.
	DisableTrees bool `mapstructure:"disable_trees"`
}

// StateConfig controls saved cursor and scroll positions.
type StateConfig struct {
	// RetentionDays prunes positions of documents not opened for this long.
	// Zero keeps them forever.
	RetentionDays int `mapstructure:"retention_days"`
}

// Retention returns the retention as a duration; zero means forever.
func (s StateConfig) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// LogConfig controls the debug log.
type LogConfig struct {
	// Path enables file logging when set.
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ThemeConfig overrides palette tokens per mode. Tokens may be written
// nested or as quoted dot notation:
//
//	dark:
//	  "status.done": "#22C55E33"
//	  status:
//	    alert: "#F59E0B33"
type ThemeConfig struct {
	Light map[string]any `mapstructure:"light"`
	Dark  map[string]any `mapstructure:"dark"`
}

// LightColors returns the light overrides keyed by token.
func (t ThemeConfig) LightColors() map[string]string { return flatten(t.Light) }

// DarkColors returns the dark overrides keyed by token.
func (t ThemeConfig) DarkColors() map[string]string { return flatten(t.Dark) }

func flatten(m map[string]any) map[string]string {
	result := make(map[string]string)
	flattenColors("", m, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			converted := make(map[string]any, len(val))
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// DefaultConfigDir returns ~/.config/smartmd, or "." when the home
// directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath is where the config file is created on first run.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DBPath returns the database file inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, AppName+".db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = filepath.Join(DefaultConfigDir(), "traces", "traces.jsonl")
	return Config{
		DataDir: DefaultConfigDir(),
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 300,
		},
		State:   StateConfig{RetentionDays: 90},
		Log:     LogConfig{Level: "info"},
		Tracing: tr,
	}
}

// KeyDelimiter separates nested viper keys. Palette tokens contain dots, so
// the default "." delimiter cannot be used.
const KeyDelimiter = "::"

// NewViper returns a viper instance configured for Load.
func NewViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
}

// Key joins path segments with KeyDelimiter.
func Key(parts ...string) string { return strings.Join(parts, KeyDelimiter) }

// SetDefaults registers Defaults with v so unset keys unmarshal to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault(Key("watch", "enabled"), d.Watch.Enabled)
	v.SetDefault(Key("watch", "debounce_ms"), d.Watch.DebounceMs)
	v.SetDefault(Key("cache", "disable_trees"), d.Cache.DisableTrees)
	v.SetDefault(Key("state", "retention_days"), d.State.RetentionDays)
	v.SetDefault(Key("log", "path"), d.Log.Path)
	v.SetDefault(Key("log", "level"), d.Log.Level)
	v.SetDefault(Key("tracing", "enabled"), d.Tracing.Enabled)
	v.SetDefault(Key("tracing", "exporter"), d.Tracing.Exporter)
	v.SetDefault(Key("tracing", "file_path"), d.Tracing.FilePath)
	v.SetDefault(Key("tracing", "file_max_bytes"), d.Tracing.FileMaxBytes)
	v.SetDefault(Key("tracing", "otlp_endpoint"), d.Tracing.OTLPEndpoint)
	v.SetDefault(Key("tracing", "sample_rate"), d.Tracing.SampleRate)
	v.SetDefault(Key("tracing", "service_name"), d.Tracing.ServiceName)
}

// Load reads path, or the default location when path is empty, into a
// Config. A missing default file is created from the template. It returns
// the file actually used. v should come from NewViper.
func Load(v *viper.Viper, path string) (Config, string, error) {
	SetDefaults(v)
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(KeyDelimiter, "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := WriteDefaultConfig(path); err != nil {
				log.Warn(log.CatConfig, "using built-in defaults", "error", err)
				var cfg Config
				if err := v.Unmarshal(&cfg); err != nil {
					return Config{}, "", fmt.Errorf("decoding defaults: %w", err)
				}
				return cfg, "", nil
			}
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, path, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, path, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	log.Debug(log.CatConfig, "config loaded", "path", path)
	return cfg, path, nil
}

// Validate checks cfg for errors. Empty values are valid and mean defaults.
func Validate(cfg Config) error {
	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", cfg.Watch.DebounceMs)
	}
	if cfg.State.RetentionDays < 0 {
		return fmt.Errorf("state.retention_days must not be negative, got %d", cfg.State.RetentionDays)
	}
	if cfg.Log.Level != "" {
		if _, ok := log.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
		}
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	return ValidateTheme(cfg.Theme)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}
	switch tr.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
	}
	if tr.FileMaxBytes < 0 {
		return fmt.Errorf("tracing.file_max_bytes must not be negative, got %d", tr.FileMaxBytes)
	}
	if tr.Enabled && tr.Exporter == tracing.ExporterFile && tr.FilePath == "" {
		return errors.New("tracing.file_path is required when exporter is \"file\"")
	}
	return nil
}

// ValidateTheme checks that overrides are hex colors. Token names are
// checked when the theme is built.
func ValidateTheme(th ThemeConfig) error {
	for mode, colors := range map[string]map[string]string{"light": th.LightColors(), "dark": th.DarkColors()} {
		for tok, hex := range colors {
			if !isHexColor(hex) {
				return fmt.Errorf("theme.%s.%s: %q is not a #RRGGBB or #RRGGBBAA color", mode, tok, hex)
			}
		}
	}
	return nil
}

func isHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 9) {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// DefaultConfigTemplate returns the default config as YAML with comments.
func DefaultConfigTemplate() string {
	return `# smartmd configuration
#
# Editor preferences (theme, marker mode, bullets, ...) are stored in the
# database; change them in the editor or with 'smartmd settings set'.

# Directory holding smartmd.db
# data_dir: ~/.config/smartmd

# Reload open files when another program changes them
watch:
  enabled: true
  debounce_ms: 300

# Saved cursor and scroll positions
state:
  retention_days: 90   # forget documents not opened for this long (0 = never)

# cache:
#   disable_trees: false   # reparse on every keystroke (profiling only)

# Debug log
# log:
#   path: /tmp/smartmd.log
#   level: debug           # debug, info, warn, error

# Palette overrides per mode. Tokens: text, text.muted, rule, bullet,
# line.active, selection, line.number, tab.active, tab.border, statusbar,
# status.<done|alert|info|progress|cancelled> and status.<...>.bar
# theme:
#   light:
#     status.done: "#22C55E33"
#   dark:
#     bullet: "#F472B6"

# Tracing of decoration recomputes and cursor restores
# tracing:
#   enabled: false
#   exporter: file          # none, file, stdout, otlp
#   file_path: ~/.config/smartmd/traces/traces.jsonl
#   file_max_bytes: 10485760  # rolls over to traces.jsonl.1
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
