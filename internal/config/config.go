// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/bnema/wayosk/internal/logger"
)

// Backend types.
const (
	BackendWayland = "wayland"
	BackendUinput  = "uinput"
)

// Config represents the application configuration
type Config struct {
	Keyboard   KeyboardConfig   `mapstructure:"keyboard"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Visibility VisibilityConfig `mapstructure:"visibility"`
	IPC        IPCConfig        `mapstructure:"ipc"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// KeyboardConfig selects layouts.
type KeyboardConfig struct {
	Layout        string `mapstructure:"layout"`
	Overlay       string `mapstructure:"overlay"`
	LayoutsDir    string `mapstructure:"layouts_dir"`
	WideThreshold int    `mapstructure:"wide_threshold"` // perceptual px
}

// BackendConfig selects how key events reach the system.
type BackendConfig struct {
	Type       string `mapstructure:"type"` // wayland or uinput
	UinputPath string `mapstructure:"uinput_path"`
}

// VisibilityConfig contains panel visibility settings
type VisibilityConfig struct {
	ForceShow bool `mapstructure:"force_show"`
}

// IPCConfig contains control socket settings
type IPCConfig struct {
	SocketPath string `mapstructure:"socket_path"` // empty means $XDG_RUNTIME_DIR/wayosk.sock
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Keyboard: KeyboardConfig{
			Layout:        "us",
			Overlay:       "",
			LayoutsDir:    defaultLayoutsDir(),
			WideThreshold: 540,
		},
		Backend: BackendConfig{
			Type:       BackendWayland,
			UinputPath: "/dev/uinput",
		},
		Visibility: VisibilityConfig{
			ForceShow: false,
		},
		IPC: IPCConfig{
			SocketPath: "",
		},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wayosk")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "wayosk"))
		}
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "wayosk"))
		}
		viper.AddConfigPath(".")
	}

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	return load()
}

// SetDefaults registers every default with viper so partial files merge.
func SetDefaults() {
	viper.SetDefault("keyboard.layout", DefaultConfig.Keyboard.Layout)
	viper.SetDefault("keyboard.overlay", DefaultConfig.Keyboard.Overlay)
	viper.SetDefault("keyboard.layouts_dir", DefaultConfig.Keyboard.LayoutsDir)
	viper.SetDefault("keyboard.wide_threshold", DefaultConfig.Keyboard.WideThreshold)

	viper.SetDefault("backend.type", DefaultConfig.Backend.Type)
	viper.SetDefault("backend.uinput_path", DefaultConfig.Backend.UinputPath)

	viper.SetDefault("visibility.force_show", DefaultConfig.Visibility.ForceShow)

	viper.SetDefault("ipc.socket_path", DefaultConfig.IPC.SocketPath)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
}

func load() error {
	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Backend.Type {
	case BackendWayland, BackendUinput:
	default:
		return fmt.Errorf("invalid backend.type %q: want %q or %q", c.Backend.Type, BackendWayland, BackendUinput)
	}
	if c.Keyboard.WideThreshold < 0 {
		return fmt.Errorf("invalid keyboard.wide_threshold %d", c.Keyboard.WideThreshold)
	}
	if strings.TrimSpace(c.Keyboard.Layout) == "" {
		return fmt.Errorf("keyboard.layout must not be empty")
	}
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Apply stores c in viper so Save writes it.
func Apply(c *Config) {
	viper.Set("keyboard.layout", c.Keyboard.Layout)
	viper.Set("keyboard.overlay", c.Keyboard.Overlay)
	viper.Set("keyboard.layouts_dir", c.Keyboard.LayoutsDir)
	viper.Set("keyboard.wide_threshold", c.Keyboard.WideThreshold)
	viper.Set("backend.type", c.Backend.Type)
	viper.Set("backend.uinput_path", c.Backend.UinputPath)
	viper.Set("visibility.force_show", c.Visibility.ForceShow)
	viper.Set("ipc.socket_path", c.IPC.SocketPath)
	viper.Set("logging.log_level", c.Logging.LogLevel)
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wayosk", "wayosk.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "wayosk.toml"
	}
	return filepath.Join(home, ".config", "wayosk", "wayosk.toml")
}

// Watch reloads the configuration when the file changes and calls onChange
// with the previous and the new configuration.
func Watch(onChange func(old, updated *Config)) {
	viper.OnConfigChange(reloadHandler(onChange))
	viper.WatchConfig()
}

// reloadHandler keeps the previous configuration when the edited file does
// not load.
func reloadHandler(onChange func(old, updated *Config)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		old := Get()
		if err := load(); err != nil {
			logger.Warnf("Ignoring config change in %s: %v", e.Name, err)
			return
		}
		onChange(old, Get())
	}
}

// LayoutChanged reports whether the layout selection differs between a and b.
func LayoutChanged(a, b *Config) bool {
	return a.Keyboard.Layout != b.Keyboard.Layout ||
		a.Keyboard.Overlay != b.Keyboard.Overlay
}

func defaultLayoutsDir() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "wayosk", "keyboards")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "wayosk", "keyboards")
}
