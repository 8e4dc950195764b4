package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Player   PlayerConfig   `yaml:"player,omitempty"`
	Resolver ResolverConfig `yaml:"resolver,omitempty"`
	Playback PlaybackConfig `yaml:"playback,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// PlayerConfig contains media player settings
type PlayerConfig struct {
	// Path to the mpv binary
	Path string `yaml:"path,omitempty"`
	// Args are extra arguments appended to the mpv command line
	Args string `yaml:"args,omitempty"`
	// Fullscreen starts the player window in fullscreen
	Fullscreen bool `yaml:"fullscreen,omitempty"`
}

// ResolverConfig contains stream resolution settings
type ResolverConfig struct {
	// Client identity presented to YouTube.  One of "android" or "web".
	Client string `yaml:"client,omitempty"`
	// TimeoutSeconds bounds a single resolution attempt
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// PlaybackConfig contains playback behaviour settings
type PlaybackConfig struct {
	// AutoPlay starts playback as soon as media is loaded.  Pointer so a
	// file value of false still overrides the default of true.
	AutoPlay *bool `yaml:"auto_play,omitempty"`
	// Rate is the initial playback rate
	Rate float64 `yaml:"rate,omitempty"`
	// SettleDelayMS is how long to wait for the player to settle after a
	// load before starting playback, if the player does not acknowledge
	// the load sooner
	SettleDelayMS int `yaml:"settle_delay_ms,omitempty"`
}

// AutoPlayEnabled resolves the AutoPlay setting, defaulting to true
func (p PlaybackConfig) AutoPlayEnabled() bool {
	return p.AutoPlay == nil || *p.AutoPlay
}

// UIConfig contains UI display preferences
type UIConfig struct {
	// AccentColor is the highlight colour used across the TUI
	AccentColor string `yaml:"accent_color,omitempty"`
	// AspectRatio is the width:height ratio used to size the preview
	// surface, expressed as a float (16:9 is 1.777...)
	AspectRatio float64 `yaml:"aspect_ratio,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	// 3. Apply dynamic defaults if necessary
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it into the base defaults
	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	// Overrides the config with any values coming from the loaded file
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// 5. Apply the environment variable overrides which take precedence
	applyEnvVarOverrides(cfg)

	return cfg, nil
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
// Unlike static defaults, these values might change between runs based on the environment or system configuration.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	// Create config dir if not exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	// Apply the updates
	updateFn(cfg)

	return save(cfg, configPath)
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("DOUGA_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dougaConfigDir := filepath.Join(configDir, "douga")
	return filepath.Join(dougaConfigDir, "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all default values
func createBaseDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Path: "mpv",
		},
		Resolver: ResolverConfig{
			Client:         "android",
			TimeoutSeconds: 30,
		},
		Playback: PlaybackConfig{
			Rate:          1.0,
			SettleDelayMS: 500,
		},
		UI: UIConfig{
			AccentColor: "#FF0000",
			AspectRatio: 16.0 / 9.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "douga.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\douga\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "douga", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "douga", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/douga
		basePath = filepath.Join(homedir, "Library", "Logs", "douga")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "douga", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "douga", "logs")
		}
	}

	err = os.MkdirAll(basePath, 0700)
	if err != nil {
		// If we failed to create the directory, fallback to logging in the current directory
		return filepath.Join(".", "douga.log")
	}
	return filepath.Join(basePath, "douga.log")
}
