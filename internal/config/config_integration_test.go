package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "douga-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Fatalf("Failed to remove temp directory: %v", err)
		}
	})

	tmpConfigPath := filepath.Join(tmpDir, "config.yaml")
	setEnv(t, "DOUGA_CONFIG_PATH", tmpConfigPath)

	t.Cleanup(func() {
		cleanupEnvVars(t)
	})

	return tmpConfigPath
}

// TestConfigIntegration tests the config package with actual file operations
// This test uses a temporary directory to avoid interfering with real user configs
func TestConfigIntegration(t *testing.T) {
	// Test loading when no config exists (should create default)
	t.Run("LoadDefaultConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		config := loadConfig(t)

		// Verify default values
		assert.Equal(t, "mpv", config.Player.Path)
		assert.Equal(t, "android", config.Resolver.Client)
		assert.Equal(t, 30, config.Resolver.TimeoutSeconds)
		assert.True(t, config.Playback.AutoPlayEnabled())
		assert.Equal(t, 1.0, config.Playback.Rate)
		assert.Equal(t, 500, config.Playback.SettleDelayMS)
		assert.InDelta(t, 16.0/9.0, config.UI.AspectRatio, 0.001)
		assert.Equal(t, "info", config.Logging.Level)
		assert.NotEmpty(t, config.Logging.FilePath)

		// Verify file was created
		if _, err := os.Stat(tmpConfigPath); os.IsNotExist(err) {
			t.Errorf("Config file was not created at %s", tmpConfigPath)
		}

		// Load the file from disk to assert that the 'dynamic' configurations were not saved when the default config was written
		savedConfig, _ := loadFromDisk(tmpConfigPath)
		assert.Empty(t, savedConfig.Logging.FilePath)
	})

	// Test saving and loading custom values
	t.Run("SaveAndLoadConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		autoPlay := false
		// Create a config with custom values
		customConfig := &Config{
			Player: PlayerConfig{
				Path:       "/usr/local/bin/mpv",
				Args:       "--no-border",
				Fullscreen: true,
			},
			Resolver: ResolverConfig{
				Client:         "web",
				TimeoutSeconds: 10,
			},
			Playback: PlaybackConfig{
				AutoPlay:      &autoPlay,
				Rate:          1.5,
				SettleDelayMS: 250,
			},
			Logging: LoggingConfig{
				Level:    "error",
				FilePath: "/var/log/douga.log",
			},
		}

		saveConfig(t, customConfig, tmpConfigPath)
		loadedConfig := loadConfig(t)

		// Verify loaded values match what we saved
		assert.Equal(t, "/usr/local/bin/mpv", loadedConfig.Player.Path)
		assert.Equal(t, "--no-border", loadedConfig.Player.Args)
		assert.True(t, loadedConfig.Player.Fullscreen)
		assert.Equal(t, "web", loadedConfig.Resolver.Client)
		assert.Equal(t, 10, loadedConfig.Resolver.TimeoutSeconds)
		// AutoPlay false from the file must survive the merge with the
		// default config, where the setting is unset
		assert.False(t, loadedConfig.Playback.AutoPlayEnabled())
		assert.Equal(t, 1.5, loadedConfig.Playback.Rate)
		assert.Equal(t, 250, loadedConfig.Playback.SettleDelayMS)
		assert.Equal(t, "error", loadedConfig.Logging.Level)
		assert.Equal(t, "/var/log/douga.log", loadedConfig.Logging.FilePath)
	})

	// Test invalid YAML handling
	t.Run("InvalidConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		// Write invalid YAML to the config file
		if err := os.WriteFile(tmpConfigPath, []byte("invalid: yaml: ["), 0600); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		// Attempt to load the invalid config
		_, err := Load()
		if err == nil {
			t.Error("Expected error when loading invalid YAML, got nil")
		}
	})

	t.Run("EnvironmentVariableOverrides", func(t *testing.T) {
		setupTestConfig(t)

		setEnv(t, "DOUGA_CONFIG_PLAYER_PATH", "/opt/mpv")
		setEnv(t, "DOUGA_CONFIG_PLAYER_ARGS", "--no-osc")
		setEnv(t, "DOUGA_CONFIG_RESOLVER_CLIENT", "web")
		setEnv(t, "DOUGA_CONFIG_PLAYBACK_AUTO_PLAY", "false")
		setEnv(t, "DOUGA_CONFIG_LOGGING_LEVEL", "warn")
		setEnv(t, "DOUGA_CONFIG_LOGGING_FILE_PATH", "/douga.log")

		config := loadConfig(t)

		assert.Equal(t, "/opt/mpv", config.Player.Path)
		assert.Equal(t, "--no-osc", config.Player.Args)
		assert.Equal(t, "web", config.Resolver.Client)
		assert.False(t, config.Playback.AutoPlayEnabled())
		assert.Equal(t, "warn", config.Logging.Level)
		assert.Equal(t, "/douga.log", config.Logging.FilePath)

		// Remove one env var, then reload the config.
		// This ensures that the env var overrides were not persisted to disk.
		unsetEnv(t, "DOUGA_CONFIG_LOGGING_LEVEL")

		config = loadConfig(t)

		assert.Equal(t, "info", config.Logging.Level)
	})

	t.Run("ModifyConfig", func(t *testing.T) {
		setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, 1.0, config.Playback.Rate)

		err := UpdateConfig(func(config *Config) {
			config.Playback.Rate = 2.0
		})
		if err != nil {
			t.Fatalf("Failed to update config: %v", err)
		}

		// Reload the config and ensure it has the new value
		config = loadConfig(t)
		assert.Equal(t, 2.0, config.Playback.Rate)
	})
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	err := os.Setenv(key, value)
	if err != nil {
		t.Fatalf("Failed to set environment variable: %v", err)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	err := os.Unsetenv(key)
	if err != nil {
		t.Fatalf("Failed to unset environment variable: %v", err)
	}
}

func saveConfig(t *testing.T, config *Config, configPath string) {
	t.Helper()
	if err := save(config, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load()
	if err != nil {
		t.Fatalf("Loading of config failed: %v", err)
	}
	return config
}

// Removes any env vars with the DOUGA_CONFIG prefix to ensure test isolation
func cleanupEnvVars(t *testing.T) {
	t.Helper()

	for _, envVar := range os.Environ() {
		if key := strings.Split(envVar, "=")[0]; strings.HasPrefix(key, "DOUGA_CONFIG") {
			unsetEnv(t, key)
		}
	}
}
