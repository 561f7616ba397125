package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

func TestNewYAMLConfigManager(t *testing.T) {
	tests := []struct {
		name           string
		configPath     string
		expectedFormat Format
		expectError    bool
	}{
		{"JSON file extension", "/path/to/config.json", FormatJSON, false},
		{"YAML file extension", "/path/to/config.yaml", FormatYAML, false},
		{"YML file extension", "/path/to/config.yml", FormatYAML, false},
		{"No extension defaults to YAML", "/path/to/config", FormatYAML, false},
		{"Empty path returns error", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewYAMLConfigManager(tt.configPath)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, manager)
				return
			}
			require.NoError(t, err)
			yamlMgr := manager.(*yamlConfigManager)
			assert.Equal(t, tt.expectedFormat, yamlMgr.format)
		})
	}
}

func TestYAMLConfigManager_SaveAndLoad(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "nested", "config"+ext)
			manager, err := NewYAMLConfigManager(configPath)
			require.NoError(t, err)

			cfg := Default()
			cfg.Distribution = "Ubuntu-24.04"
			cfg.FallbackDirs = []string{"/opt/sonaric/bin"}
			cfg.Timeouts.HTTP = "3s"
			require.NoError(t, manager.Save(cfg))

			_, err = os.Stat(configPath + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file must be renamed away")

			loaded, err := manager.Load()
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
			assert.Equal(t, 3*time.Second, loaded.Timeouts.HTTPTimeout())
		})
	}
}

func TestYAMLConfigManager_LoadMissing(t *testing.T) {
	manager, err := NewYAMLConfigManager(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	_, err = manager.Load()
	assert.True(t, os.IsNotExist(err))
}

func TestYAMLConfigManager_LoadInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("gui: [unterminated"), 0644))

	manager, err := NewYAMLConfigManager(configPath)
	require.NoError(t, err)

	_, err = manager.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigParse))
}

func TestYAMLConfigManager_CreateDefaultConfigHasHeader(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	manager, err := NewYAMLConfigManager(configPath)
	require.NoError(t, err)

	require.NoError(t, manager.CreateDefaultConfig())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# sonaric-desktop launcher configuration")
	assert.Contains(t, string(data), "distribution: Ubuntu-22.04")

	loaded, err := manager.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestLoadOrCreate(t *testing.T) {
	t.Run("creates default file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		manager, err := NewYAMLConfigManager(configPath)
		require.NoError(t, err)

		cfg, err := LoadOrCreate(manager)
		require.NoError(t, err)
		assert.Equal(t, DefaultGUIURL, cfg.GUI.URL)
		assert.FileExists(t, configPath)
	})

	t.Run("fills missing fields and applies env", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("distribution: Debian\n"), 0644))
		t.Setenv(EnvLatestURL, "http://127.0.0.1:9999/latest")

		manager, err := NewYAMLConfigManager(configPath)
		require.NoError(t, err)

		cfg, err := LoadOrCreate(manager)
		require.NoError(t, err)
		assert.Equal(t, "Debian", cfg.Distribution)
		assert.Equal(t, DefaultBinaryName, cfg.BinaryName)
		assert.Equal(t, DefaultFallbackDirs, cfg.FallbackDirs)
		assert.Equal(t, "http://127.0.0.1:9999/latest", cfg.Endpoints.LatestVersion)
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("endpoints:\n  docs: docs.sonaric.xyz\n"), 0644))

		manager, err := NewYAMLConfigManager(configPath)
		require.NoError(t, err)

		_, err = LoadOrCreate(manager)
		require.Error(t, err)
		assert.Equal(t, errors.ErrTypeConfig, errors.GetType(err))
	})
}
