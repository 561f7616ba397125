package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// Format represents the configuration file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const yamlHeader = `# sonaric-desktop launcher configuration
# Endpoints, timeouts and the WSL distribution used to detect and manage
# the sonaric node. Durations use Go syntax (30s, 5m).

`

// yamlConfigManager supports both JSON and YAML configuration files
type yamlConfigManager struct {
	configPath string
	format     Format
	mu         sync.Mutex
}

// NewYAMLConfigManager creates a config manager that supports both JSON and YAML
func NewYAMLConfigManager(configPath string) (Manager, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}

	// Determine format based on extension
	var format Format
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		format = FormatJSON
	default:
		// Default to YAML for new files
		format = FormatYAML
	}

	return &yamlConfigManager{
		configPath: configPath,
		format:     format,
	}, nil
}

// Load loads the configuration file in either JSON or YAML format
func (m *yamlConfigManager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err // Return the raw error for IsNotExist checks
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch m.format {
	case FormatJSON:
		if err := json.Unmarshal(data, &config); err != nil {
			// Try YAML as fallback
			if yamlErr := yaml.Unmarshal(data, &config); yamlErr == nil {
				return &config, nil
			}
			return nil, errors.ErrConfigParse.WithCause(err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			// Try JSON as fallback
			if jsonErr := json.Unmarshal(data, &config); jsonErr == nil {
				return &config, nil
			}
			return nil, errors.ErrConfigParse.WithCause(err)
		}
	}

	return &config, nil
}

// Save saves the configuration file in the appropriate format
func (m *yamlConfigManager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.marshal(config)
	if err != nil {
		return err
	}
	return m.writeAtomic(data)
}

// CreateDefaultConfig creates a default configuration file
func (m *yamlConfigManager) CreateDefaultConfig() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.marshal(Default())
	if err != nil {
		return err
	}

	// Add comment header for YAML files
	if m.format == FormatYAML {
		data = append([]byte(yamlHeader), data...)
	}
	return m.writeAtomic(data)
}

func (m *yamlConfigManager) marshal(config *Config) ([]byte, error) {
	var data []byte
	var err error

	switch m.format {
	case FormatJSON:
		data, err = json.MarshalIndent(config, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(config)
	default:
		return nil, fmt.Errorf("unknown format: %s", m.format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// writeAtomic writes to a temp file then renames it over the config.
func (m *yamlConfigManager) writeAtomic(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.ErrConfigWrite.WithCause(err)
	}

	tmpFile := m.configPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return errors.ErrConfigWrite.WithCause(err)
	}

	if err := os.Rename(tmpFile, m.configPath); err != nil {
		// Clean up temp file
		os.Remove(tmpFile)
		return errors.ErrConfigWrite.WithCause(err)
	}

	return nil
}

// LoadOrCreate loads the config, writing the default file first when it
// does not exist, then fills defaults, applies env overrides and validates.
func LoadOrCreate(m Manager) (*Config, error) {
	cfg, err := m.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := m.CreateDefaultConfig(); err != nil {
			return nil, err
		}
		if cfg, err = m.Load(); err != nil {
			return nil, err
		}
	}
	return Finalize(cfg)
}

// Finalize 填充默认值、应用环境变量并校验
func Finalize(cfg *Config) (*Config, error) {
	cfg.FillDefaults()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
