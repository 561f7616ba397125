package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/logger"
)

const reloadDebounce = 100 * time.Millisecond

// HotReloadManager wraps a config manager with hot reload capability.
// Every config it hands out has been passed through Finalize.
type HotReloadManager struct {
	baseManager Manager
	configPath  string
	watcher     *fsnotify.Watcher
	log         *zap.Logger

	// Current config stored atomically
	currentConfig atomic.Value // stores *Config

	callbacks   []func(*Config)
	callbacksMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewHotReloadManager creates a new hot reload manager
func NewHotReloadManager(baseManager Manager, configPath string, log *zap.Logger) (*HotReloadManager, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrTypeConfig, "failed to create file watcher", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &HotReloadManager{
		baseManager: baseManager,
		configPath:  configPath,
		watcher:     watcher,
		log:         logger.OrNop(log),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	config, err := LoadOrCreate(baseManager)
	if err != nil {
		cancel()
		watcher.Close()
		return nil, errors.Wrap(errors.ErrTypeConfig, "failed to load initial config", err)
	}
	m.currentConfig.Store(config)

	if err := m.startWatching(); err != nil {
		cancel()
		watcher.Close()
		return nil, err
	}

	return m, nil
}

// Load returns the current config (from memory)
func (m *HotReloadManager) Load() (*Config, error) {
	config := m.currentConfig.Load()
	if config == nil {
		return nil, errors.New(errors.ErrTypeConfig, "no config loaded")
	}
	return config.(*Config), nil
}

// Save saves the config and updates the in-memory cache
func (m *HotReloadManager) Save(config *Config) error {
	if err := m.baseManager.Save(config); err != nil {
		return err
	}

	m.currentConfig.Store(config)
	m.notifyCallbacks(config)

	return nil
}

// CreateDefaultConfig creates the default config
func (m *HotReloadManager) CreateDefaultConfig() error {
	if err := m.baseManager.CreateDefaultConfig(); err != nil {
		return err
	}

	config, err := LoadOrCreate(m.baseManager)
	if err != nil {
		return errors.Wrap(errors.ErrTypeConfig, "failed to load created config", err)
	}

	m.currentConfig.Store(config)
	m.notifyCallbacks(config)

	return nil
}

// OnConfigChange registers a callback for config changes
func (m *HotReloadManager) OnConfigChange(callback func(*Config)) {
	m.callbacksMu.Lock()
	defer m.callbacksMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Stop stops the hot reload manager
func (m *HotReloadManager) Stop() error {
	m.cancel()

	m.debounceMu.Lock()
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceMu.Unlock()

	<-m.done

	return m.watcher.Close()
}

// startWatching watches the config directory; editors and atomic saves
// replace the file, which a watch on the file itself would lose.
func (m *HotReloadManager) startWatching() error {
	dir := filepath.Dir(m.configPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrTypeConfig, "failed to create config directory", err)
	}

	if err := m.watcher.Add(dir); err != nil {
		return errors.Wrap(errors.ErrTypeConfig, "failed to watch config directory", err)
	}

	go m.watchLoop()

	return nil
}

func (m *HotReloadManager) watchLoop() {
	defer close(m.done)

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(m.configPath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				m.handleConfigChange(event.Op.String())
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// handleConfigChange handles a config file change with debouncing
func (m *HotReloadManager) handleConfigChange(eventType string) {
	m.debounceMu.Lock()
	defer m.debounceMu.Unlock()

	m.log.Debug("config file event", zap.String("op", eventType), zap.String("path", m.configPath))

	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}

	m.debounceTimer = time.AfterFunc(reloadDebounce, m.reloadConfig)
}

func (m *HotReloadManager) reloadConfig() {
	if m.ctx.Err() != nil {
		return
	}

	newConfig, err := m.baseManager.Load()
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Info("config file removed, keeping current config")
			return
		}
		m.log.Warn("failed to reload config", zap.Error(err))
		return
	}

	finalized, err := Finalize(newConfig)
	if err != nil {
		m.log.Warn("reloaded config is invalid, keeping current config", zap.Error(err))
		return
	}

	m.currentConfig.Store(finalized)
	m.log.Info("config reloaded", zap.String("path", m.configPath))
	m.notifyCallbacks(finalized)
}

func (m *HotReloadManager) notifyCallbacks(config *Config) {
	m.callbacksMu.RLock()
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.callbacksMu.RUnlock()

	for _, callback := range callbacks {
		// Call each callback in a goroutine to prevent blocking
		go func(cb func(*Config)) {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("config change callback panic", zap.Any("panic", r))
				}
			}()
			cb(config)
		}(callback)
	}
}
