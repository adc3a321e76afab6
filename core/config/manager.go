// Package config loads and watches the forgecraft configuration file.
package config

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/adalundhe/forgecraft/core/storage"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type Manager struct {
	current   atomic.Pointer[Config]
	dirs      *storage.Dirs
	watchers  []func(*Config)
	watcherMu sync.RWMutex
	stopWatch chan struct{}
	watchOnce sync.Once
}

type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Export   ExportConfig   `yaml:"export"`
}

type ProviderConfig struct {
	// TextModel handles structured generation, ImageModel text-to-image,
	// EditModel image-conditioned transforms.
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
	EditModel  string `yaml:"edit_model"`
	// APIKeyEnv names the environment variable holding the provider key.
	// The key itself is never written to disk.
	APIKeyEnv string `yaml:"api_key_env"`
}

type StoreConfig struct {
	// Path overrides the default database location under the data dir.
	Path string `yaml:"path"`
}

type ExportConfig struct {
	OutputName string `yaml:"output_name"`
}

func NewManager(dirs *storage.Dirs) *Manager {
	m := &Manager{
		dirs:      dirs,
		stopWatch: make(chan struct{}),
	}
	m.current.Store(DefaultConfig())
	return m
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			TextModel:  "gemini-2.5-flash",
			ImageModel: "imagen-3.0-generate-002",
			EditModel:  "gemini-2.5-flash-image",
			APIKeyEnv:  "GEMINI_API_KEY",
		},
		Export: ExportConfig{
			OutputName: "forgecraft-export.zip",
		},
	}
}

// Load reads the config file over the defaults. A missing file is not an
// error; the defaults stand.
func (m *Manager) Load() error {
	path := m.dirs.ConfigFile()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	m.current.Store(cfg)
	m.notify(cfg)
	return nil
}

// Current returns the active configuration. The returned value must not
// be mutated.
func (m *Manager) Current() *Config {
	return m.current.Load()
}

// APIKey resolves the provider credential from the environment.
func (m *Manager) APIKey() string {
	return os.Getenv(m.Current().Provider.APIKeyEnv)
}

// DatabasePath returns the configured or default asset database path.
func (m *Manager) DatabasePath() string {
	if path := m.Current().Store.Path; path != "" {
		return path
	}
	return m.dirs.DataFile("assets.db")
}

// OnChange registers a callback invoked after each successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()
	m.watchers = append(m.watchers, fn)
}

// Watch reloads the config when the file changes on disk. Safe to call
// once; subsequent calls are no-ops.
func (m *Manager) Watch() error {
	var err error
	m.watchOnce.Do(func() {
		var watcher *fsnotify.Watcher
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return
		}
		if addErr := watcher.Add(m.dirs.Config); addErr != nil {
			watcher.Close()
			err = addErr
			return
		}
		go m.watchLoop(watcher)
	})
	return err
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case <-m.stopWatch:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.dirs.ConfigFile() {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Reload errors leave the previous config active.
			_ = m.Load()
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// StopWatch stops the reload watcher.
func (m *Manager) StopWatch() {
	select {
	case <-m.stopWatch:
	default:
		close(m.stopWatch)
	}
}

func (m *Manager) notify(cfg *Config) {
	m.watcherMu.RLock()
	defer m.watcherMu.RUnlock()
	for _, fn := range m.watchers {
		fn(cfg)
	}
}
