// Package storage provides platform-native directory resolution with XDG
// support.
package storage

import (
	"os"
	"path/filepath"
	"sync"
)

// Dirs provides the directories forgecraft writes to.
type Dirs struct {
	Config string // config.yaml
	Data   string // asset database
	State  string // logs
}

var (
	globalDirs     *Dirs
	globalDirsOnce sync.Once
)

// ResolveDirs returns platform-appropriate directories. Results are
// cached after first call.
func ResolveDirs() *Dirs {
	globalDirsOnce.Do(func() {
		globalDirs = &Dirs{
			Config: resolveDir("XDG_CONFIG_HOME", platformConfigDefault()),
			Data:   resolveDir("XDG_DATA_HOME", platformDataDefault()),
			State:  resolveDir("XDG_STATE_HOME", platformStateDefault()),
		}
	})
	return globalDirs
}

func resolveDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, "forgecraft")
	}
	return fallback
}

// ConfigFile returns the path of the user config file.
func (d *Dirs) ConfigFile() string {
	return filepath.Join(d.Config, "config.yaml")
}

// DataFile returns the path of a file under the data directory.
func (d *Dirs) DataFile(name string) string {
	return filepath.Join(d.Data, name)
}

// EnsureDir creates a directory with standard permissions if it doesn't
// exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
