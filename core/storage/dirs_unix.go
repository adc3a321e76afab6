//go:build !windows

package storage

import (
	"os"
	"path/filepath"
)

func platformConfigDefault() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "forgecraft")
}

func platformDataDefault() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "forgecraft")
}

func platformStateDefault() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "forgecraft")
}
