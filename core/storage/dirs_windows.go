//go:build windows

package storage

import (
	"os"
	"path/filepath"
)

func platformConfigDefault() string {
	return filepath.Join(os.Getenv("APPDATA"), "forgecraft", "config")
}

func platformDataDefault() string {
	return filepath.Join(os.Getenv("APPDATA"), "forgecraft", "data")
}

func platformStateDefault() string {
	return filepath.Join(os.Getenv("LOCALAPPDATA"), "forgecraft", "state")
}
