package storage

import (
	"path/filepath"
	"testing"
)

func TestDirsPaths(t *testing.T) {
	d := &Dirs{
		Config: "/tmp/cfg",
		Data:   "/tmp/data",
		State:  "/tmp/state",
	}

	if got := d.ConfigFile(); got != filepath.Join("/tmp/cfg", "config.yaml") {
		t.Errorf("ConfigFile = %q", got)
	}
	if got := d.DataFile("assets.db"); got != filepath.Join("/tmp/data", "assets.db") {
		t.Errorf("DataFile = %q", got)
	}
}

func TestResolveDirsCached(t *testing.T) {
	first := ResolveDirs()
	second := ResolveDirs()
	if first != second {
		t.Error("ResolveDirs should return the cached instance")
	}
	if first.Config == "" || first.Data == "" || first.State == "" {
		t.Errorf("unresolved dirs: %+v", first)
	}
}
