package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.SimhashThreshold != 3 {
		t.Errorf("default SimhashThreshold = %d, want 3", cfg.SimhashThreshold)
	}
	if cfg.CacheCapacity != 1000 {
		t.Errorf("default CacheCapacity = %d, want 1000", cfg.CacheCapacity)
	}
	if !cfg.EnableCache {
		t.Error("default EnableCache should be true")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.conf"))
	if *cfg != *Default() {
		t.Error("loading a missing file should yield defaults")
	}
}

func TestLoadParsesKnownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.conf")
	content := "# comment\n\nSIMHASH_THRESHOLD=5\nENABLE_CACHE=0\nREDIS_HOST=cache.local\nCACHE_CAPACITY=not-a-number\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(path)
	if cfg.SimhashThreshold != 5 {
		t.Errorf("SimhashThreshold = %d, want 5", cfg.SimhashThreshold)
	}
	if cfg.EnableCache {
		t.Error("ENABLE_CACHE=0 should disable cache")
	}
	if cfg.RedisHost != "cache.local" {
		t.Errorf("RedisHost = %q, want cache.local", cfg.RedisHost)
	}
	if cfg.CacheCapacity != Default().CacheCapacity {
		t.Errorf("malformed CACHE_CAPACITY should keep default, got %d", cfg.CacheCapacity)
	}
}
