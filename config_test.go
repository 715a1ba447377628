// Configuration tests.
package kiln

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()

	if c.FileThreshold != DefaultFileThreshold {
		t.Errorf("FileThreshold = %d, want %d", c.FileThreshold, DefaultFileThreshold)
	}
	if c.CompactThreshold != DefaultCompactThreshold {
		t.Errorf("CompactThreshold = %d, want %d", c.CompactThreshold, DefaultCompactThreshold)
	}
	if c.CompactBatch != DefaultCompactBatch {
		t.Errorf("CompactBatch = %d, want %d", c.CompactBatch, DefaultCompactBatch)
	}
	if c.ReadBuffer != DefaultReadBuffer {
		t.Errorf("ReadBuffer = %d, want %d", c.ReadBuffer, DefaultReadBuffer)
	}
	if c.HashAlgorithm != AlgXXHash3 {
		t.Errorf("HashAlgorithm = %d, want %d", c.HashAlgorithm, AlgXXHash3)
	}
}

func TestConfigDefaultsPreserveExplicitValues(t *testing.T) {
	c := Config{FileThreshold: 1024, SyncWrites: true}.withDefaults()

	if c.FileThreshold != 1024 {
		t.Errorf("FileThreshold = %d, want 1024", c.FileThreshold)
	}
	if !c.SyncWrites {
		t.Error("SyncWrites not preserved")
	}
	if c.CompactThreshold != DefaultCompactThreshold {
		t.Errorf("CompactThreshold = %d, want default", c.CompactThreshold)
	}
}

// TestLoadConfig parses a config file the way operators actually write
// them: comments, trailing commas, and fields this version doesn't
// know about.
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiln.conf")
	content := `{
	// roll files early on this box, it has a tiny disk
	"file_threshold": 8192,
	"sync_writes": true,
	"hash_algorithm": 3,
	"future_option": "ignored",
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.FileThreshold != 8192 {
		t.Errorf("FileThreshold = %d, want 8192", c.FileThreshold)
	}
	if !c.SyncWrites {
		t.Error("SyncWrites = false, want true")
	}
	if c.HashAlgorithm != AlgBlake2b {
		t.Errorf("HashAlgorithm = %d, want %d", c.HashAlgorithm, AlgBlake2b)
	}
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiln.conf")
	os.WriteFile(path, []byte(`{"file_threshold": }`), 0o644)

	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig on malformed file: err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiln.conf")
	os.WriteFile(path, []byte(`{"file_threshold": -1}`), 0o644)

	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig on negative threshold: err = %v, want ErrInvalidConfig", err)
	}

	os.WriteFile(path, []byte(`{"hash_algorithm": 9}`), 0o644)
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig on unknown algorithm: err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.conf"))
	if !os.IsNotExist(err) {
		t.Errorf("LoadConfig on missing file: err = %v, want not-exist", err)
	}
}
