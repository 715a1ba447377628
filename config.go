// Store configuration.
//
// A zero Config is usable: Open fills in defaults. Configuration can
// also be loaded from a JWCC file (JSON with comments and trailing
// commas) so deployments can keep a commented config next to the data.
package kiln

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// Default thresholds. A generation file is rolled once it reaches
// DefaultFileThreshold; compaction starts once total staleness reaches
// DefaultCompactThreshold and schedules stale generations until
// DefaultCompactBatch bytes of staleness are covered.
const (
	DefaultFileThreshold    = 32 * 1024
	DefaultCompactThreshold = 32 * 1024
	DefaultCompactBatch     = 16 * 1024
	DefaultReadBuffer       = 64 * 1024
)

// Config holds store configuration options.
type Config struct {
	FileThreshold    int64 `json:"file_threshold"`    // roll the writer at this size
	CompactThreshold int64 `json:"compact_threshold"` // compact when total staleness reaches this
	CompactBatch     int64 `json:"compact_batch"`     // staleness scheduled per compaction
	ReadBuffer       int   `json:"read_buffer"`       // replay buffer size
	SyncWrites       bool  `json:"sync_writes"`       // fsync after every append
	HashAlgorithm    int   `json:"hash_algorithm"`    // backup digest: 1=xxHash3, 2=FNV1a, 3=Blake2b
}

// withDefaults fills zero fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.FileThreshold == 0 {
		c.FileThreshold = DefaultFileThreshold
	}
	if c.CompactThreshold == 0 {
		c.CompactThreshold = DefaultCompactThreshold
	}
	if c.CompactBatch == 0 {
		c.CompactBatch = DefaultCompactBatch
	}
	if c.ReadBuffer == 0 {
		c.ReadBuffer = DefaultReadBuffer
	}
	if c.HashAlgorithm == 0 {
		c.HashAlgorithm = AlgXXHash3
	}
	return c
}

func (c Config) validate() error {
	if c.FileThreshold < 0 || c.CompactThreshold < 0 || c.CompactBatch < 0 {
		return fmt.Errorf("%w: thresholds must be non-negative", ErrInvalidConfig)
	}
	if c.ReadBuffer < 0 {
		return fmt.Errorf("%w: read_buffer must be non-negative", ErrInvalidConfig)
	}
	switch c.HashAlgorithm {
	case 0, AlgXXHash3, AlgFNV1a, AlgBlake2b:
	default:
		return fmt.Errorf("%w: unknown hash_algorithm %d", ErrInvalidConfig, c.HashAlgorithm)
	}
	return nil
}

// LoadConfig reads a configuration file. The file may contain comments
// and trailing commas; unknown fields are ignored so configs survive
// version skew in both directions.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var c Config
	if err := json.Unmarshal(std, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
