// Digest algorithms for backup integrity.
//
// Backup archives end with a footer carrying a 16 hex character digest
// of the archived pair frames. Three algorithms are supported, selectable
// via Config.HashAlgorithm.
package kiln

import (
	"encoding/hex"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// digester returns a streaming 64-bit hasher for the algorithm.
func digester(alg int) (hash.Hash, error) {
	switch alg {
	case AlgXXHash3:
		return xxh3.New(), nil
	case AlgFNV1a:
		return fnv.New64a(), nil
	case AlgBlake2b:
		return blake2b.New(8, nil) // 8 bytes = 64 bits
	default:
		return nil, fmt.Errorf("%w: unknown hash algorithm %d", ErrInvalidConfig, alg)
	}
}

// hexSum finalises a digester into 16 lowercase hex characters.
func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
