// Generation file naming and directory enumeration.
//
// Data files are named <decimal gen>.log; in-progress compaction
// outputs are <decimal gen>.tmp and are never read back — they are
// deleted on open if a crash left them behind.
package kiln

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	logSuffix = ".log"
	tmpSuffix = ".tmp"
)

func logPath(dir string, gen uint64) string {
	return filepath.Join(dir, strconv.FormatUint(gen, 10)+logSuffix)
}

func tmpPath(dir string, gen uint64) string {
	return filepath.Join(dir, strconv.FormatUint(gen, 10)+tmpSuffix)
}

// sortedGens enumerates the generation numbers present in dir in
// ascending order. Entries that are not <number>.log are ignored:
// stray files are someone else's business, and .tmp leftovers are
// removed separately.
func sortedGens(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var gens []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem, ok := strings.CutSuffix(entry.Name(), logSuffix)
		if !ok {
			continue
		}
		gen, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}

	slices.Sort(gens)
	return gens, nil
}

// removeStaleTmps deletes orphaned compaction outputs. A .tmp file
// only exists between compaction start and commit; finding one at open
// means the previous process died mid-compaction and the rewrite never
// took effect.
func removeStaleTmps(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tmpSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// createLog creates a fresh generation file. The generation must not
// already exist — the writer owns generation numbering and never
// reuses one.
func createLog(dir string, gen uint64) (*os.File, error) {
	return os.OpenFile(logPath(dir, gen), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
}
