// Log replay.
//
// Open rebuilds the in-memory index by replaying every generation file
// in ascending order. Replay observes the same staleness accounting as
// the live write path, so a freshly opened store and a store that
// executed the same operations in-process agree on when to compact.
package kiln

import (
	"errors"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// loadGeneration replays one log file into the index.
//
// A record that fails to decode ends the file: the decoded prefix is
// the truth and everything after it — typically a record torn by a
// crash mid-append — is written off as stale bytes so the ledger still
// accounts for every byte of the file.
func loadGeneration(kd *keydir, gen uint64, f *os.File, bufSize int) error {
	r, err := newPosReader(f, bufSize)
	if err != nil {
		return err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	dec := json.NewDecoder(r)
	var pos int64
	for {
		var cmd command
		err := dec.Decode(&cmd)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return writeOffTail(kd, gen, f, pos)
		}
		end := dec.InputOffset()

		switch cmd.Type {
		case cmdSet:
			if cmd.Key == "" {
				return writeOffTail(kd, gen, f, pos)
			}
			if old, ok := kd.insert(cmd.Key, pointer{gen: gen, pos: pos, len: end - pos}); ok {
				kd.markStale(old.gen, old.len)
			}
		case cmdRemove:
			if cmd.Key == "" {
				return writeOffTail(kd, gen, f, pos)
			}
			if old, ok := kd.remove(cmd.Key); ok {
				kd.markStale(old.gen, old.len)
			}
			// The tombstone itself is dead weight from birth.
			kd.markStale(gen, end-pos)
		default:
			return writeOffTail(kd, gen, f, pos)
		}
		pos = end
	}
}

// writeOffTail credits the unreadable remainder of a file, from pos to
// its end, to the generation's stale count.
func writeOffTail(kd *keydir, gen uint64, f *os.File, pos int64) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if n := info.Size() - pos; n > 0 {
		kd.markStale(gen, n)
	}
	return nil
}
