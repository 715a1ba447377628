// Compaction: bound total staleness and reclaim disk.
//
// The compactor picks the stalest generations, rewrites their live
// records into fresh generation files, and deletes the originals.
// Outputs are written as .tmp and renamed into place only when
// complete, so a crash at any instant leaves either the old files
// intact or both old and new — never a half-visible rewrite. Replay
// converges in both cases: later generations win, and .tmp files are
// never consulted.
//
// Compaction runs synchronously under the store's write lock, called
// from the write path when total staleness crosses the threshold.
package kiln

import (
	"cmp"
	"io"
	"os"
	"slices"
)

// compact selects, rewrites, and commits. Caller holds mu exclusively.
func (s *Store) compact() error {
	selected := s.selectGenerations()
	if len(selected) == 0 {
		// All staleness lives in the active generation; it becomes
		// eligible once the writer rolls past it.
		return nil
	}

	outs, moved, err := s.rewrite(selected)
	if err != nil {
		for _, gen := range outs {
			os.Remove(tmpPath(s.dir, gen))
		}
		return err
	}

	return s.commit(selected, outs, moved)
}

// selectGenerations ranks sealed generations by staleness descending
// and takes them until the scheduled staleness reaches the batch size
// or no stale generation remains. The active generation is never a
// candidate — the writer is appending to it.
func (s *Store) selectGenerations() map[uint64]bool {
	type candidate struct {
		gen   uint64
		stale int64
	}

	var cands []candidate
	for gen, n := range s.kd.stale {
		if gen == s.gen || n <= 0 {
			continue
		}
		cands = append(cands, candidate{gen: gen, stale: n})
	}

	slices.SortFunc(cands, func(a, b candidate) int {
		if a.stale != b.stale {
			return cmp.Compare(b.stale, a.stale)
		}
		return cmp.Compare(a.gen, b.gen)
	})

	selected := make(map[uint64]bool)
	var scheduled int64
	for _, c := range cands {
		selected[c.gen] = true
		scheduled += c.stale
		if scheduled >= s.cfg.CompactBatch {
			break
		}
	}
	return selected
}

// rewrite copies every live record whose pointer falls in a selected
// generation into .tmp output files, rolling to a new output once one
// reaches the file threshold. Output generations are reserved above
// the active writer generation. Returns the output generations and the
// index entries to swap in at commit.
func (s *Store) rewrite(selected map[uint64]bool) (outs []uint64, moved []indexEntry, err error) {
	nextOut := s.gen + 1
	var out *posWriter

	openOut := func() error {
		f, err := os.OpenFile(tmpPath(s.dir, nextOut), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out, err = newPosWriter(f)
		if err != nil {
			f.Close()
			return err
		}
		outs = append(outs, nextOut)
		return nil
	}

	sealOut := func() error {
		if err := out.Sync(); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		out = nil
		nextOut++
		return nil
	}

	var walkErr error
	s.kd.ascend(func(key string, ptr pointer) bool {
		if !selected[ptr.gen] {
			return true
		}

		if out == nil {
			if walkErr = openOut(); walkErr != nil {
				return false
			}
		}

		src, err := s.readers.get(ptr.gen)
		if err != nil {
			walkErr = err
			return false
		}

		pos := out.pos
		n, err := io.Copy(out, io.NewSectionReader(src, ptr.pos, ptr.len))
		if err != nil {
			walkErr = err
			return false
		}
		if n != ptr.len {
			walkErr = ErrCorruptRecord
			return false
		}
		moved = append(moved, indexEntry{
			key: key,
			ptr: pointer{gen: outs[len(outs)-1], pos: pos, len: ptr.len},
		})

		if out.pos >= s.cfg.FileThreshold {
			walkErr = sealOut()
		}
		return walkErr == nil
	})

	if walkErr != nil {
		if out != nil {
			out.Close()
		}
		return outs, nil, walkErr
	}
	if out != nil {
		if err := sealOut(); err != nil {
			return outs, nil, err
		}
	}
	return outs, moved, nil
}

// commit makes the rewrite visible, in crash-safe order: rename the
// outputs, delete the inputs, settle the staleness ledger, swap the
// index pointers, and finally move the writer above every output
// generation.
func (s *Store) commit(selected map[uint64]bool, outs []uint64, moved []indexEntry) error {
	for _, gen := range outs {
		if err := os.Rename(tmpPath(s.dir, gen), logPath(s.dir, gen)); err != nil {
			return err
		}
		f, err := os.Open(logPath(s.dir, gen))
		if err != nil {
			return err
		}
		s.readers.add(gen, f)
	}

	for gen := range selected {
		s.readers.drop(gen)
		if err := os.Remove(logPath(s.dir, gen)); err != nil {
			return err
		}
	}

	for gen := range selected {
		s.kd.retire(gen)
	}

	for _, e := range moved {
		s.kd.insert(e.key, e.ptr)
	}

	if len(outs) > 0 {
		if err := s.w.Close(); err != nil {
			return err
		}
		return s.advanceWriter(outs[len(outs)-1] + 1)
	}
	return nil
}
