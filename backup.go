// Backup and restore.
//
// A backup archive is a zstd stream of JSON frames: a manifest, one
// frame per live key-value pair, and a digest footer. Frames reuse the
// log's self-delimiting JSON discipline, so the archive needs no
// lengths or separators, and the footer's digest (computed over the
// encoded pair frames) catches truncation and bit rot on restore.
//
// SpeedFastest is deliberate: backups are written far more often than
// they are restored, and the ratio gain of higher levels is marginal
// for small textual records.
package kiln

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Frame kinds.
const (
	frameManifest = "manifest"
	framePair     = "pair"
	frameDigest   = "digest"
)

// backupVersion is bumped when the frame layout changes.
const backupVersion = 1

// backupFrame is one JSON object in the archive stream. Which fields
// are populated depends on Kind.
type backupFrame struct {
	Kind      string `json:"f"`
	Version   int    `json:"version,omitempty"`
	Algorithm int    `json:"algorithm,omitempty"`
	Key       string `json:"k,omitempty"`
	Value     string `json:"v,omitempty"`
	Count     int    `json:"n,omitempty"`
	Sum       string `json:"sum,omitempty"`
}

// Backup streams the live set to w. It runs under the read lock:
// concurrent Gets proceed, writers block until the archive is
// complete, and the archive reflects one consistent point in time.
func (s *Store) Backup(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return err
	}

	hasher, err := digester(s.cfg.HashAlgorithm)
	if err != nil {
		zw.Close()
		return err
	}

	writeFrame := func(frame backupFrame, hashed bool) error {
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if hashed {
			hasher.Write(data)
		}
		_, err = zw.Write(data)
		return err
	}

	if err := writeFrame(backupFrame{
		Kind:      frameManifest,
		Version:   backupVersion,
		Algorithm: s.cfg.HashAlgorithm,
	}, false); err != nil {
		zw.Close()
		return err
	}

	var count int
	var walkErr error
	s.kd.ascend(func(key string, ptr pointer) bool {
		cmd, err := s.readRecord(ptr)
		if err != nil {
			walkErr = err
			return false
		}
		if cmd.Type != cmdSet || cmd.Key != key {
			walkErr = ErrCorruptRecord
			return false
		}
		walkErr = writeFrame(backupFrame{Kind: framePair, Key: key, Value: cmd.Value}, true)
		count++
		return walkErr == nil
	})
	if walkErr != nil {
		zw.Close()
		return walkErr
	}

	if err := writeFrame(backupFrame{
		Kind:  frameDigest,
		Count: count,
		Sum:   hexSum(hasher),
	}, false); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// Restore replays a backup archive into e. Pairs are applied as they
// decode, so a verification failure at the footer leaves the engine
// with a prefix of the archive applied — restore into a fresh
// directory when that matters.
func Restore(e Engine, r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptBackup, err)
	}
	defer zr.Close()

	dec := json.NewDecoder(zr)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: missing manifest", ErrCorruptBackup)
	}
	var manifest backupFrame
	if err := json.Unmarshal(raw, &manifest); err != nil || manifest.Kind != frameManifest {
		return fmt.Errorf("%w: missing manifest", ErrCorruptBackup)
	}
	if manifest.Version != backupVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptBackup, manifest.Version)
	}

	hasher, err := digester(manifest.Algorithm)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptBackup, err)
	}

	var count int
	for {
		raw = nil
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: missing digest footer", ErrCorruptBackup)
			}
			return fmt.Errorf("%w: %v", ErrCorruptBackup, err)
		}

		var frame backupFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptBackup, err)
		}

		switch frame.Kind {
		case framePair:
			hasher.Write(raw)
			if err := e.Set(frame.Key, frame.Value); err != nil {
				return err
			}
			count++
		case frameDigest:
			if frame.Count != count {
				return fmt.Errorf("%w: frame count mismatch: archived %d, decoded %d",
					ErrCorruptBackup, frame.Count, count)
			}
			if frame.Sum != hexSum(hasher) {
				return fmt.Errorf("%w: digest mismatch", ErrCorruptBackup)
			}
			// The footer ends the archive.
			if err := dec.Decode(&raw); !errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: data after digest footer", ErrCorruptBackup)
			}
			return nil
		default:
			return fmt.Errorf("%w: unexpected frame kind %q", ErrCorruptBackup, frame.Kind)
		}
	}
}
