// Position-tracking buffered file handles.
//
// The engine needs to know the absolute byte offset of every record it
// writes (to build index pointers) and reads (to replay a log). These
// wrappers pair a bufio buffer with an offset that is updated after
// every successful operation, so callers never issue a Seek just to
// find out where they are.
package kiln

import (
	"bufio"
	"io"
	"os"
)

// posReader is a buffered reader over a file that tracks its absolute
// position. Seek discards the buffer and re-anchors it.
type posReader struct {
	f   *os.File
	r   *bufio.Reader
	pos int64
}

func newPosReader(f *os.File, size int) (*posReader, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &posReader{f: f, r: bufio.NewReaderSize(f, size), pos: pos}, nil
}

func (pr *posReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.pos += int64(n)
	return n, err
}

func (pr *posReader) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent {
		// The buffered position, not the file descriptor's.
		offset += pr.pos
		whence = io.SeekStart
	}
	pos, err := pr.f.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	pr.r.Reset(pr.f)
	pr.pos = pos
	return pos, nil
}

// posWriter is a buffered append writer that tracks the absolute
// offset the next byte will land at. The offset includes buffered,
// not-yet-flushed bytes, so record pointers can be computed before
// Flush.
type posWriter struct {
	f   *os.File
	w   *bufio.Writer
	pos int64
}

func newPosWriter(f *os.File) (*posWriter, error) {
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return &posWriter{f: f, w: bufio.NewWriter(f), pos: pos}, nil
}

func (pw *posWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.pos += int64(n)
	return n, err
}

func (pw *posWriter) Flush() error {
	return pw.w.Flush()
}

// Sync flushes the buffer and asks the OS to commit to stable storage.
func (pw *posWriter) Sync() error {
	if err := pw.w.Flush(); err != nil {
		return err
	}
	return pw.f.Sync()
}

func (pw *posWriter) Close() error {
	if err := pw.w.Flush(); err != nil {
		pw.f.Close()
		return err
	}
	return pw.f.Close()
}
