// storage abstracts the byte-addressable backing a heap file is read from
// and written to, so the same page logic runs over an on-disk file or an
// in-memory buffer during tests.
package heap

import (
	"io"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

// Storage is what heap.Scan and heap.WriteRows need from their backing
// store: random-access reads and writes plus a way to learn the current
// extent.
type Storage interface {
	io.ReaderAt
	io.WriterAt
	// Size returns the current length in bytes of the backing store.
	Size() (int64, error)
	// Close releases any underlying OS resource. Safe to call more than
	// once; a second call is a no-op.
	Close() error
}

// memoryStorage is an in-memory Storage, grown in PAGE_SIZE increments as
// writes land past its current extent.
type memoryStorage struct {
	buf []byte
	mu  sync.Mutex
}

// NewMemoryStorage returns a Storage backed by a growable in-process buffer.
func NewMemoryStorage() Storage {
	return &memoryStorage{buf: make([]byte, 0, PageSize)}
}

func (m *memoryStorage) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	for len(m.buf) < end {
		m.buf = append(m.buf, make([]byte, PageSize)...)
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *memoryStorage) ReadAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(m.buf) {
		if int(off) >= len(m.buf) {
			return 0, io.EOF
		}
		n := copy(p, m.buf[off:])
		return n, io.EOF
	}
	copy(p, m.buf[off:end])
	return len(p), nil
}

func (m *memoryStorage) Size() (int64, error) {
	return int64(len(m.buf)), nil
}

func (m *memoryStorage) Close() error {
	return nil
}

// fileStorage is a Storage backed by an *os.File.
type fileStorage struct {
	file   *os.File
	closed bool
}

// NewFileStorage opens (creating if absent) path and returns a Storage over
// it.
func NewFileStorage(path string) (Storage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return &fileStorage{file: f}, nil
}

func (s *fileStorage) WriteAt(p []byte, off int64) (int, error) {
	return s.file.WriteAt(p, off)
}

func (s *fileStorage) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *fileStorage) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return info.Size(), nil
}

// Fd exposes the underlying file descriptor for filelock. Returns false if
// the storage is not file-backed.
func (s *fileStorage) Fd() (uintptr, bool) {
	return s.file.Fd(), true
}

func (s *fileStorage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.file.Close(); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return nil
}

// Path returns the heap file's conventional path for table.
func Path(table string) string {
	return table + "_table.flatdb"
}
