// filelock gives WriteRows the exclusive advisory lock its write-path
// contract requires, and falls back to an in-process mutex when the
// backing storage isn't file-based (tests using memoryStorage).
package heap

import (
	"runtime"
	"sync"
	"syscall"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

// exclusiveLock is acquired for the duration of a WriteRows call.
type exclusiveLock interface {
	Lock() error
	Unlock() error
}

// memoryExclusiveLock guards in-process concurrent writers to the same
// memoryStorage instance; it has no cross-process meaning.
type memoryExclusiveLock struct {
	mu *sync.Mutex
}

func (l *memoryExclusiveLock) Lock() error {
	l.mu.Lock()
	return nil
}

func (l *memoryExclusiveLock) Unlock() error {
	l.mu.Unlock()
	return nil
}

// fileExclusiveLock is a flock-based advisory lock usable as a cross-process
// exclusive lock on Linux and Darwin.
type fileExclusiveLock struct {
	fd int
}

func newFileExclusiveLock(fd uintptr) (exclusiveLock, error) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return nil, pkgerrors.Wrapf(errs.ErrIO, "file lock does not support %s", runtime.GOOS)
	}
	return &fileExclusiveLock{fd: int(fd)}, nil
}

func (l *fileExclusiveLock) Lock() error {
	if err := syscall.Flock(l.fd, syscall.LOCK_EX); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return nil
}

func (l *fileExclusiveLock) Unlock() error {
	if err := syscall.Flock(l.fd, syscall.LOCK_UN); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return nil
}

// lockFor returns the appropriate exclusiveLock for s: a real flock when s is
// file-backed, an in-process mutex tied to the memoryStorage instance
// otherwise.
func lockFor(s Storage) (exclusiveLock, error) {
	if fs, ok := s.(*fileStorage); ok {
		fd, _ := fs.Fd()
		return newFileExclusiveLock(fd)
	}
	ms := s.(*memoryStorage)
	return &memoryExclusiveLock{mu: &ms.mu}, nil
}
