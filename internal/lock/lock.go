// Package lock serializes stevedore operations that write shared files,
// such as manifest generation and image table sync.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock is a file-based lock scoped to one operation within a project.
type Lock struct {
	path string
	file *os.File
}

// New creates a lock for the given operation under dir.
func New(dir, operation string) *Lock {
	return &Lock{
		path: filepath.Join(dir, ".stevedore", "locks", operation+".lock"),
	}
}

// Acquire takes the lock, failing immediately when another process holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			op := filepath.Base(l.path[:len(l.path)-len(".lock")])
			return fmt.Errorf("another %s run is already in progress", op)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// record the holder for debugging
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}

// With runs fn while holding the named lock.
func With(dir, operation string, fn func() error) error {
	lock := New(dir, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
