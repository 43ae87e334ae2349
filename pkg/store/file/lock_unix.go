//go:build unix

package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

const lockPollInterval = 10 * time.Millisecond

// lock takes an exclusive flock on <path>.lock, polling until ctx is done.
func (s *Store) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.mu.Unlock()
		return nil, store.Unavailable(store.KindFile, "lock", err)
	}
	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		s.mu.Unlock()
		return nil, store.Unavailable(store.KindFile, "lock", err)
	}

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			s.mu.Unlock()
			return nil, store.Unavailable(store.KindFile, "lock", err)
		}
		select {
		case <-ctx.Done():
			f.Close()
			s.mu.Unlock()
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}

	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		s.mu.Unlock()
	}, nil
}
