package store

import (
	"sync"
)

// Shared is a buntdb backed Storage for a file that other processes write to
// as well. The file is opened for each operation and closed right after, so
// reads see what other processes committed and writes are appended to the
// current end of the file instead of a stale position.
type Shared struct {
	mu   sync.Mutex
	path string
}

// OpenShared checks that path can be opened and returns the storage.
func OpenShared(path string) (*Shared, error) {
	s := &Shared{path: path}
	if err := s.do(func(*Store) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shared) do(fn func(db *Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := Open(s.path)
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

// Close is a no-op; no handle outlives an operation.
func (s *Shared) Close() error {
	return nil
}

func (s *Shared) Get(key string) (val string, ok bool, err error) {
	err = s.do(func(db *Store) error {
		val, ok, err = db.Get(key)
		return err
	})
	return val, ok, err
}

func (s *Shared) Set(key, value string) error {
	return s.do(func(db *Store) error {
		return db.Set(key, value)
	})
}

func (s *Shared) Remove(key string) error {
	return s.do(func(db *Store) error {
		return db.Remove(key)
	})
}

func (s *Shared) Keys(prefix string) (keys []string, err error) {
	err = s.do(func(db *Store) error {
		keys, err = db.Keys(prefix)
		return err
	})
	return keys, err
}
