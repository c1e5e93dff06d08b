package store

import (
	"errors"
	"strings"

	"github.com/tidwall/buntdb"
)

// Store is the buntdb backed Storage. Use ":memory:" as path for a
// non-persistent database.
type Store struct {
	db *buntdb.DB
}

func Open(path string) (*Store, error) {
	var err error
	s := new(Store)

	s.db, err = buntdb.Open(path)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, bool, error) {
	var val string
	err := s.db.View(func(tx *buntdb.Tx) error {
		var err error
		val, err = tx.Get(key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, value, nil)
		return err
	})
}

func (s *Store) Remove(key string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendGreaterOrEqual("", prefix, func(k, v string) bool {
			if !strings.HasPrefix(k, prefix) {
				return false
			}
			keys = append(keys, k)
			return true
		})
	})

	return keys, err
}
