// Package store persists calls, analyses, coaching plans and users in
// BadgerDB. Every record is a JSON document under a typed key prefix.
// Reads and writes of a single document are atomic; there are no
// cross-document transactions, so callers must tolerate a crash between
// two writes by re-deriving state from whichever records exist.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrExists   = errors.New("store: already exists")
)

const (
	prefixCall         = "call/"
	prefixAnalysis     = "analysis/"      // keyed by call id: at most one per call
	prefixCoaching     = "coaching/"      // keyed by analysis id: at most one per analysis
	prefixCoachingCall = "coaching-call/" // call id -> analysis id
	prefixUser         = "user/"
	prefixUserEmail    = "user-email/" // email -> user id
)

type Store struct {
	db *badger.DB
}

// Options configures how the store opens its Badger database.
type Options struct {
	// Dir is the data directory. Required unless InMemory is set.
	Dir string

	// InMemory runs Badger without disk persistence. Used by tests.
	InMemory bool
}

func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("store: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(quietLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// get unmarshals the document at key into out.
func (s *Store) get(key string, out any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// put marshals v and writes it at key in one transaction.
func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// putNew writes v at key only if the key does not exist yet.
func (s *Store) putNew(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err == nil {
			return ErrExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(key), data)
	})
}

func (s *Store) delete(keys ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}

// scan walks every document under prefix and hands the raw value to fn.
func (s *Store) scan(prefix string, fn func(val []byte) error) error {
	p := []byte(prefix)
	return s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = p
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				return fn(val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// quietLogger suppresses badger's info/debug chatter; warnings and errors
// still reach stderr via the standard logger.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { fmt.Printf("[badger] ERROR: "+f+"\n", v...) }
func (quietLogger) Warningf(f string, v ...interface{}) { fmt.Printf("[badger] WARN: "+f+"\n", v...) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
