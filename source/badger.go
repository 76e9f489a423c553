package source

import (
	"time"

	"github.com/dlshle/timedcache/errors"

	badger "github.com/dgraph-io/badger/v3"
)

// BadgerSource reads values from a badger key-value store, the kind of
// on-disk backend a TimedCache typically fronts.
type BadgerSource struct {
	db       *badger.DB
	done     chan struct{}
	inMemory bool
}

func NewBadgerSource(dir string) (*BadgerSource, error) {
	return newBadgerSource(badger.DefaultOptions(dir))
}

// NewInMemoryBadgerSource keeps everything in memory; used by tests.
func NewInMemoryBadgerSource() (*BadgerSource, error) {
	return newBadgerSource(badger.DefaultOptions("").WithInMemory(true))
}

func newBadgerSource(opts badger.Options) (*BadgerSource, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WrapWithStackTrace(err)
	}
	s := &BadgerSource{
		db:       db,
		done:     make(chan struct{}),
		inMemory: opts.InMemory,
	}
	if !s.inMemory {
		s.doGC()
		go s.garbageCollectionRoutine()
	}
	return s, nil
}

func (s *BadgerSource) Fetch(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Errorf("badger source: no value for key %s", key)
	}
	if err != nil {
		return nil, errors.WrapWithStackTrace(err)
	}
	return value, nil
}

func (s *BadgerSource) Put(key string, value []byte) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(key), value)
	})
}

func (s *BadgerSource) Delete(key string) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	})
}

func (s *BadgerSource) Close() error {
	close(s.done)
	return s.db.Close()
}

func (s *BadgerSource) garbageCollectionRoutine() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.doGC()
		}
	}
}

func (s *BadgerSource) doGC() {
again:
	// gc rewrites one value log file per call; keep going until it reports
	// nothing left to collect
	if s.db.RunValueLogGC(0.7) == nil {
		goto again
	}
}
