package bbolt

import (
	"errors"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/loog-project/auditlog/internal/store"
)

var (
	bucketEntries = []byte("entries") // <obj>|rev -> Entry
	bucketLatest  = []byte("latest")  // <obj>     -> uint64(nextRev)
)

var errStopWalk = errors.New("walk stopped")

type Store struct {
	db    *bbolt.DB
	codec store.Codec

	nextRevisionCounterMutex sync.RWMutex
	nextRevisionCounter      map[string]uint64
}

var _ store.EntryStore = (*Store)(nil)

// New opens (or creates) a BoltDB database file.
// Pass nil for [codec] to use the default MessagePack implementation.
// With [durable] unset the file is not fsynced after every append.
func New(path string, codec store.Codec, durable bool) (*Store, error) {
	if codec == nil {
		codec = store.DefaultCodec
	}
	db, err := bbolt.Open(path, 0o666, &bbolt.Options{
		Timeout:      0,
		NoSync:       !durable,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketLatest} {
			if _, e := tx.CreateBucketIfNotExists(b); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create default buckets: %w", err)
	}
	return &Store{
		db:                  db,
		codec:               codec,
		nextRevisionCounter: make(map[string]uint64),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
