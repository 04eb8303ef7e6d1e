package bbolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/loog-project/auditlog/internal/store"
)

// Append stores an entry and bumps the counter of its object.
func (s *Store) Append(_ context.Context, entry *store.Entry) error {
	if err := checkObjectKey(entry.ObjectKey); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		revNum, err := s.claimNextRevision(tx, entry.ObjectKey)
		if err != nil {
			return err
		}
		entry.Revision = revNum

		payload, err := s.codec.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketEntries).Put(keyObjectRevision(entry.ObjectKey, revNum), payload)
	})
}

func (s *Store) Get(_ context.Context, objectKey string, revID store.RevisionID) (*store.Entry, error) {
	if err := checkObjectKey(objectKey); err != nil {
		return nil, err
	}
	var entry store.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketEntries).Get(keyObjectRevision(objectKey, revID))
		if v == nil {
			return store.ErrNotFound
		}
		return s.codec.Unmarshal(v, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetLatestRevision returns the highest committed revision for objectKey.
func (s *Store) GetLatestRevision(_ context.Context, objectKey string) (store.RevisionID, error) {
	if err := checkObjectKey(objectKey); err != nil {
		return 0, err
	}
	// check cache first
	s.nextRevisionCounterMutex.RLock()
	if next, ok := s.nextRevisionCounter[objectKey]; ok {
		s.nextRevisionCounterMutex.RUnlock()
		return store.RevisionID(next - 1), nil
	}
	s.nextRevisionCounterMutex.RUnlock()

	var next uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLatest).Get([]byte(objectKey))
		if v == nil {
			return store.ErrNotFound
		}
		next = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.nextRevisionCounterMutex.Lock()
	if next > s.nextRevisionCounter[objectKey] {
		s.nextRevisionCounter[objectKey] = next
	}
	s.nextRevisionCounterMutex.Unlock()
	return store.RevisionID(next - 1), nil
}

func (s *Store) List(_ context.Context, objectKey string) ([]*store.Entry, error) {
	if err := checkObjectKey(objectKey); err != nil {
		return nil, err
	}
	var entries []*store.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		prefix := keyObjectPrefix(objectKey)
		c := tx.Bucket(bucketEntries).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var entry store.Entry
			if err := s.codec.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, store.ErrNotFound
	}
	return entries, nil
}

// Walk iterates over every entry in key order, which groups entries by object
// and sorts them by revision.
func (s *Store) Walk(fn store.WalkFunc) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(_, v []byte) error {
			var entry store.Entry
			if err := s.codec.Unmarshal(v, &entry); err != nil {
				return err
			}
			if !fn(&entry) {
				return errStopWalk
			}
			return nil
		})
	})
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}
