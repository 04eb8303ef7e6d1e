package bbolt

import (
	"encoding/binary"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/loog-project/auditlog/internal/store"
)

const keySeparator = '|'

func keyObjectRevision(objectKey string, id store.RevisionID) []byte {
	buf := make([]byte, len(objectKey)+1+8)
	copy(buf, objectKey)
	buf[len(objectKey)] = keySeparator
	binary.BigEndian.PutUint64(buf[len(objectKey)+1:], uint64(id))
	return buf
}

func keyObjectPrefix(objectKey string) []byte {
	return append([]byte(objectKey), keySeparator)
}

// checkObjectKey rejects keys that would break the prefix scans.
func checkObjectKey(objectKey string) error {
	if objectKey == "" || strings.ContainsRune(objectKey, keySeparator) {
		return fmt.Errorf("%w: %q", store.ErrInvalidObjectKey, objectKey)
	}
	return nil
}

// claimNextRevision atomically increments the counter in bucketLatest *and*
// updates the in-memory cache. It returns the newly assigned revision number.
func (s *Store) claimNextRevision(tx *bbolt.Tx, objectKey string) (store.RevisionID, error) {
	latest := tx.Bucket(bucketLatest)

	var next uint64
	if raw := latest.Get([]byte(objectKey)); raw != nil {
		next = binary.BigEndian.Uint64(raw)
	}
	revisionNumber := store.RevisionID(next)
	next++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := latest.Put([]byte(objectKey), buf); err != nil {
		return 0, err
	}

	// only publish the counter once the transaction is committed
	tx.OnCommit(func() {
		s.nextRevisionCounterMutex.Lock()
		if next > s.nextRevisionCounter[objectKey] {
			s.nextRevisionCounter[objectKey] = next
		}
		s.nextRevisionCounterMutex.Unlock()
	})

	return revisionNumber, nil
}
