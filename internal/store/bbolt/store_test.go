package bbolt

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/loog-project/auditlog/internal/store"
	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// handy constants -----------------------------------------------------------

var (
	ctx = context.Background()
	key = "person:1"
)

func newEntry(objectKey string, action store.Action, changes auditdiff.Diff) *store.Entry {
	return &store.Entry{
		ID:        uuid.New(),
		ObjectKey: objectKey,
		Model:     "person",
		Action:    action,
		Changes:   changes,
		Time:      time.Now(),
	}
}

// TestNewAndBuckets checks that the DB opens and buckets exist.
func TestNewAndBuckets(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "db.bb"), nil, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	info, _ := os.Stat(s.db.Path())
	if info.Size() == 0 {
		t.Fatal("DB file should not be empty")
	}
}

// TestAppendGetRoundtrip covers:
//   - claimNextRevision
//   - Append
//   - Get / GetLatestRevision / List
func TestAppendGetRoundtrip(t *testing.T) {
	s, _ := New(filepath.Join(t.TempDir(), "db.bb"), nil, false)
	t.Cleanup(func() { _ = s.Close() })

	if _, err := s.GetLatestRevision(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty store: want ErrNotFound, got %v", err)
	}

	// -------- creation ----------------------------------------------------
	created := newEntry(key, store.ActionCreate, auditdiff.Diff{"name": {Old: "None", New: "Alice"}})
	if err := s.Append(ctx, created); err != nil {
		t.Fatalf("append create: %v", err)
	}
	if created.Revision != 0 {
		t.Fatalf("first entry should have revision 0, got %d", created.Revision)
	}

	// -------- update ------------------------------------------------------
	updated := newEntry(key, store.ActionUpdate, auditdiff.Diff{"name": {Old: "Alice", New: "Bob"}})
	if err := s.Append(ctx, updated); err != nil {
		t.Fatalf("append update: %v", err)
	}
	if updated.Revision != 1 {
		t.Fatalf("update should receive revision 1, got %d", updated.Revision)
	}

	// another object keeps its own counter
	other := newEntry("person:2", store.ActionCreate, nil)
	_ = s.Append(ctx, other)
	if other.Revision != 0 {
		t.Fatalf("other object should start at 0, got %d", other.Revision)
	}

	if latest, _ := s.GetLatestRevision(ctx, key); latest != 1 {
		t.Fatalf("latest want 1, got %d", latest)
	}

	got, err := s.Get(ctx, key, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != updated.ID || got.Changes["name"].New != "Bob" || got.Action != store.ActionUpdate {
		t.Fatalf("rev1 mismatch: %+v", got)
	}
	if _, err := s.Get(ctx, key, 7); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing revision: want ErrNotFound, got %v", err)
	}

	list, err := s.List(ctx, key)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Revision != 0 || list[1].Revision != 1 {
		t.Fatalf("list: unexpected entries %+v", list)
	}
	if _, err := s.List(ctx, "person:3"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown object: want ErrNotFound, got %v", err)
	}
}

func TestInvalidObjectKey(t *testing.T) {
	s, _ := New(filepath.Join(t.TempDir(), "db.bb"), nil, false)
	t.Cleanup(func() { _ = s.Close() })

	for _, k := range []string{"", "a|b"} {
		if err := s.Append(ctx, newEntry(k, store.ActionCreate, nil)); !errors.Is(err, store.ErrInvalidObjectKey) {
			t.Fatalf("key %q: want ErrInvalidObjectKey, got %v", k, err)
		}
		if _, err := s.Get(ctx, k, 0); !errors.Is(err, store.ErrInvalidObjectKey) {
			t.Fatalf("get %q: want ErrInvalidObjectKey, got %v", k, err)
		}
		if _, err := s.GetLatestRevision(ctx, k); !errors.Is(err, store.ErrInvalidObjectKey) {
			t.Fatalf("latest %q: want ErrInvalidObjectKey, got %v", k, err)
		}
		if _, err := s.List(ctx, k); !errors.Is(err, store.ErrInvalidObjectKey) {
			t.Fatalf("list %q: want ErrInvalidObjectKey, got %v", k, err)
		}
	}
}

func TestWalk(t *testing.T) {
	s, _ := New(filepath.Join(t.TempDir(), "db.bb"), nil, false)
	t.Cleanup(func() { _ = s.Close() })

	for _, k := range []string{"b", "a", "b", "a", "a"} {
		_ = s.Append(ctx, newEntry(k, store.ActionUpdate, nil))
	}

	var seen []string
	err := s.Walk(func(e *store.Entry) bool {
		seen = append(seen, e.ObjectKey+e.Revision.String())
		return true
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := []string{"a00000000", "a00000001", "a00000002", "b00000000", "b00000001"}
	if len(seen) != len(want) {
		t.Fatalf("walk saw %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("walk order: want %v, got %v", want, seen)
		}
	}

	// stopping early is not an error
	n := 0
	err = s.Walk(func(*store.Entry) bool {
		n++
		return n < 2
	})
	if err != nil || n != 2 {
		t.Fatalf("early stop: n=%d err=%v", n, err)
	}
}

// TestConcurrentAppends ensures claimNextRevision is atomic.
func TestConcurrentAppends(t *testing.T) {
	s, _ := New(filepath.Join(t.TempDir(), "db.bb"), nil, false)
	t.Cleanup(func() { _ = s.Close() })

	// race 20 goroutines
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			errs <- s.Append(ctx, newEntry(key, store.ActionUpdate, auditdiff.Diff{"x": {New: "v"}}))
		}()
	}
	for i := 0; i < 20; i++ {
		if e := <-errs; e != nil {
			t.Fatalf("concurrent Append failed: %v", e)
		}
	}

	if latest, _ := s.GetLatestRevision(ctx, key); latest != 19 {
		t.Fatalf("after 20 writes, latest should be 19, got %d", latest)
	}
}

// TestReopen verifies counters survive a restart.
func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.bb")
	s, _ := New(path, nil, true)
	_ = s.Append(ctx, newEntry(key, store.ActionCreate, nil))
	_ = s.Append(ctx, newEntry(key, store.ActionUpdate, nil))
	_ = s.Close()

	s, err := New(path, nil, true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if latest, _ := s.GetLatestRevision(ctx, key); latest != 1 {
		t.Fatalf("latest after reopen want 1, got %d", latest)
	}
	next := newEntry(key, store.ActionDelete, nil)
	_ = s.Append(ctx, next)
	if next.Revision != 2 {
		t.Fatalf("revision after reopen want 2, got %d", next.Revision)
	}
}

// TestPersistedValues verifies that bytes written are real MessagePack.
func TestPersistedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.bb")
	s, _ := New(path, nil, false)
	_ = s.Append(ctx, newEntry(key, store.ActionCreate, auditdiff.Diff{"k": {Old: "None", New: "v"}}))
	_ = s.Close()

	// reopen raw file and search for the MessagePack fixstr of the object key
	blob, _ := os.ReadFile(path)
	if !bytes.Contains(blob, append([]byte{0xa0 | byte(len(key))}, key...)) {
		t.Fatalf("file does not appear to contain msgpack encoded entries")
	}
}
