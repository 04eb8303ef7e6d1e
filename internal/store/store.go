package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidObjectKey = errors.New("invalid object key")
)

// WalkFunc is called for every stored entry. Returning false stops the walk.
type WalkFunc func(entry *Entry) bool

type EntryStore interface {
	// Append stores [entry] under the next revision of its object and sets
	// entry.Revision accordingly.
	Append(ctx context.Context, entry *Entry) error

	Get(ctx context.Context, objectKey string, rev RevisionID) (*Entry, error)
	GetLatestRevision(ctx context.Context, objectKey string) (RevisionID, error)

	// List returns all entries of an object, oldest first.
	List(ctx context.Context, objectKey string) ([]*Entry, error)
	// Walk visits all entries grouped by object, oldest first per object.
	Walk(fn WalkFunc) error

	Close() error
}
