package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/loog-project/auditlog/internal/store"
	"github.com/loog-project/auditlog/pkg/auditdiff"
	"github.com/loog-project/auditlog/pkg/record"
)

// Tracker tells which models are audited and how their fields are filtered.
type Tracker interface {
	auditdiff.FieldConfigLookup
	Contains(model string) bool
}

// AuditService turns record lifecycle events into history entries.
type AuditService struct {
	tracker Tracker
	entries store.EntryStore
	opts    *options
	cache   *stateCache
}

// New creates a new AuditService writing to [entries].
func New(tracker Tracker, entries store.EntryStore, opts ...Option) *AuditService {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}
	s := &AuditService{
		tracker: tracker,
		entries: entries,
		opts:    o,
	}
	if o.cache {
		s.cache = newStateCache()
	}
	return s
}

// LogCreate records the creation of [rec]. Every field with a value is
// stored as changed.
func (s *AuditService) LogCreate(ctx context.Context, objectKey string, rec auditdiff.Record) (*store.Entry, error) {
	return s.log(ctx, store.ActionCreate, objectKey, nil, rec)
}

// LogUpdate records the change from [oldRec] to [newRec]. Nothing is stored
// when no tracked field changed.
func (s *AuditService) LogUpdate(
	ctx context.Context,
	objectKey string,
	oldRec, newRec auditdiff.Record,
) (*store.Entry, error) {
	return s.log(ctx, store.ActionUpdate, objectKey, oldRec, newRec)
}

// LogDelete records the deletion of [rec].
func (s *AuditService) LogDelete(ctx context.Context, objectKey string, rec auditdiff.Record) (*store.Entry, error) {
	return s.log(ctx, store.ActionDelete, objectKey, rec, nil)
}

// Commit records [rec] as the current state of the object: an update against
// the last state seen for [objectKey], or a creation if there is none.
func (s *AuditService) Commit(ctx context.Context, objectKey string, rec auditdiff.Record) (*store.Entry, error) {
	if s.cache != nil {
		if previous := s.cache.get(objectKey); previous != nil {
			return s.LogUpdate(ctx, objectKey, previous, rec)
		}
	}
	return s.LogCreate(ctx, objectKey, rec)
}

// WarmCache remembers [rec] as the last state of [objectKey] without writing
// an entry.
func (s *AuditService) WarmCache(objectKey string, rec auditdiff.Record) error {
	if s.cache == nil {
		return nil
	}
	frozen, err := record.Freeze(rec)
	if err != nil {
		return err
	}
	s.cache.set(objectKey, frozen)
	return nil
}

// Close stops the cache janitor and closes the underlying store.
func (s *AuditService) Close() error {
	if s.cache != nil {
		s.cache.close()
	}
	return s.entries.Close()
}

func (s *AuditService) log(
	ctx context.Context,
	action store.Action,
	objectKey string,
	oldRec, newRec auditdiff.Record,
) (*store.Entry, error) {
	l := s.opts.logger.With().
		Str("action", action.String()).
		Str("object-key", objectKey).
		Logger()

	changes, err := auditdiff.Compute(oldRec, newRec, s.tracker)
	if err != nil {
		return nil, fmt.Errorf("failed to compute changes of %s: %w", objectKey, err)
	}

	subject := newRec
	if subject == nil {
		subject = oldRec
	}
	if subject == nil {
		return nil, nil
	}
	model := subject.Model().Name
	if !s.tracker.Contains(model) {
		l.Debug().Str("model", model).Msg("Model is not tracked, skipping")
		return nil, nil
	}

	if action == store.ActionUpdate && changes == nil {
		l.Debug().Msg("No tracked field changed, skipping")
		return nil, s.remember(objectKey, newRec)
	}

	entry := &store.Entry{
		ID:        uuid.New(),
		ObjectKey: objectKey,
		Model:     model,
		Action:    action,
		Changes:   changes,
		Actor:     s.opts.actorProvider(ctx),
		Time:      s.opts.clock(),
	}

	pass, err := s.opts.filter.Match(entry)
	if err != nil {
		return nil, err
	}
	if !pass {
		l.Debug().Str("filter", s.opts.filter.String()).Msg("Entry rejected by filter")
		return nil, s.remember(objectKey, newRec)
	}

	// the cache only moves on once the entry is stored
	if err := s.entries.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append entry for %s: %w", objectKey, err)
	}
	if err := s.remember(objectKey, newRec); err != nil {
		return entry, err
	}
	l.Debug().
		Str("revision-id", entry.Revision.String()).
		Strs("fields", changes.Fields()).
		Msg("Stored entry")
	return entry, nil
}

// remember keeps the cache in step with the object.
func (s *AuditService) remember(objectKey string, rec auditdiff.Record) error {
	if err := s.WarmCache(objectKey, rec); err != nil {
		return fmt.Errorf("failed to remember state of %s: %w", objectKey, err)
	}
	return nil
}
