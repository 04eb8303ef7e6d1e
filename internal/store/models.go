package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// RevisionID numbers the entries of a single object, starting at 0.
type RevisionID uint64

func (id RevisionID) String() string {
	return fmt.Sprintf("%08x", uint64(id))
}

// Action is the lifecycle event that produced an entry.
type Action uint8

const (
	ActionCreate Action = iota
	ActionUpdate
	ActionDelete
)

var actionNames = [...]string{"create", "update", "delete"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction is the inverse of [Action.String].
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Entry is one history row of an object.
type Entry struct {
	// ID is unique across all objects.
	ID uuid.UUID `msgpack:"u" json:"id"`
	// Revision is assigned by the store when the entry is appended.
	Revision RevisionID `msgpack:"i" json:"revision"`

	ObjectKey string `msgpack:"k" json:"objectKey"`
	Model     string `msgpack:"m" json:"model"`
	Action    Action `msgpack:"a" json:"action"`

	// Changes is the field diff that led to this entry.
	// see [auditdiff.Compute] for more details.
	Changes auditdiff.Diff `msgpack:"c,omitempty" json:"changes,omitempty"`

	Actor string    `msgpack:"w,omitempty" json:"actor,omitempty"`
	Time  time.Time `msgpack:"t" json:"time"`
}
