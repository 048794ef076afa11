package tags

import (
	"time"

	"github.com/openbfd/bfd/tags/types"
)

// Namespace identifies who is annotating data onto objects. A namespace
// owns its tags: a tag cannot outlive or be reassigned from its namespace.
type Namespace struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Admins      []string  `json:"admins"` // non-empty; may alter namespace, tags and whitelists
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedBy   string    `json:"updated_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tag identifies what is being annotated onto objects. Its declared type is
// immutable after creation.
type Tag struct {
	Namespace   string     `json:"namespace"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        types.Kind `json:"type"`
	Private     bool       `json:"private"`
	Users       []string   `json:"users"`   // may write/delete values via this tag
	Readers     []string   `json:"readers"` // may read values when the tag is private
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedBy   string     `json:"updated_by"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Path returns the tag's full namespace/tag path.
func (t *Tag) Path() Path {
	return Path{Namespace: t.Namespace, Tag: t.Name}
}

// Op is the kind of mutation an event records.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Event is one immutable entry in the append-only mutation log. The event
// sequence for an (object, tag) pair, replayed oldest to newest, recovers
// every historical value state including periods of absence. Events are
// never edited or removed; corrections append.
type Event struct {
	Seq       int64        `json:"seq"` // global total order
	ID        string       `json:"id"`
	ObjectID  string       `json:"object_id"`
	Path      Path         `json:"path"`
	Op        Op           `json:"op"`
	Value     *types.Value `json:"value,omitempty"` // snapshot for set, nil for delete
	Actor     string       `json:"actor"`
	CreatedAt time.Time    `json:"created_at"`
}

// TagValue is the live binding of one (object, tag) pair to one typed
// value — a derived projection of the latest set event with no later
// delete. There is no null representation: absence of a value is absence
// of the record.
type TagValue struct {
	ObjectID  string      `json:"object_id"`
	Path      Path        `json:"path"`
	Value     types.Value `json:"value"`
	UpdatedBy string      `json:"updated_by"`
	UpdatedAt time.Time   `json:"updated_at"`
}
