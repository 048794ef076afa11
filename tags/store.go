package tags

import (
	"context"

	"github.com/openbfd/bfd/tags/types"
)

// Registry exposes tag and namespace definitions to consumers that only
// need to resolve declarations, not mutate them.
type Registry interface {
	// GetNamespace returns the named namespace including its admin list,
	// or errors.ErrUnknownNamespace.
	GetNamespace(ctx context.Context, name string) (*Namespace, error)

	// GetTag returns the tag at path including its user and reader
	// whitelists, or errors.ErrUnknownTag / errors.ErrUnknownNamespace.
	GetTag(ctx context.Context, path Path) (*Tag, error)

	// ListTagPaths returns all declared tag paths, ordered by namespace
	// then tag name.
	ListTagPaths(ctx context.Context) ([]Path, error)
}

// TagStore is the permission-checked value surface over the event log and
// its projection. Every call is authorized against the acting user before
// it touches data.
type TagStore interface {
	// Set records a new value for (objectID, path), appending a set event
	// and updating the projection atomically. The value must match the
	// tag's declared type.
	Set(ctx context.Context, actor Actor, objectID string, path Path, value types.Value) (*Event, error)

	// Delete records the removal of the value at (objectID, path). A
	// delete of an already-absent value still appends an event.
	Delete(ctx context.Context, actor Actor, objectID string, path Path) (*Event, error)

	// Get returns the current value at (objectID, path), or
	// errors.ErrValueAbsent when no live value exists or the actor may
	// not read the tag.
	Get(ctx context.Context, actor Actor, objectID string, path Path) (*TagValue, error)

	// History streams the full event sequence for (objectID, path),
	// oldest first.
	History(ctx context.Context, actor Actor, objectID string, path Path) (*EventIterator, error)
}

// EventObserver receives committed events. Observers run asynchronously
// and cannot influence whether the event persists.
type EventObserver interface {
	Notify(event Event)
}

// EventIterator walks an event sequence lazily. Callers must Close it.
//
//	it, err := store.History(ctx, actor, id, path)
//	for it.Next() {
//	    ev := it.Event()
//	}
//	err = it.Err()
type EventIterator struct {
	next  func() (*Event, error)
	close func() error
	cur   *Event
	err   error
	done  bool
}

// NewEventIterator wraps a pull function and closer into an iterator.
// next returns (nil, nil) when exhausted.
func NewEventIterator(next func() (*Event, error), close func() error) *EventIterator {
	return &EventIterator{next: next, close: close}
}

// Next advances the iterator. It returns false when the sequence is
// exhausted or an error occurred.
func (it *EventIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	ev, err := it.next()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if ev == nil {
		it.done = true
		return false
	}
	it.cur = ev
	return true
}

// Event returns the event at the current position.
func (it *EventIterator) Event() *Event { return it.cur }

// Err returns the first error encountered while iterating.
func (it *EventIterator) Err() error { return it.err }

// Close releases the iterator's underlying resources.
func (it *EventIterator) Close() error {
	it.done = true
	if it.close != nil {
		return it.close()
	}
	return nil
}

// Outcome is the per-object result of a bulk write. Err is nil on
// success; errors do not abort the remaining objects in the batch.
type Outcome struct {
	ObjectID string `json:"object_id"`
	Err      error  `json:"-"`
}

// Failed reports whether this object's operation failed.
func (o Outcome) Failed() bool { return o.Err != nil }
