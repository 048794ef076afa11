// Package storage persists tag values as an append-only event log in
// SQLite, with a current-value projection derived from it. The event
// sequence is authoritative; the projection is a rebuildable cache.
package storage

import (
	"context"
	"database/sql"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/logger"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/perm"
	"github.com/openbfd/bfd/tags/types"
)

// Store is the permission-checked tag value store. Writes serialize per
// (object, tag) key, retry transient database contention, and notify
// registered observers only after the event row is durable.
type Store struct {
	db        *sql.DB
	registry  tags.Registry
	resolver  *perm.Resolver
	cfg       am.StoreConfig
	keys      *keyedMutex
	observers observerRegistry
}

var _ tags.TagStore = (*Store)(nil)

// NewStore creates a store over the given database and registry.
func NewStore(database *sql.DB, registry tags.Registry, cfg am.StoreConfig) *Store {
	return &Store{
		db:       database,
		registry: registry,
		resolver: perm.NewResolver(registry),
		cfg:      cfg,
		keys:     newKeyedMutex(),
	}
}

// RegisterObserver subscribes an observer to committed events. Observers
// are notified asynchronously and cannot affect event durability.
func (s *Store) RegisterObserver(o tags.EventObserver) {
	s.observers.register(o)
}

// Set writes a value for (objectID, path), appending a set event and
// updating the projection in one transaction.
func (s *Store) Set(ctx context.Context, actor tags.Actor, objectID string, tagPath tags.Path, value types.Value) (*tags.Event, error) {
	tag, allowed, err := s.resolver.Check(ctx, actor, tagPath, perm.Write)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.NewPermissionDenied("actor %s may not write %s", actor.ID, tagPath)
	}
	value, err = coerceToDeclared(tag, value)
	if err != nil {
		return nil, err
	}
	encoded, err := value.Encode()
	if err != nil {
		return nil, err
	}

	event := &tags.Event{
		ID:        uuid.New().String(),
		ObjectID:  objectID,
		Path:      tagPath,
		Op:        tags.OpSet,
		Value:     &value,
		Actor:     actor.ID,
		CreatedAt: time.Now().UTC(),
	}

	key := eventKey(objectID, tagPath)
	s.keys.lock(key)
	defer s.keys.unlock(key)

	err = withRetry(ctx, s.cfg, "set "+tagPath.String(), func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, object_id, namespace, tag, op, value, actor, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID, objectID, tagPath.Namespace, tagPath.Tag,
			string(tags.OpSet), encoded, actor.ID, event.CreatedAt)
		if err != nil {
			return err
		}
		event.Seq, err = res.LastInsertId()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO tag_values (object_id, namespace, tag, value, event_seq, updated_by, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			objectID, tagPath.Namespace, tagPath.Tag, encoded,
			event.Seq, actor.ID, event.CreatedAt)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	logger.EventInfow("value set",
		logger.FieldActor, actor.ID,
		logger.FieldObjectID, objectID,
		logger.FieldTagPath, tagPath.String(),
		logger.FieldEventID, event.ID,
	)
	s.observers.notify(*event)
	return event, nil
}

// Delete removes the value at (objectID, path). A delete with no live
// value still appends a tombstone event; the attempt itself is a fact
// the history must record.
func (s *Store) Delete(ctx context.Context, actor tags.Actor, objectID string, tagPath tags.Path) (*tags.Event, error) {
	_, allowed, err := s.resolver.Check(ctx, actor, tagPath, perm.Write)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.NewPermissionDenied("actor %s may not delete %s", actor.ID, tagPath)
	}

	event := &tags.Event{
		ID:        uuid.New().String(),
		ObjectID:  objectID,
		Path:      tagPath,
		Op:        tags.OpDelete,
		Actor:     actor.ID,
		CreatedAt: time.Now().UTC(),
	}

	key := eventKey(objectID, tagPath)
	s.keys.lock(key)
	defer s.keys.unlock(key)

	err = withRetry(ctx, s.cfg, "delete "+tagPath.String(), func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, object_id, namespace, tag, op, value, actor, created_at)
			 VALUES (?, ?, ?, ?, ?, NULL, ?, ?)`,
			event.ID, objectID, tagPath.Namespace, tagPath.Tag,
			string(tags.OpDelete), actor.ID, event.CreatedAt)
		if err != nil {
			return err
		}
		event.Seq, err = res.LastInsertId()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM tag_values WHERE object_id = ? AND namespace = ? AND tag = ?`,
			objectID, tagPath.Namespace, tagPath.Tag)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	logger.EventInfow("value deleted",
		logger.FieldActor, actor.ID,
		logger.FieldObjectID, objectID,
		logger.FieldTagPath, tagPath.String(),
		logger.FieldEventID, event.ID,
	)
	s.observers.notify(*event)
	return event, nil
}

// Get returns the current value at (objectID, path). Unlike select
// evaluation, a direct get surfaces permission denial as an error.
func (s *Store) Get(ctx context.Context, actor tags.Actor, objectID string, tagPath tags.Path) (*tags.TagValue, error) {
	_, allowed, err := s.resolver.Check(ctx, actor, tagPath, perm.Read)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.NewPermissionDenied("actor %s may not read %s", actor.ID, tagPath)
	}
	return s.CurrentValue(ctx, objectID, tagPath)
}

// History streams the event sequence for (objectID, path), oldest first.
// The iterator is lazy; callers must Close it.
func (s *Store) History(ctx context.Context, actor tags.Actor, objectID string, tagPath tags.Path) (*tags.EventIterator, error) {
	_, allowed, err := s.resolver.Check(ctx, actor, tagPath, perm.Read)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.NewPermissionDenied("actor %s may not read %s", actor.ID, tagPath)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, op, value, actor, created_at
		 FROM events WHERE object_id = ? AND namespace = ? AND tag = ?
		 ORDER BY seq ASC`,
		objectID, tagPath.Namespace, tagPath.Tag)
	if err != nil {
		return nil, errors.Wrapf(err, "load history for %s", tagPath)
	}

	next := func() (*tags.Event, error) {
		if !rows.Next() {
			return nil, rows.Err()
		}
		event := &tags.Event{ObjectID: objectID, Path: tagPath}
		var raw sql.NullString
		var op string
		if err := rows.Scan(&event.Seq, &event.ID, &op, &raw, &event.Actor, &event.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		event.Op = tags.Op(op)
		if raw.Valid {
			value, err := types.Decode(raw.String)
			if err != nil {
				return nil, errors.Wrapf(err, "event %s", event.ID)
			}
			event.Value = &value
		}
		return event, nil
	}
	return tags.NewEventIterator(next, rows.Close), nil
}

// ListTags returns the tagpaths holding a live value on the object,
// filtered to tags the actor may read and optionally to a glob pattern
// over the full path. Unreadable tags are skipped silently.
func (s *Store) ListTags(ctx context.Context, actor tags.Actor, objectID, pattern string) ([]tags.Path, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT namespace, tag FROM tag_values WHERE object_id = ?
		 ORDER BY namespace, tag`, objectID)
	if err != nil {
		return nil, errors.Wrapf(err, "list tags for %s", objectID)
	}
	defer rows.Close()

	var paths []tags.Path
	for rows.Next() {
		var p tags.Path
		if err := rows.Scan(&p.Namespace, &p.Tag); err != nil {
			return nil, errors.Wrap(err, "scan tagpath")
		}
		if pattern != "" {
			ok, err := path.Match(pattern, p.String())
			if err != nil {
				return nil, errors.Wrapf(err, "bad pattern %q", pattern)
			}
			if !ok {
				continue
			}
		}
		_, allowed, err := s.resolver.Check(ctx, actor, p, perm.Read)
		if err != nil {
			return nil, err
		}
		if allowed {
			paths = append(paths, p)
		}
	}
	return paths, rows.Err()
}

// CurrentValue loads the projection row for (objectID, path) without a
// permission check. Callers outside this package must authorize first;
// the query evaluator does its own tag-level filtering.
func (s *Store) CurrentValue(ctx context.Context, objectID string, tagPath tags.Path) (*tags.TagValue, error) {
	tv := &tags.TagValue{ObjectID: objectID, Path: tagPath}
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value, updated_by, updated_at FROM tag_values
		 WHERE object_id = ? AND namespace = ? AND tag = ?`,
		objectID, tagPath.Namespace, tagPath.Tag).
		Scan(&raw, &tv.UpdatedBy, &tv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrValueAbsent, "%s on %s", tagPath, objectID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load value %s on %s", tagPath, objectID)
	}
	tv.Value, err = types.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "value %s on %s", tagPath, objectID)
	}
	return tv, nil
}

// ObjectsWith returns the ids of objects holding a live value for the
// tagpath. Permission filtering is the caller's responsibility.
func (s *Store) ObjectsWith(ctx context.Context, tagPath tags.Path) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT object_id FROM tag_values WHERE namespace = ? AND tag = ?`,
		tagPath.Namespace, tagPath.Tag)
	if err != nil {
		return nil, errors.Wrapf(err, "objects with %s", tagPath)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan object id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Rebuild folds the full event log into a fresh projection, replacing
// tag_values. Crash recovery path: the log is authoritative, the
// projection is derived. A value that no longer decodes halts the rebuild
// with an integrity error naming the key rather than projecting garbage.
func (s *Store) Rebuild(ctx context.Context) error {
	type projected struct {
		value     string
		seq       int64
		actor     string
		createdAt time.Time
	}
	current := make(map[[3]string]projected)

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, object_id, namespace, tag, op, value, actor, created_at
		 FROM events ORDER BY seq ASC`)
	if err != nil {
		return errors.Wrap(err, "load event log")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seq       int64
			id, objID string
			ns, tag   string
			op        string
			raw       sql.NullString
			actor     string
			createdAt time.Time
		)
		if err := rows.Scan(&seq, &id, &objID, &ns, &tag, &op, &raw, &actor, &createdAt); err != nil {
			return errors.Wrap(err, "scan event")
		}
		key := [3]string{objID, ns, tag}
		switch tags.Op(op) {
		case tags.OpSet:
			if !raw.Valid {
				return errors.Wrapf(errors.ErrIntegrity, "set event %s has no value (%s %s/%s)", id, objID, ns, tag)
			}
			if _, err := types.Decode(raw.String); err != nil {
				return errors.Wrapf(err, "replay %s %s/%s at event %s", objID, ns, tag, id)
			}
			current[key] = projected{value: raw.String, seq: seq, actor: actor, createdAt: createdAt}
		case tags.OpDelete:
			delete(current, key)
		default:
			return errors.Wrapf(errors.ErrIntegrity, "event %s has unknown op %q", id, op)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate event log")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin rebuild")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tag_values`); err != nil {
		return errors.Wrap(err, "clear projection")
	}
	for key, p := range current {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tag_values (object_id, namespace, tag, value, event_seq, updated_by, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			key[0], key[1], key[2], p.value, p.seq, p.actor, p.createdAt); err != nil {
			return errors.Wrap(err, "write projection")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit rebuild")
	}

	logger.DBInfow("projection rebuilt", logger.FieldCount, len(current))
	return nil
}

// coerceToDeclared checks a value against the tag's declared type. A
// string value writes to a pointer tag unchanged since BFQL has no
// distinct pointer literal form.
func coerceToDeclared(tag *tags.Tag, value types.Value) (types.Value, error) {
	if value.Kind == tag.Type {
		return value, nil
	}
	if tag.Type == types.KindPointer && value.Kind == types.KindString {
		return types.Pointer(value.Str), nil
	}
	return types.Value{}, errors.NewTypeMismatch("tag %s holds %s, not %s",
		tag.Path(), tag.Type, value.Kind)
}

func eventKey(objectID string, tagPath tags.Path) string {
	return objectID + "\x00" + tagPath.String()
}
