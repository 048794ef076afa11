package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/logger"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/types"
)

// RegistryStore persists namespace and tag definitions in SQLite and
// enforces who may change them. It implements tags.Registry.
type RegistryStore struct {
	db *sql.DB
}

// NewRegistryStore creates a registry backed by the given database.
func NewRegistryStore(database *sql.DB) *RegistryStore {
	return &RegistryStore{db: database}
}

var _ tags.Registry = (*RegistryStore)(nil)

// CreateNamespace registers a new namespace. Only a system admin may
// create arbitrary namespaces; any actor may create the namespace named
// after their own identifier. The creator becomes the first admin unless
// an explicit admin list is given; admins can never be empty.
func (r *RegistryStore) CreateNamespace(ctx context.Context, actor tags.Actor, name, description string, admins []string) (*tags.Namespace, error) {
	if name == "" {
		return nil, errors.New("namespace name cannot be empty")
	}
	if !actor.SystemAdmin && name != actor.ID {
		return nil, errors.NewPermissionDenied("actor %s may not create namespace %s", actor.ID, name)
	}
	if len(admins) == 0 {
		admins = []string{actor.ID}
	}

	now := time.Now().UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin create namespace")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO namespaces (name, description, created_by, created_at, updated_by, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, description, actor.ID, now, actor.ID, now)
	if err != nil {
		return nil, errors.Wrapf(err, "create namespace %s", name)
	}
	for _, admin := range admins {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO namespace_admins (namespace, user_id) VALUES (?, ?)`,
			name, admin); err != nil {
			return nil, errors.Wrapf(err, "add admin %s", admin)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit create namespace")
	}

	logger.DBInfow("namespace created",
		logger.FieldActor, actor.ID,
		"namespace", name,
	)
	return &tags.Namespace{
		Name: name, Description: description, Admins: admins,
		CreatedBy: actor.ID, CreatedAt: now, UpdatedBy: actor.ID, UpdatedAt: now,
	}, nil
}

// GetNamespace loads a namespace and its admin list.
func (r *RegistryStore) GetNamespace(ctx context.Context, name string) (*tags.Namespace, error) {
	ns := &tags.Namespace{Name: name}
	err := r.db.QueryRowContext(ctx,
		`SELECT description, created_by, created_at, updated_by, updated_at
		 FROM namespaces WHERE name = ?`, name).
		Scan(&ns.Description, &ns.CreatedBy, &ns.CreatedAt, &ns.UpdatedBy, &ns.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewUnknownNamespace(name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load namespace %s", name)
	}
	ns.Admins, err = r.loadIDs(ctx,
		`SELECT user_id FROM namespace_admins WHERE namespace = ? ORDER BY user_id`, name)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// UpdateNamespaceDescription replaces a namespace's description.
// Requires namespace admin.
func (r *RegistryStore) UpdateNamespaceDescription(ctx context.Context, actor tags.Actor, name, description string) error {
	if err := r.requireNamespaceAdmin(ctx, actor, name); err != nil {
		return err
	}
	return r.touchNamespace(ctx, actor, name,
		`UPDATE namespaces SET description = ?, updated_by = ?, updated_at = ? WHERE name = ?`,
		description)
}

// AddNamespaceAdmins grants admin on the namespace to the given users.
func (r *RegistryStore) AddNamespaceAdmins(ctx context.Context, actor tags.Actor, name string, ids []string) error {
	if err := r.requireNamespaceAdmin(ctx, actor, name); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO namespace_admins (namespace, user_id) VALUES (?, ?)`,
			name, id); err != nil {
			return errors.Wrapf(err, "add namespace admin %s", id)
		}
	}
	return nil
}

// RemoveNamespaceAdmins revokes admin from the given users. The last
// admin cannot be removed: a namespace without admins is unreachable.
func (r *RegistryStore) RemoveNamespaceAdmins(ctx context.Context, actor tags.Actor, name string, ids []string) error {
	ns, err := r.GetNamespace(ctx, name)
	if err != nil {
		return err
	}
	if !actor.SystemAdmin && !containsID(ns.Admins, actor.ID) {
		return errors.NewPermissionDenied("actor %s is not an admin of namespace %s", actor.ID, name)
	}
	remaining := 0
	for _, admin := range ns.Admins {
		if !containsID(ids, admin) {
			remaining++
		}
	}
	if remaining == 0 {
		return errors.New("cannot remove the last admin of a namespace")
	}
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM namespace_admins WHERE namespace = ? AND user_id = ?`,
			name, id); err != nil {
			return errors.Wrapf(err, "remove namespace admin %s", id)
		}
	}
	return nil
}

// CreateTag declares a new tag under a namespace. The declared type is
// fixed for the tag's lifetime. When the tag starts private, the creator
// is seeded into both whitelists so it is usable immediately.
func (r *RegistryStore) CreateTag(ctx context.Context, actor tags.Actor, path tags.Path, description string, kind types.Kind, private bool) (*tags.Tag, error) {
	if !kind.Valid() {
		return nil, errors.NewTypeMismatch("unknown tag type %q", kind)
	}
	if err := r.requireNamespaceAdmin(ctx, actor, path.Namespace); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin create tag")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tags (namespace, name, description, type, private, created_by, created_at, updated_by, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path.Namespace, path.Tag, description, string(kind), boolToInt(private),
		actor.ID, now, actor.ID, now)
	if err != nil {
		return nil, errors.Wrapf(err, "create tag %s", path)
	}

	tag := &tags.Tag{
		Namespace: path.Namespace, Name: path.Tag, Description: description,
		Type: kind, Private: private,
		CreatedBy: actor.ID, CreatedAt: now, UpdatedBy: actor.ID, UpdatedAt: now,
	}
	if private {
		for _, table := range []string{"tag_users", "tag_readers"} {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO `+table+` (namespace, tag, user_id) VALUES (?, ?, ?)`,
				path.Namespace, path.Tag, actor.ID); err != nil {
				return nil, errors.Wrapf(err, "seed %s", table)
			}
		}
		tag.Users = []string{actor.ID}
		tag.Readers = []string{actor.ID}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit create tag")
	}

	logger.DBInfow("tag created",
		logger.FieldActor, actor.ID,
		logger.FieldTagPath, path.String(),
		"type", string(kind),
		"private", private,
	)
	return tag, nil
}

// GetTag loads a tag and its whitelists.
func (r *RegistryStore) GetTag(ctx context.Context, path tags.Path) (*tags.Tag, error) {
	tag := &tags.Tag{Namespace: path.Namespace, Name: path.Tag}
	var kind string
	var private int
	err := r.db.QueryRowContext(ctx,
		`SELECT description, type, private, created_by, created_at, updated_by, updated_at
		 FROM tags WHERE namespace = ? AND name = ?`,
		path.Namespace, path.Tag).
		Scan(&tag.Description, &kind, &private, &tag.CreatedBy, &tag.CreatedAt, &tag.UpdatedBy, &tag.UpdatedAt)
	if err == sql.ErrNoRows {
		// Distinguish a missing namespace from a missing tag.
		if _, nsErr := r.GetNamespace(ctx, path.Namespace); nsErr != nil {
			return nil, nsErr
		}
		return nil, errors.NewUnknownTag(path.String())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load tag %s", path)
	}
	tag.Type = types.Kind(kind)
	tag.Private = private != 0

	tag.Users, err = r.loadIDs(ctx,
		`SELECT user_id FROM tag_users WHERE namespace = ? AND tag = ? ORDER BY user_id`,
		path.Namespace, path.Tag)
	if err != nil {
		return nil, err
	}
	tag.Readers, err = r.loadIDs(ctx,
		`SELECT user_id FROM tag_readers WHERE namespace = ? AND tag = ? ORDER BY user_id`,
		path.Namespace, path.Tag)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// SetTagPrivate flips a tag's private flag. Requires namespace admin.
func (r *RegistryStore) SetTagPrivate(ctx context.Context, actor tags.Actor, path tags.Path, private bool) error {
	if err := r.requireNamespaceAdmin(ctx, actor, path.Namespace); err != nil {
		return err
	}
	return r.touchTag(ctx, actor, path,
		`UPDATE tags SET private = ?, updated_by = ?, updated_at = ? WHERE namespace = ? AND name = ?`,
		boolToInt(private))
}

// UpdateTagDescription replaces a tag's description. Requires namespace admin.
func (r *RegistryStore) UpdateTagDescription(ctx context.Context, actor tags.Actor, path tags.Path, description string) error {
	if err := r.requireNamespaceAdmin(ctx, actor, path.Namespace); err != nil {
		return err
	}
	return r.touchTag(ctx, actor, path,
		`UPDATE tags SET description = ?, updated_by = ?, updated_at = ? WHERE namespace = ? AND name = ?`,
		description)
}

// AddTagUsers adds users to the tag's write whitelist.
func (r *RegistryStore) AddTagUsers(ctx context.Context, actor tags.Actor, path tags.Path, ids []string) error {
	return r.modifyWhitelist(ctx, actor, path, "tag_users", ids, true)
}

// RemoveTagUsers removes users from the tag's write whitelist.
func (r *RegistryStore) RemoveTagUsers(ctx context.Context, actor tags.Actor, path tags.Path, ids []string) error {
	return r.modifyWhitelist(ctx, actor, path, "tag_users", ids, false)
}

// AddTagReaders adds users to the tag's read whitelist.
func (r *RegistryStore) AddTagReaders(ctx context.Context, actor tags.Actor, path tags.Path, ids []string) error {
	return r.modifyWhitelist(ctx, actor, path, "tag_readers", ids, true)
}

// RemoveTagReaders removes users from the tag's read whitelist.
func (r *RegistryStore) RemoveTagReaders(ctx context.Context, actor tags.Actor, path tags.Path, ids []string) error {
	return r.modifyWhitelist(ctx, actor, path, "tag_readers", ids, false)
}

// ListTagPaths returns every declared tag path ordered by namespace then name.
func (r *RegistryStore) ListTagPaths(ctx context.Context) ([]tags.Path, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT namespace, name FROM tags ORDER BY namespace, name`)
	if err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	defer rows.Close()

	var paths []tags.Path
	for rows.Next() {
		var p tags.Path
		if err := rows.Scan(&p.Namespace, &p.Tag); err != nil {
			return nil, errors.Wrap(err, "scan tag path")
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (r *RegistryStore) modifyWhitelist(ctx context.Context, actor tags.Actor, path tags.Path, table string, ids []string, add bool) error {
	if err := r.requireNamespaceAdmin(ctx, actor, path.Namespace); err != nil {
		return err
	}
	if _, err := r.GetTag(ctx, path); err != nil {
		return err
	}
	for _, id := range ids {
		var err error
		if add {
			_, err = r.db.ExecContext(ctx,
				`INSERT OR IGNORE INTO `+table+` (namespace, tag, user_id) VALUES (?, ?, ?)`,
				path.Namespace, path.Tag, id)
		} else {
			_, err = r.db.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE namespace = ? AND tag = ? AND user_id = ?`,
				path.Namespace, path.Tag, id)
		}
		if err != nil {
			return errors.Wrapf(err, "modify %s for %s", table, path)
		}
	}
	return nil
}

func (r *RegistryStore) requireNamespaceAdmin(ctx context.Context, actor tags.Actor, name string) error {
	if actor.SystemAdmin {
		// Still verify the namespace exists so admins get not-found, not
		// silent no-ops.
		if _, err := r.GetNamespace(ctx, name); err != nil {
			return err
		}
		return nil
	}
	ns, err := r.GetNamespace(ctx, name)
	if err != nil {
		return err
	}
	if !containsID(ns.Admins, actor.ID) {
		return errors.NewPermissionDenied("actor %s is not an admin of namespace %s", actor.ID, name)
	}
	return nil
}

func (r *RegistryStore) touchNamespace(ctx context.Context, actor tags.Actor, name, query string, arg interface{}) error {
	res, err := r.db.ExecContext(ctx, query, arg, actor.ID, time.Now().UTC(), name)
	if err != nil {
		return errors.Wrapf(err, "update namespace %s", name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewUnknownNamespace(name)
	}
	return nil
}

func (r *RegistryStore) touchTag(ctx context.Context, actor tags.Actor, path tags.Path, query string, arg interface{}) error {
	res, err := r.db.ExecContext(ctx, query, arg, actor.ID, time.Now().UTC(), path.Namespace, path.Tag)
	if err != nil {
		return errors.Wrapf(err, "update tag %s", path)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewUnknownTag(path.String())
	}
	return nil
}

func (r *RegistryStore) loadIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "load id list")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
