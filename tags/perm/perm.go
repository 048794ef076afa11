// Package perm resolves whether an actor holds a capability on a tag.
//
// Resolution is a pure function of the actor, the tag and its namespace:
// no ambient state is consulted, so outcomes are deterministic and
// testable in isolation. Denial is a boolean, never an error; callers
// decide whether a denial filters silently or surfaces.
package perm

import (
	"context"

	"github.com/openbfd/bfd/tags"
)

// Capability is the kind of access being requested on a tag.
type Capability string

const (
	// Read covers loading current values, histories and tag listings.
	Read Capability = "read"
	// Write covers setting and deleting values.
	Write Capability = "write"
	// Admin covers altering the tag's configuration and whitelists.
	Admin Capability = "admin"
)

// Allowed resolves (actor, tag, capability) to allow or deny.
//
// System admins are allowed unconditionally. Admin capability requires
// namespace admin membership. Write and read are open to everyone while
// the tag is not private; a private tag falls back to the namespace
// admins plus the tag's users or readers whitelist. A private tag with an
// empty whitelist locks out everyone except namespace admins. That
// lockout is intentional, not a misconfiguration.
func Allowed(actor tags.Actor, ns *tags.Namespace, tag *tags.Tag, cap Capability) bool {
	if actor.SystemAdmin {
		return true
	}
	nsAdmin := contains(ns.Admins, actor.ID)
	switch cap {
	case Admin:
		return nsAdmin
	case Write:
		return !tag.Private || nsAdmin || contains(tag.Users, actor.ID)
	case Read:
		return !tag.Private || nsAdmin || contains(tag.Readers, actor.ID)
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Resolver answers capability checks against tag definitions loaded from
// a registry. It carries no state beyond the registry handle.
type Resolver struct {
	registry tags.Registry
}

// NewResolver creates a resolver backed by the given registry.
func NewResolver(registry tags.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Check resolves the capability for an actor on the tag at path. The
// returned tag definition lets callers avoid a second registry lookup.
// Unknown paths surface errors.ErrUnknownNamespace or errors.ErrUnknownTag.
func (r *Resolver) Check(ctx context.Context, actor tags.Actor, path tags.Path, cap Capability) (*tags.Tag, bool, error) {
	ns, err := r.registry.GetNamespace(ctx, path.Namespace)
	if err != nil {
		return nil, false, err
	}
	tag, err := r.registry.GetTag(ctx, path)
	if err != nil {
		return nil, false, err
	}
	return tag, Allowed(actor, ns, tag, cap), nil
}
